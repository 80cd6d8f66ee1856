package filestorage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/logger"
)

// BreakerStorage guards a FileStorage with a circuit breaker and bounds every
// call by a timeout. Failures surface as upstream errors.
type BreakerStorage struct {
	next    FileStorage
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewBreakerStorage wraps next. The breaker trips after 5 consecutive failures
// and retries after 30s.
func NewBreakerStorage(name string, next FileStorage, timeout time.Duration) *BreakerStorage {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Storage circuit breaker state changed")
		},
	})
	return &BreakerStorage{next: next, cb: cb, timeout: timeout}
}

// State reports the breaker state.
func (b *BreakerStorage) State() gobreaker.State {
	return b.cb.State()
}

// Save stores obj through the breaker.
func (b *BreakerStorage) Save(ctx context.Context, obj Object) (string, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		ctx, cancel := b.withTimeout(ctx)
		defer cancel()
		return b.next.Save(ctx, obj)
	})
	if err != nil {
		return "", unavailable(err)
	}
	return res.(string), nil
}

// Delete removes fileURL through the breaker.
func (b *BreakerStorage) Delete(ctx context.Context, fileURL string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		ctx, cancel := b.withTimeout(ctx)
		defer cancel()
		return nil, b.next.Delete(ctx, fileURL)
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (b *BreakerStorage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func unavailable(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.NewUpstreamError("Storage service unavailable", err)
	}
	return apperrors.NewUpstreamError("Failed to store file", err)
}
