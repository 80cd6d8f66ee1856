// Package services holds the business logic behind the HTTP controllers:
//   - AuthService: registration and sign-in
//   - UserService: profiles, password changes and profile images
//   - BlogService: blogs, listing, search, likes and comments
//   - NotificationService: the persisted comment and like inbox
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
)

// DefaultQueryTimeout bounds a single store call when none is configured.
const DefaultQueryTimeout = 5 * time.Second

// publishTimeout bounds a single event write.
const publishTimeout = 3 * time.Second

// withStoreTimeout derives the context a single store call runs under.
func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}

// publish writes evt and logs failures. Events never fail a request.
func publish(ctx context.Context, p events.Publisher, log zerolog.Logger, evt events.Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, evt); err != nil {
		log.Warn().Err(err).Str("event_type", string(evt.Type)).Msg("Failed to publish event")
	}
}
