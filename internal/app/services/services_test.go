package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/cache"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/filestorage"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/validation"
	"github.com/Anandhu5Uthaman/College-mini/internal/testutil/memstore"
)

const testDomain = "@gecidukki.ac.in"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	db      *memstore.DB
	store   *repositories.Store
	hasher  *auth.BcryptHasher
	jwt     *auth.JWTService
	pub     *recordingPublisher
	storage *filestorage.LocalStorage
	mini    *miniredis.Miniredis

	auth  *AuthService
	users *UserService
	blogs *BlogService
	notes *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memstore.New()
	store := db.Store()
	hasher := auth.NewBcryptHasher(4)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 24 * time.Hour,
		TokenIssuer:    "college-blog",
	}).WithClock(func() time.Time { return testNow })
	rules := validation.NewRules(testDomain).WithClock(func() time.Time { return testNow })
	pub := &recordingPublisher{}

	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	profiles := cache.NewRedisStore[dto.UserProfile](client, "profile", time.Minute)

	log := zerolog.Nop()
	return &testEnv{
		db:      db,
		store:   store,
		hasher:  hasher,
		jwt:     jwtService,
		pub:     pub,
		storage: storage,
		mini:    mini,
		auth:    NewAuthService(store.Users, hasher, jwtService, rules, pub, time.Second, log),
		users:   NewUserService(store.Users, hasher, rules, profiles, storage, pub, time.Second, 0, log),
		blogs:   NewBlogService(store.Blogs, store.Comments, store.Users, pub, time.Second, log),
		notes:   NewNotificationService(store.Notifications, time.Second, log),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func janeSignup() dto.SignupRequest {
	return dto.SignupRequest{
		Fullname:   "Jane Doe",
		Email:      "jane@gecidukki.ac.in",
		Password:   "Secret1x",
		Role:       "Student",
		Department: "Computer Science and Engineering",
		KTUID:      strPtr("IDK2021CS01"),
		Phone:      "+919876543210",
	}
}

func (e *testEnv) register(t *testing.T, req dto.SignupRequest) *models.User {
	t.Helper()
	_, err := e.auth.Register(context.Background(), req)
	require.NoError(t, err)
	u, err := e.store.Users.FindByEmail(context.Background(), req.Email)
	require.NoError(t, err)
	return u
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) *apperrors.CustomError {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperrors.KindOf(err), "unexpected kind for %v", err)
	ce, ok := apperrors.As(err)
	require.True(t, ok)
	return ce
}
