package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/validation"
	"github.com/Anandhu5Uthaman/College-mini/internal/testutil/memstore"
)

const domain = "@gecidukki.ac.in"

func build(db *memstore.DB) (*services.AuthService, *services.BlogService) {
	store := db.Store()
	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "seed-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	authSvc := services.NewAuthService(store.Users, auth.NewBcryptHasher(4), jwt, validation.NewRules(domain),
		events.Nop{}, time.Second, zerolog.Nop())
	blogSvc := services.NewBlogService(store.Blogs, store.Comments, store.Users, events.Nop{}, time.Second, zerolog.Nop())
	return authSvc, blogSvc
}

func TestCreateDemoData(t *testing.T) {
	db := memstore.New()
	authSvc, blogSvc := build(db)
	ctx := context.Background()

	require.NoError(t, CreateDemoData(ctx, db.Store().Users, authSvc, blogSvc, domain, zerolog.Nop()))

	author, err := db.Store().Users.FindByEmail(ctx, DemoEmail(domain))
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, author.Role())
	assert.Equal(t, "blogteam", author.Username)

	trending, err := blogSvc.Trending(ctx)
	require.NoError(t, err)
	require.Len(t, trending, len(demoBlogs))
	for _, b := range trending {
		assert.Equal(t, author.ID, b.Author)
	}

	// A second run finds the account and leaves the data alone.
	require.NoError(t, CreateDemoData(ctx, db.Store().Users, authSvc, blogSvc, domain, zerolog.Nop()))
	assert.Equal(t, 1, db.UserCount())
	trending, err = blogSvc.Trending(ctx)
	require.NoError(t, err)
	assert.Len(t, trending, len(demoBlogs))
}

func TestCreateDemoData_PhoneTaken(t *testing.T) {
	db := memstore.New()
	authSvc, blogSvc := build(db)
	require.NoError(t, db.Store().Users.Create(context.Background(), &models.User{
		ID:       "u-1",
		Email:    "jane" + domain,
		Username: "jane",
		Phone:    DemoPhone,
		Details:  models.FacultyDetails{},
	}))

	err := CreateDemoData(context.Background(), db.Store().Users, authSvc, blogSvc, domain, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to create demo account")
}

func TestDemoPassword(t *testing.T) {
	pw := demoPassword()
	assert.Empty(t, validation.PasswordViolations(pw))
}
