// Package seed creates demo content for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	appRepos "github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

// DemoPhone belongs to the demo account.
const DemoPhone = "+910000000000"

var demoBlogs = []dto.CreateBlogRequest{
	{
		Title:   "Welcome to the college blog",
		Des:     "What this space is for and how to start writing",
		Content: "Share campus news, project write-ups and event recaps. Sign up with your college email to post.",
		Tags:    []string{"announcements", "campus"},
	},
	{
		Title:   "Writing your first post",
		Des:     "A short checklist before you hit publish",
		Content: "Pick a clear title, add a one-line description and tag the post so others can find it.",
		Tags:    []string{"guides"},
	},
}

// DemoEmail returns the demo account address for emailDomain (which starts with "@").
func DemoEmail(emailDomain string) string {
	return "blogteam" + emailDomain
}

// CreateDemoData registers a faculty account and publishes the welcome posts.
// It does nothing when the account already exists.
func CreateDemoData(
	ctx context.Context,
	users appRepos.UserRepository,
	auth *services.AuthService,
	blogs *services.BlogService,
	emailDomain string,
	lgr zerolog.Logger,
) error {
	email := DemoEmail(emailDomain)
	lgr.Info().Str("email", email).Msg("Checking/Creating demo data...")

	_, err := auth.Register(ctx, dto.SignupRequest{
		Fullname:   "College Blog Team",
		Email:      email,
		Password:   demoPassword(),
		Role:       string(models.RoleFaculty),
		Department: string(models.DepartmentCSE),
		Phone:      DemoPhone,
	})
	if err != nil {
		if ce, ok := apperrors.As(err); ok && ce.Field == string(models.UniqueEmail) {
			lgr.Info().Msg("Demo data already present")
			return nil
		}
		return fmt.Errorf("failed to create demo account: %w", err)
	}

	author, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load demo account: %w", err)
	}

	var errs []error
	for _, req := range demoBlogs {
		if _, err := blogs.Create(ctx, author.ID, req); err != nil {
			lgr.Error().Err(err).Str("title", req.Title).Msg("Error creating demo blog")
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	lgr.Info().Int("blogs", len(demoBlogs)).Msg("Demo data created")
	return nil
}

// demoPassword satisfies the password rule; nobody is meant to sign in with it.
func demoPassword() string {
	return "Demo" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "9"
}
