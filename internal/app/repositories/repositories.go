// Package repositories declares the store contracts used by the services.
// Implementations live in the postgres and mongo subpackages.
package repositories

import (
	"context"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsBy reports whether a user other than excludeID holds value in field.
	ExistsBy(ctx context.Context, field models.UniqueField, value, excludeID string) (bool, error)

	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfileImage(ctx context.Context, id, url string) error
}

// BlogRepository defines blog persistence.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	FindByID(ctx context.Context, id string) (*models.Blog, error)

	// IncrementReads bumps total_reads of a published blog and returns it.
	IncrementReads(ctx context.Context, id string) (*models.Blog, error)

	// Trending returns published blogs ordered by reads, then likes, newest first.
	Trending(ctx context.Context, limit int) ([]*models.Blog, error)

	// List returns published blogs matching filter, newest first.
	List(ctx context.Context, filter models.BlogFilter, offset uint64, limit int) ([]*models.Blog, error)
	Count(ctx context.Context, filter models.BlogFilter) (int64, error)

	// ToggleLike likes a published blog for userID, or removes the like when
	// one exists.
	ToggleLike(ctx context.Context, blogID, userID string) (*models.LikeResult, error)
}

// CommentRepository defines comment persistence. Create and Delete keep the
// blog's total_comments counter in step.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListByBlog(ctx context.Context, blogID string, offset uint64, limit int) ([]*models.CommentWithAuthor, error)

	// UpdateContent replaces a comment's text and marks it edited.
	UpdateContent(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, comment *models.Comment) error
}

// NotificationRepository defines notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error

	// ListByRecipient returns a page of a user's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string, offset uint64, limit int) ([]*models.NotificationWithSender, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID string, ids []string) error
}

// Store bundles the repositories of one backend with its lifecycle.
type Store struct {
	Users         UserRepository
	Blogs         BlogRepository
	Comments      CommentRepository
	Notifications NotificationRepository
	Close         func(ctx context.Context) error
}

var duplicateMessages = map[models.UniqueField]string{
	models.UniqueEmail:    "Email already registered",
	models.UniqueUsername: "Username already registered",
	models.UniquePhone:    "Phone number already registered",
	models.UniqueKTUID:    "KTU ID already registered",
}

// DuplicateFieldError is the conflict reported for a taken unique field,
// whether found by a pre-check or by the store's constraint.
func DuplicateFieldError(field models.UniqueField) *apperrors.CustomError {
	msg, ok := duplicateMessages[field]
	if !ok {
		msg = "Duplicate value"
	}
	return apperrors.NewConflictError(string(field), msg)
}
