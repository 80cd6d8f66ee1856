package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/dberrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/helpers"
)

var userColumns = []string{
	"id", "fullname", "email", "password", "username", "role", "department",
	"ktu_id", "passout_year", "phone", "bio", "profile_img", "social_links",
	"created_at", "updated_at",
}

// userConstraints maps the UNIQUE constraints of the users table to fields.
var userConstraints = map[string]string{
	"users_email_key":    string(models.UniqueEmail),
	"users_username_key": string(models.UniqueUsername),
	"users_phone_key":    string(models.UniquePhone),
	"users_ktu_id_key":   string(models.UniqueKTUID),
}

// UserRepository handles user database operations
type UserRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db, sb: newBuilder()}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// Create inserts user. A taken email, username, phone or ktu_id is reported as a conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	links, err := json.Marshal(nonNilLinks(user.SocialLinks))
	if err != nil {
		return fmt.Errorf("failed to encode social links: %w", err)
	}

	var ktuID *string
	if id, ok := models.KTUIDOf(user.Details); ok {
		ktuID = &id
	}
	var passoutYear *int
	if year, ok := models.PassoutYearOf(user.Details); ok {
		passoutYear = &year
	}

	query, args, err := r.sb.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.Fullname, user.Email, user.PasswordHash, user.Username,
			string(user.Role()), string(user.Department),
			helpers.GetNullString(ktuID), helpers.GetNullInt64(passoutYear),
			user.Phone, user.Bio, user.ProfileImg, string(links),
			user.CreatedAt, user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if field, ok := dberrors.PostgresDuplicateField(err, userConstraints); ok {
			return repositories.DuplicateFieldError(models.UniqueField(field)).WithCause(err)
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByEmail retrieves a user by exact email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

// FindByUsername retrieves a user by exact username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, squirrel.Eq{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// ExistsBy reports whether another user already holds value in field.
func (r *UserRepository) ExistsBy(ctx context.Context, field models.UniqueField, value, excludeID string) (bool, error) {
	if _, ok := userConstraints["users_"+string(field)+"_key"]; !ok {
		return false, fmt.Errorf("unsupported unique field %q", field)
	}

	sub := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("users").
		Where(squirrel.Eq{string(field): value})
	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}
	query, args, err := sub.Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking %s: %w", field, err)
	}
	return exists, nil
}

// UpdateProfile applies patch in one statement and returns the updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	set := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.Fullname != nil {
		set["fullname"] = *patch.Fullname
	}
	if patch.Department != nil {
		set["department"] = string(*patch.Department)
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}
	if patch.Details != nil {
		switch d := patch.Details.(type) {
		case models.StudentDetails:
			set["ktu_id"] = d.KTUID
		case models.AlumniDetails:
			set["ktu_id"] = d.KTUID
			set["passout_year"] = d.PassoutYear
		case models.FacultyDetails:
		}
	}
	if patch.SocialLinks != nil {
		links, err := json.Marshal(patch.SocialLinks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode social links: %w", err)
		}
		set["social_links"] = string(links)
	}

	query, args, err := r.sb.Update("users").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update profile query: %w", err)
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		if field, ok := dberrors.PostgresDuplicateField(err, userConstraints); ok {
			return nil, repositories.DuplicateFieldError(models.UniqueField(field)).WithCause(err)
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, id, "password", passwordHash)
}

// UpdateProfileImage replaces the profile image URL.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, url string) error {
	return r.updateColumn(ctx, id, "profile_img", url)
}

func (r *UserRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	query, args, err := r.sb.Update("users").
		Set(column, value).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update %s query: %w", column, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error updating %s: %w", column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u           models.User
		role        string
		department  string
		ktuID       sql.NullString
		passoutYear sql.NullInt64
		links       []byte
	)
	err := row.Scan(
		&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.Username, &role, &department,
		&ktuID, &passoutYear, &u.Phone, &u.Bio, &u.ProfileImg, &links,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Details, err = models.NewRoleDetails(models.Role(role), helpers.StringPtr(ktuID), helpers.IntPtr(passoutYear))
	if err != nil {
		return nil, fmt.Errorf("corrupt user %s: %w", u.ID, err)
	}
	u.Department = models.Department(department)

	u.SocialLinks = models.SocialLinks{}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
			return nil, fmt.Errorf("corrupt social links for user %s: %w", u.ID, err)
		}
	}
	return &u, nil
}

func nonNilLinks(l models.SocialLinks) models.SocialLinks {
	if l == nil {
		return models.SocialLinks{}
	}
	return l
}
