// Package mongodb implements the repositories on MongoDB. Uniqueness is
// enforced by unique indexes created in EnsureIndexes.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/dberrors"
)

// userIndexes maps unique index names to the field they guard.
var userIndexes = map[string]string{
	"email_1":    string(models.UniqueEmail),
	"username_1": string(models.UniqueUsername),
	"phone_1":    string(models.UniquePhone),
	"ktu_id_1":   string(models.UniqueKTUID),
}

type userDocument struct {
	ID          string            `bson:"_id"`
	Fullname    string            `bson:"fullname"`
	Email       string            `bson:"email"`
	Password    string            `bson:"password"`
	Username    string            `bson:"username"`
	Role        string            `bson:"role"`
	Department  string            `bson:"department"`
	KTUID       *string           `bson:"ktu_id,omitempty"`
	PassoutYear *int              `bson:"passout_year,omitempty"`
	Phone       string            `bson:"phone"`
	Bio         string            `bson:"bio"`
	ProfileImg  string            `bson:"profile_img"`
	SocialLinks map[string]string `bson:"social_links"`
	CreatedAt   time.Time         `bson:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"`
}

func newUserDocument(u *models.User) userDocument {
	doc := userDocument{
		ID:          u.ID,
		Fullname:    u.Fullname,
		Email:       u.Email,
		Password:    u.PasswordHash,
		Username:    u.Username,
		Role:        string(u.Role()),
		Department:  string(u.Department),
		Phone:       u.Phone,
		Bio:         u.Bio,
		ProfileImg:  u.ProfileImg,
		SocialLinks: u.SocialLinks,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if doc.SocialLinks == nil {
		doc.SocialLinks = map[string]string{}
	}
	if id, ok := models.KTUIDOf(u.Details); ok {
		doc.KTUID = &id
	}
	if year, ok := models.PassoutYearOf(u.Details); ok {
		doc.PassoutYear = &year
	}
	return doc
}

func (d userDocument) model() (*models.User, error) {
	details, err := models.NewRoleDetails(models.Role(d.Role), d.KTUID, d.PassoutYear)
	if err != nil {
		return nil, fmt.Errorf("corrupt user %s: %w", d.ID, err)
	}
	links := models.SocialLinks(d.SocialLinks)
	if links == nil {
		links = models.SocialLinks{}
	}
	return &models.User{
		ID:           d.ID,
		Fullname:     d.Fullname,
		Email:        d.Email,
		PasswordHash: d.Password,
		Username:     d.Username,
		Department:   models.Department(d.Department),
		Details:      details,
		Phone:        d.Phone,
		Bio:          d.Bio,
		ProfileImg:   d.ProfileImg,
		SocialLinks:  links,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// UserRepository stores users in the "users" collection.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection("users")}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// EnsureIndexes creates the unique indexes backing the uniqueness rules.
// ktu_id is sparse because faculty records carry none.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_1").SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("username_1").SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetName("phone_1").SetUnique(true)},
		{Keys: bson.D{{Key: "ktu_id", Value: 1}}, Options: options.Index().SetName("ktu_id_1").SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts user. A duplicate key on a unique index is reported as a conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.collection.InsertOne(ctx, newUserDocument(user)); err != nil {
		return mapWriteError(err, "failed to create user")
	}
	return nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail retrieves a user by exact email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername retrieves a user by exact username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.model()
}

// ExistsBy reports whether another user already holds value in field.
func (r *UserRepository) ExistsBy(ctx context.Context, field models.UniqueField, value, excludeID string) (bool, error) {
	if _, ok := userIndexes[string(field)+"_1"]; !ok {
		return false, fmt.Errorf("unsupported unique field %q", field)
	}

	filter := bson.M{string(field): value}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check %s: %w", field, err)
	}
}

// UpdateProfile applies patch atomically and returns the updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
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
		set["social_links"] = map[string]string(patch.SocialLinks)
	}

	var doc userDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, mapWriteError(err, "failed to update profile")
	}
	return doc.model()
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.setField(ctx, id, "password", passwordHash)
}

// UpdateProfileImage replaces the profile image URL.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, id, url string) error {
	return r.setField(ctx, id, "profile_img", url)
}

func (r *UserRepository) setField(ctx context.Context, id, field string, value interface{}) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: value, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func mapWriteError(err error, msg string) error {
	if field, ok := dberrors.MongoDuplicateField(err, userIndexes); ok {
		return repositories.DuplicateFieldError(models.UniqueField(field)).WithCause(err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
