package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/cache"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/filestorage"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/validation"
)

// DefaultMaxImageSize is the profile image ceiling when none is configured.
const DefaultMaxImageSize = 5 << 20

// Profile and password messages.
const (
	MsgProfileUpdated       = "Profile updated successfully"
	MsgPasswordChanged      = "Password changed successfully"
	MsgPasswordsRequired    = "Current password and new password are required"
	MsgCurrentPasswordWrong = "Current password is incorrect"
	MsgProfileImageUploaded = "Profile image uploaded successfully"
	MsgImageRequired        = "No image file provided"
	MsgImageType            = "Only .jpg, .jpeg and .png images are allowed"
	MsgImageTooLarge        = "Image must be 5MB or smaller"
)

const profileImageDir = "profiles"

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ImageUpload is a profile image received from a client.
type ImageUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// UserService handles profile operations
type UserService struct {
	users        repositories.UserRepository
	hasher       auth.Hasher
	rules        *validation.Rules
	profiles     cache.Store[dto.UserProfile]
	storage      filestorage.FileStorage
	publisher    events.Publisher
	queryTimeout time.Duration
	maxImageSize int64
	logger       zerolog.Logger
}

// NewUserService creates a new UserService. profiles may be cache.Nop.
func NewUserService(
	users repositories.UserRepository,
	hasher auth.Hasher,
	rules *validation.Rules,
	profiles cache.Store[dto.UserProfile],
	storage filestorage.FileStorage,
	publisher events.Publisher,
	queryTimeout time.Duration,
	maxImageSize int64,
	logger zerolog.Logger,
) *UserService {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &UserService{
		users:        users,
		hasher:       hasher,
		rules:        rules,
		profiles:     profiles,
		storage:      storage,
		publisher:    publisher,
		queryTimeout: queryTimeout,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

// GetProfile returns the caller's own profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*dto.UserProfile, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserProfile(user), nil
}

// GetPublicProfile looks a profile up by username, or by id when the
// parameter is a UUID. Results are cached.
func (s *UserService) GetPublicProfile(ctx context.Context, usernameOrID string) (*dto.UserProfile, error) {
	if cached, err := s.profiles.Load(ctx, usernameOrID); err != nil {
		s.logger.Warn().Err(err).Str("key", usernameOrID).Msg("Profile cache read failed")
	} else if cached != nil {
		return cached, nil
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	user, err := s.users.FindByUsername(storeCtx, usernameOrID)
	cancel()
	if err != nil && apperrors.KindOf(err) == apperrors.KindNotFound {
		if _, perr := uuid.Parse(usernameOrID); perr == nil {
			user, err = s.findByID(ctx, usernameOrID)
		}
	}
	if err != nil {
		return nil, err
	}

	profile := dto.NewUserProfile(user)
	if err := s.profiles.Save(ctx, usernameOrID, profile); err != nil {
		s.logger.Warn().Err(err).Str("key", usernameOrID).Msg("Profile cache write failed")
	}
	return profile, nil
}

// UpdateProfile applies the allowed fields of req to the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	if req.Fullname != nil {
		name := strings.TrimSpace(*req.Fullname)
		req.Fullname = &name
	}
	violations := validation.Struct(req)

	current, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var patch models.ProfilePatch
	if req.Department != nil {
		dept, ok := models.ParseDepartment(*req.Department)
		if !ok {
			violations = append(violations, validation.MsgDepartment)
		}
		patch.Department = &dept
	}
	violations = append(violations, s.rules.Profile(validation.ProfileInput{
		Phone:       req.Phone,
		KTUID:       req.KTUID,
		PassoutYear: req.PassoutYear,
	}, current.Details)...)
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	patch.Fullname = req.Fullname
	patch.Phone = req.Phone
	patch.Bio = req.Bio
	patch.Details = patchedDetails(current.Details, req.KTUID, req.PassoutYear)
	if req.SocialLinks != nil {
		patch.SocialLinks = current.SocialLinks.Merge(req.SocialLinks)
	}

	if req.Phone != nil && *req.Phone != current.Phone {
		if err := s.ensureUnique(ctx, models.UniquePhone, *req.Phone, userID); err != nil {
			return nil, err
		}
	}
	if patch.Details != nil {
		newID, hasID := models.KTUIDOf(patch.Details)
		oldID, _ := models.KTUIDOf(current.Details)
		if hasID && newID != oldID {
			if err := s.ensureUnique(ctx, models.UniqueKTUID, newID, userID); err != nil {
				return nil, err
			}
		}
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	updated, err := s.users.UpdateProfile(storeCtx, userID, patch)
	cancel()
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, current)
	publish(ctx, s.publisher, s.logger, events.New(events.UserProfileUpdated, userID, map[string]string{
		"user_id":  userID,
		"username": updated.Username,
	}))

	return &dto.UpdateProfileResponse{
		Message: MsgProfileUpdated,
		User:    dto.NewUserProfile(updated),
	}, nil
}

// patchedDetails merges supplied KTU id and passout year into the current
// role variant. It returns nil when neither applies.
func patchedDetails(current models.RoleDetails, ktuID *string, passoutYear *int) models.RoleDetails {
	switch d := current.(type) {
	case models.StudentDetails:
		if ktuID == nil {
			return nil
		}
		return models.StudentDetails{KTUID: *ktuID}
	case models.AlumniDetails:
		if ktuID == nil && passoutYear == nil {
			return nil
		}
		if ktuID != nil {
			d.KTUID = *ktuID
		}
		if passoutYear != nil {
			d.PassoutYear = *passoutYear
		}
		return d
	case models.FacultyDetails:
		return nil
	default:
		panic(fmt.Sprintf("services: unhandled role details %T", current))
	}
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewBadRequestError(MsgPasswordsRequired)
	}

	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return apperrors.NewForbiddenError(MsgCurrentPasswordWrong)
	}

	if violations := validation.PasswordViolations(req.NewPassword); len(violations) > 0 {
		return apperrors.NewValidationError(violations)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	err = s.users.UpdatePassword(storeCtx, userID, hash)
	cancel()
	if err != nil {
		return err
	}

	s.invalidate(ctx, user)
	publish(ctx, s.publisher, s.logger, events.New(events.UserPasswordChanged, userID, map[string]string{
		"user_id": userID,
	}))
	s.logger.Info().Str("user_id", userID).Msg("Password changed")
	return nil
}

// UploadProfileImage checks and stores img, then points the caller's profile at it.
// The previous image is removed from storage when it was stored there.
func (s *UserService) UploadProfileImage(ctx context.Context, userID string, img ImageUpload) (string, error) {
	if img.Body == nil {
		return "", apperrors.NewBadRequestError(MsgImageRequired)
	}
	if img.Size > s.maxImageSize {
		return "", apperrors.NewBadRequestError(MsgImageTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(img.Filename))
	wantType, ok := allowedImageTypes[ext]
	if !ok {
		return "", apperrors.NewBadRequestError(MsgImageType)
	}

	data, err := io.ReadAll(io.LimitReader(img.Body, s.maxImageSize+1))
	if err != nil {
		return "", apperrors.NewBadRequestError("Failed to read uploaded file")
	}
	if int64(len(data)) > s.maxImageSize {
		return "", apperrors.NewBadRequestError(MsgImageTooLarge)
	}
	if len(data) == 0 {
		return "", apperrors.NewBadRequestError(MsgImageRequired)
	}
	if detected := mimetype.Detect(data); !detected.Is(wantType) {
		s.logger.Debug().Str("declared", ext).Str("detected", detected.String()).Msg("Rejected profile image")
		return "", apperrors.NewBadRequestError(MsgImageType)
	}

	user, err := s.findByID(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.storage.Save(ctx, filestorage.Object{
		Dir:         profileImageDir,
		Ext:         ext,
		ContentType: wantType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	err = s.users.UpdateProfileImage(storeCtx, userID, url)
	cancel()
	if err != nil {
		if derr := s.storage.Delete(ctx, url); derr != nil {
			s.logger.Warn().Err(derr).Str("url", url).Msg("Failed to remove orphaned profile image")
		}
		return "", err
	}

	if user.ProfileImg != "" {
		if err := s.storage.Delete(ctx, user.ProfileImg); err != nil {
			s.logger.Warn().Err(err).Str("url", user.ProfileImg).Msg("Failed to remove previous profile image")
		}
	}
	s.invalidate(ctx, user)
	return url, nil
}

func (s *UserService) findByID(ctx context.Context, id string) (*models.User, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.users.FindByID(storeCtx, id)
}

func (s *UserService) ensureUnique(ctx context.Context, field models.UniqueField, value, excludeID string) error {
	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	return ensureUnique(storeCtx, s.users, field, value, excludeID)
}

// invalidate drops the cached public profile under both lookup keys.
func (s *UserService) invalidate(ctx context.Context, u *models.User) {
	if err := s.profiles.Delete(ctx, u.Username, u.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", u.ID).Msg("Profile cache invalidation failed")
	}
}
