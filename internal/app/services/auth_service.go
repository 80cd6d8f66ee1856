package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/repositories"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/validation"
)

// Sign-in failure messages.
const (
	MsgCredentialsRequired = "Email and password are required"
	MsgEmailNotFound       = "Email not found"
	MsgIncorrectPassword   = "Incorrect password"
)

// AuthService handles authentication operations
type AuthService struct {
	users        repositories.UserRepository
	hasher       auth.Hasher
	jwtService   *auth.JWTService
	rules        *validation.Rules
	publisher    events.Publisher
	queryTimeout time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	hasher auth.Hasher,
	jwtService *auth.JWTService,
	rules *validation.Rules,
	publisher events.Publisher,
	queryTimeout time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:        users,
		hasher:       hasher,
		jwtService:   jwtService,
		rules:        rules,
		publisher:    publisher,
		queryTimeout: queryTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Register validates req, checks uniqueness, stores the account and signs the
// new user in.
func (s *AuthService) Register(ctx context.Context, req dto.SignupRequest) (*dto.AuthResponse, error) {
	in := validation.SignupInput{
		Fullname:    req.Fullname,
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		Role:        req.Role,
		Department:  req.Department,
		KTUID:       req.KTUID,
		PassoutYear: req.PassoutYear,
		Phone:       req.Phone,
	}
	if violations := s.rules.Signup(in); len(violations) > 0 {
		return nil, apperrors.NewValidationError(violations)
	}

	details, err := validation.BuildRoleDetails(in)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	department, _ := models.ParseDepartment(req.Department)

	username := req.Username
	if username == "" {
		username = strings.TrimSuffix(req.Email, s.rules.EmailDomain())
	}

	checks := []uniqueCheck{
		{models.UniqueEmail, req.Email},
		{models.UniqueUsername, username},
		{models.UniquePhone, req.Phone},
	}
	if ktuID, ok := models.KTUIDOf(details); ok {
		checks = append(checks, uniqueCheck{models.UniqueKTUID, ktuID})
	}
	for _, c := range checks {
		if err := s.ensureUnique(ctx, c.field, c.value, ""); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Fullname:     strings.TrimSpace(req.Fullname),
		Email:        req.Email,
		PasswordHash: hash,
		Username:     username,
		Department:   department,
		Details:      details,
		Phone:        req.Phone,
		ProfileImg:   models.DefaultAvatarURL(),
		SocialLinks:  models.SocialLinks{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	err = s.users.Create(storeCtx, user)
	cancel()
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role())).Msg("User registered")
	publish(ctx, s.publisher, s.logger, events.New(events.UserRegistered, user.ID, map[string]string{
		"user_id":  user.ID,
		"username": user.Username,
		"fullname": user.Fullname,
		"email":    user.Email,
		"role":     string(user.Role()),
	}))

	resp, err := s.authResponse(user)
	if err != nil {
		return nil, err
	}
	resp.Message = "User registered successfully"
	return resp, nil
}

// Signin checks credentials and issues a session token.
func (s *AuthService) Signin(ctx context.Context, req dto.SigninRequest) (*dto.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError(MsgCredentialsRequired)
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	user, err := s.users.FindByEmail(storeCtx, req.Email)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewForbiddenError(MsgEmailNotFound)
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Debug().Str("user_id", user.ID).Msg("Sign-in with incorrect password")
		return nil, apperrors.NewForbiddenError(MsgIncorrectPassword)
	}

	return s.authResponse(user)
}

func (s *AuthService) ensureUnique(ctx context.Context, field models.UniqueField, value, excludeID string) error {
	storeCtx, cancel := withStoreTimeout(ctx, s.queryTimeout)
	defer cancel()
	return ensureUnique(storeCtx, s.users, field, value, excludeID)
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, _, err := s.jwtService.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &dto.AuthResponse{
		AccessToken: token,
		ProfileImg:  user.ProfileImg,
		Username:    user.Username,
		Fullname:    user.Fullname,
		Role:        string(user.Role()),
	}, nil
}

type uniqueCheck struct {
	field models.UniqueField
	value string
}

// ensureUnique fails with the field's conflict error when another user holds value.
func ensureUnique(ctx context.Context, users repositories.UserRepository, field models.UniqueField, value, excludeID string) error {
	exists, err := users.ExistsBy(ctx, field, value, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return repositories.DuplicateFieldError(field)
	}
	return nil
}
