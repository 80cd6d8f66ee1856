package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/middleware"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
)

// ProfileImageField is the multipart field carrying the profile image.
const ProfileImageField = "profileImage"

// UserController handles profile operations
type UserController struct {
	userService *services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new user controller
func NewUserController(userService *services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// callerID returns the authenticated user or writes a 401.
func callerID(ctx *gin.Context) (string, bool) {
	id, ok := middleware.UserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Authentication required"))
	}
	return id, ok
}

// GetProfile returns the caller's profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserProfile
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	profile, err := c.userService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// GetPublicProfile returns another user's profile by username or id
// @Summary Get a public profile
// @Tags profile
// @Produce json
// @Param username path string true "Username or user id"
// @Success 200 {object} dto.UserProfile
// @Failure 404 {object} dto.ErrorResponse
// @Router /profile/{username} [get]
func (c *UserController) GetPublicProfile(ctx *gin.Context) {
	profile, err := c.userService.GetPublicProfile(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// UpdateProfile edits the caller's profile
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.UpdateProfileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.userService.UpdateProfile(ctx.Request.Context(), userID, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ChangePassword replaces the caller's password
// @Summary Change password
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Current password is incorrect"
// @Router /change-password [post]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.userService.ChangePassword(ctx.Request.Context(), userID, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: services.MsgPasswordChanged})
}

// UploadProfileImage stores a new profile picture
// @Summary Upload profile image
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param profileImage formData file true "JPEG or PNG, at most 5MB"
// @Success 200 {object} dto.ProfileImageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /upload-profile-image [post]
func (c *UserController) UploadProfileImage(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile(ProfileImageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(services.MsgImageRequired))
			return
		}
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid multipart form").WithDetails(err.Error()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.userService.UploadProfileImage(ctx.Request.Context(), userID, services.ImageUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Body:     file,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("user_id", userID).Str("url", url).Msg("Profile image updated")
	ctx.JSON(http.StatusOK, dto.ProfileImageResponse{
		ProfileImageURL: url,
		Message:         services.MsgProfileImageUploaded,
	})
}
