// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/app/services"
	"github.com/Anandhu5Uthaman/College-mini/internal/middleware"
)

// AuthController handles signup and signin
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles user registration
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email, username, phone or KTU ID already registered"
// @Router /signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), req)
	if err != nil {
		c.logger.Debug().Err(err).Str("email", req.Email).Msg("Signup rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// Signin handles user login
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SigninRequest true "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Email and password are required"
// @Failure 403 {object} dto.ErrorResponse "Email not found or incorrect password"
// @Router /signin [post]
func (c *AuthController) Signin(ctx *gin.Context) {
	var req dto.SigninRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Signin(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
