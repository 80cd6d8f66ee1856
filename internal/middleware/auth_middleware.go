package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
)

// ContextUserID is the gin context key holding the authenticated user's id.
const ContextUserID = "userID"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware for authentication
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// JWTAuth requires an "Authorization: Bearer <token>" header and attaches the
// caller's identity to the request.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeTokenNotFound, "Authentication required", "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token format", "Expected: Bearer <token>")
			return
		}

		claims, err := m.verifier.Verify(tokenString)
		if err != nil {
			reason, _ := auth.ReasonOf(err)
			switch reason {
			case auth.ReasonExpired:
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired", "Please sign in again")
			case auth.ReasonMissing:
				abortUnauthorized(c, dto.ErrorCodeTokenNotFound, "Authentication required", "Authorization header missing")
			default:
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token", string(reason))
			}
			return
		}

		identity := auth.Identity{UserID: claims.UserID}
		if claims.ExpiresAt != nil {
			identity.ExpiresAt = claims.ExpiresAt.Unix()
		}
		c.Set(ContextUserID, claims.UserID)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message, details string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message).WithDetails(details))
}

// UserID returns the id set by JWTAuth.
func UserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
