package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/apperrors"
	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJWTAuth(t *testing.T) {
	clock := testNow
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "secret",
		AccessTokenExp: 24 * time.Hour,
		TokenIssuer:    "college-blog",
	}).WithClock(func() time.Time { return clock })
	token, _, err := jwtService.Issue("u-1")
	require.NoError(t, err)

	other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour})
	forged, _, err := other.Issue("u-1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(jwtService).JWTAuth(), func(c *gin.Context) {
		id, _ := UserID(c)
		identity, ok := auth.IdentityFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"id": id, "ctx": ok && identity.UserID == id})
	})

	tests := []struct {
		name    string
		header  string
		advance time.Duration
		status  int
		code    dto.ErrorCode
		msg     string
	}{
		{"missing header", "", 0, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Authentication required"},
		{"wrong scheme", "Token " + token, 0, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
		{"no token", "Bearer ", 0, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
		{"extra parts", "Bearer " + token + " x", 0, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
		{"garbage", "Bearer not.a.jwt", 0, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
		{"forged", "Bearer " + forged, 0, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
		{"expired", "Bearer " + token, 24*time.Hour + time.Second, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token has expired"},
		{"valid", "Bearer " + token, 0, http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock = testNow.Add(tt.advance)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"u-1","ctx":true}`, w.Body.String())
				return
			}
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.msg, body.Error)
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   dto.ErrorResponse
	}{
		{
			name:   "validation",
			err:    apperrors.NewValidationError([]string{"Password must be at least 6 characters long"}),
			status: http.StatusBadRequest,
			want: dto.ErrorResponse{Error: "Validation failed", Code: dto.ErrorCodeValidationFailed,
				Details: []interface{}{"Password must be at least 6 characters long"}},
		},
		{
			name:   "conflict",
			err:    apperrors.NewConflictError("email", "Email already registered"),
			status: http.StatusConflict,
			want:   dto.ErrorResponse{Error: "Email already registered", Code: dto.ErrorCodeResourceAlreadyExists, Field: "email"},
		},
		{
			name:   "forbidden",
			err:    apperrors.NewForbiddenError("Incorrect password"),
			status: http.StatusForbidden,
			want:   dto.ErrorResponse{Error: "Incorrect password", Code: dto.ErrorCodeForbidden},
		},
		{
			name:   "wrapped not found",
			err:    errors.Join(errors.New("lookup"), apperrors.ErrUserNotFound),
			status: http.StatusNotFound,
			want:   dto.ErrorResponse{Error: "User not found", Code: dto.ErrorCodeResourceNotFound},
		},
		{
			name:   "custom code",
			err:    apperrors.NewUnauthorizedError("Token has expired").WithCode(string(dto.ErrorCodeExpiredToken)),
			status: http.StatusUnauthorized,
			want:   dto.ErrorResponse{Error: "Token has expired", Code: dto.ErrorCodeExpiredToken},
		},
		{
			name:   "store deadline",
			err:    context.DeadlineExceeded,
			status: http.StatusServiceUnavailable,
			want:   dto.ErrorResponse{Error: msgUnavailable, Code: dto.ErrorCodeExternalServiceError},
		},
		{
			name:   "internal hides message",
			err:    errors.New("pq: relation users does not exist"),
			status: http.StatusInternalServerError,
			want:   dto.ErrorResponse{Error: msgInternal, Code: dto.ErrorCodeInternalServer},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.want, decodeError(t, w))
		})
	}
}

func TestHandleAPIError_DebugInDevelopment(t *testing.T) {
	gin.SetMode(gin.DebugMode)
	defer gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	HandleAPIError(c, errors.New("boom"))

	body := decodeError(t, w)
	assert.Equal(t, msgInternal, body.Error)
	assert.Equal(t, "boom", body.Debug)
}

func TestBindJSON(t *testing.T) {
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var body struct {
			Email string `json:"email"`
		}
		if !BindJSON(c, &body) {
			return
		}
		c.String(http.StatusOK, body.Email)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", jsonBody(`{"email":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, MsgInvalidBody, decodeError(t, w).Error)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", jsonBody(`{"email":"a@b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@b", w.Body.String())
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zerolog.Nop()), Recovery(zerolog.Nop()))
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Code)
}
