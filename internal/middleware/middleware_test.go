package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/models/dto"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool            `json:"success"`
	Error   dto.ErrorDetail `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
		field   string
	}{
		{"field validation", apperrors.NewFieldValidationError("gpa", "gpa expects a NUMBER"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "gpa expects a NUMBER", "gpa"},
		{"plain validation", apperrors.ErrValidation, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", ""},
		{"not found", apperrors.NewNotFoundError("entity x not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "entity x not found", ""},
		{"conflict", apperrors.ErrEmailAlreadyInUse, http.StatusConflict, dto.ErrorCodeConflict, "email already in use", ""},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials", ""},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled, "Account is disabled", ""},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required", ""},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied", ""},
		{"infrastructure", apperrors.NewInfrastructureError(errors.New("conn reset"), "list entities"), http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Storage unavailable", ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			assert.Equal(t, tt.field, body.Error.Field)
		})
	}
}

func TestHandleAPIError_Severity(t *testing.T) {
	tests := []struct {
		err      error
		severity dto.ErrorSeverity
	}{
		{apperrors.NewValidationError("bad"), dto.ErrorSeverityWarning},
		{apperrors.ErrPermissionDenied, dto.ErrorSeverityError},
		{apperrors.NewInfrastructureError(errors.New("down"), "ping"), dto.ErrorSeverityCritical},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(c, tt.err)
		assert.Equal(t, tt.severity, decodeError(t, w).Error.Severity, tt.err.Error())
	}
}

func TestHandleBindingError(t *testing.T) {
	router := gin.New()
	router.POST("/", func(c *gin.Context) {
		var req dto.CreateAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","role":"JANITOR"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email must be a valid email address")
	assert.Contains(t, w.Body.String(), "role must be one of: ADMIN STAFF STUDENT PARENT")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request format", decodeError(t, w).Error.Message)
}

func authRouter(jwtService *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwtService)
	router := gin.New()
	router.Use(m.JWTAuth())
	router.GET("/me", func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accountId": actor.AccountID, "role": actor.Role})
	})
	router.GET("/admin", m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "mw", AccessTokenExp: time.Hour, TokenIssuer: "unicampus.test"})
	expiredService := auth.NewJWTService(auth.JWTConfig{SecretKey: "mw", AccessTokenExp: -time.Minute, TokenIssuer: "unicampus.test"})
	router := authRouter(jwtService)

	staff := &models.Account{ID: "staff-1", Email: "s@uni.edu", Role: models.RoleStaff}
	token, _, err := jwtService.GenerateAccessToken(staff)
	require.NoError(t, err)
	expired, _, err := expiredService.GenerateAccessToken(staff)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   dto.ErrorCode
	}{
		{"missing header", "/me", "", http.StatusUnauthorized, dto.ErrorCodeTokenNotFound},
		{"garbage", "/me", "Bearer not.a.jwt", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
		{"expired", "/me", "Bearer " + expired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"quoted token", "/me", `"Bearer ` + token + `"`, http.StatusOK, ""},
		{"valid", "/me", "Bearer " + token, http.StatusOK, ""},
		{"wrong role", "/admin", "Bearer " + token, http.StatusForbidden, dto.ErrorCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
				return
			}
			assert.Contains(t, w.Body.String(), `"accountId":"staff-1"`)
		})
	}
}

func TestRoleRequired_WithoutActor(t *testing.T) {
	m := NewAuthMiddleware(nil)
	router := gin.New()
	router.GET("/", m.RoleRequired(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/teapot", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
