package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cathoderay/accountsvc/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubVerifier map[string]string

func (v stubVerifier) Verify(token string) (string, error) {
	if email, ok := v[token]; ok {
		return email, nil
	}
	return "", errors.Wrap(models.ErrUnauthorized, "unknown token")
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(stubVerifier{"good": "ann@x.com"}), func(c *gin.Context) {
		email, ok := GetEmail(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": email})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedEmail  string
	}{
		{name: "valid token", header: "Bearer good", expectedStatus: http.StatusOK, expectedEmail: "ann@x.com"},
		{name: "lowercase scheme", header: "bearer good", expectedStatus: http.StatusOK, expectedEmail: "ann@x.com"},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", expectedStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", expectedStatus: http.StatusUnauthorized},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.expectedEmail != "" {
				require.Equal(t, tt.expectedEmail, body["email"])
			} else {
				require.NotEmpty(t, body["message"])
			}
		})
	}
}

type signupRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Nick  *string `json:"nick" validate:"omitempty,min=1"`
}

func TestValidateRequest(t *testing.T) {
	require.Nil(t, ValidateRequest(signupRequest{Name: "Ann", Email: "ann@x.com"}))

	empty := ""
	errs := ValidateRequest(signupRequest{Email: "not-an-email", Nick: &empty})
	require.Len(t, errs, 3)
	require.Equal(t, ValidationError{Field: "Name", Message: "This field is required", Type: "required"}, errs[0])
	require.Equal(t, ValidationError{Field: "Email", Message: "Invalid email format", Type: "email"}, errs[1])
	require.Equal(t, ValidationError{Field: "Nick", Message: "Value is too short", Type: "min"}, errs[2])
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, generated)
	require.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(t, "req-1", entries[1].ContextMap()["requestId"])
	require.Equal(t, int64(http.StatusInternalServerError), entries[1].ContextMap()["status"])
}
