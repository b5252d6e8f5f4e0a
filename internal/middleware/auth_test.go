package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tambo-ai/cliauth/internal/metrics"
	"github.com/tambo-ai/cliauth/internal/models"
	"github.com/tambo-ai/cliauth/internal/services"
	"github.com/tambo-ai/cliauth/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)

	s, err := store.New("sqlite", ":memory:", zap.NewNop(), store.Options{})
	require.NoError(t, err)
	sqlDB, err := s.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	return r, s
}

func TestRequireBrowserAuth(t *testing.T) {
	r, _ := setupRouter(t)

	r.POST("/login-as", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserID, "u1")
		session.Set(SessionID, "browser-1")
		_ = session.Save()
		c.Status(http.StatusOK)
	})
	r.GET("/protected", RequireBrowserAuth(), func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":    userID,
			"browser_id": CurrentBrowserSessionID(c),
		})
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("with session cookie", func(t *testing.T) {
		login := httptest.NewRecorder()
		r.ServeHTTP(login, httptest.NewRequest("POST", "/login-as", nil))
		require.Equal(t, http.StatusOK, login.Code)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/protected", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "u1")
		assert.Contains(t, w.Body.String(), "browser-1")
	})
}

func TestRequireAuth_BearerToken(t *testing.T) {
	r, s := setupRouter(t)

	user := &models.User{
		ID:       uuid.New().String(),
		Username: "alice",
		Email:    "alice@example.com",
	}
	require.NoError(t, s.DB().Create(user).Error)

	session := &models.CliSession{
		ID:       "test-bearer-token",
		UserID:   user.ID,
		NotAfter: time.Now().Add(time.Hour),
	}
	require.NoError(t, s.DB().Create(session).Error)

	expired := &models.CliSession{
		ID:       "expired-bearer-token",
		UserID:   user.ID,
		NotAfter: time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.DB().Create(expired).Error)

	sessionService := services.NewSessionService(s, metrics.NewNoopMetrics(), zap.NewNop())
	r.GET("/protected", RequireAuth(sessionService), func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid token", authHeader: "Bearer test-bearer-token", wantStatus: http.StatusOK},
		{name: "case insensitive scheme", authHeader: "bearer test-bearer-token", wantStatus: http.StatusOK},
		{name: "expired token", authHeader: "Bearer expired-bearer-token", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", authHeader: "Bearer bogus", wantStatus: http.StatusUnauthorized},
		{name: "no header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), user.ID)
			}
		})
	}
}
