package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	userService "github.com/Angel-Eco/CuidadoPRO/internal/modules/user/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Fakes ====================

type fakeUsers map[string]*entity.User

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("Usuario no encontrado")
}

type failingUsers struct{}

func (failingUsers) FindByUsername(context.Context, string) (*entity.User, error) {
	return nil, errors.New("connection reset")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newUser(username, role string, active bool) *entity.User {
	return &entity.User{ID: uuid.New(), Username: username, Role: role, IsActive: active}
}

func setupRouter(tokens *userService.TokenManager, users UserFinder) *gin.Engine {
	m := NewAuthMiddleware(tokens, users)
	r := gin.New()

	whoami := func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	}

	r.GET("/protected", m.RequireAuth(), whoami)
	r.GET("/staff", m.RequireAuth(), m.RequireStaff(), whoami)
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), whoami)
	r.GET("/optional", m.OptionalAuth(), whoami)
	return r
}

func do(t *testing.T, r http.Handler, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func tokenFor(t *testing.T, tokens *userService.TokenManager, u *entity.User) string {
	t.Helper()
	token, _, err := tokens.Generate(u)
	require.NoError(t, err)
	return token
}

// ==================== RequireAuth ====================

func TestRequireAuth(t *testing.T) {
	tokens := userService.NewTokenManager("middleware-test-secret", time.Hour)
	admin := newUser("admin", entity.RoleAdmin, true)
	inactive := newUser("baja", entity.RoleAdmin, false)
	users := fakeUsers{admin.Username: admin, inactive.Username: inactive}
	r := setupRouter(tokens, users)

	t.Run("missing token", func(t *testing.T) {
		w, body := do(t, r, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token de autenticación requerido", body["detail"])
		assert.Equal(t, false, body["success"])
	})

	t.Run("garbage token", func(t *testing.T) {
		w, _ := do(t, r, "/protected", "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := userService.NewTokenManager("some-other-secret", time.Hour)
		w, _ := do(t, r, "/protected", tokenFor(t, other, admin))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost := newUser("ghost", entity.RoleAdmin, true)
		w, _ := do(t, r, "/protected", tokenFor(t, tokens, ghost))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("recreated user with same username", func(t *testing.T) {
		stale := newUser("admin", entity.RoleAdmin, true)
		w, _ := do(t, r, "/protected", tokenFor(t, tokens, stale))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		w, body := do(t, r, "/protected", tokenFor(t, tokens, inactive))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Usuario inactivo", body["detail"])
	})

	t.Run("valid token", func(t *testing.T) {
		w, body := do(t, r, "/protected", tokenFor(t, tokens, admin))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", body["user"])
	})
}

func TestRequireAuthLookupFailure(t *testing.T) {
	tokens := userService.NewTokenManager("middleware-test-secret", time.Hour)
	r := setupRouter(tokens, failingUsers{})

	w, body := do(t, r, "/protected", tokenFor(t, tokens, newUser("admin", entity.RoleAdmin, true)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error al validar credenciales", body["detail"])
}

// ==================== Roles ====================

func TestRoleGates(t *testing.T) {
	tokens := userService.NewTokenManager("middleware-test-secret", time.Hour)
	admin := newUser("admin", entity.RoleAdmin, true)
	manager := newUser("gestor", entity.RoleManager, true)
	viewer := newUser("visor", entity.RoleViewer, true)
	r := setupRouter(tokens, fakeUsers{
		admin.Username:   admin,
		manager.Username: manager,
		viewer.Username:  viewer,
	})

	tests := []struct {
		path string
		user *entity.User
		want int
	}{
		{"/staff", admin, http.StatusOK},
		{"/staff", manager, http.StatusOK},
		{"/staff", viewer, http.StatusForbidden},
		{"/admin", admin, http.StatusOK},
		{"/admin", manager, http.StatusForbidden},
		{"/admin", viewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.path+" as "+tt.user.Role, func(t *testing.T) {
			w, body := do(t, r, tt.path, tokenFor(t, tokens, tt.user))
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, "No tiene permisos para realizar esta acción", body["detail"])
			}
		})
	}
}

// ==================== OptionalAuth ====================

func TestOptionalAuth(t *testing.T) {
	tokens := userService.NewTokenManager("middleware-test-secret", time.Hour)
	admin := newUser("admin", entity.RoleAdmin, true)
	r := setupRouter(tokens, fakeUsers{admin.Username: admin})

	w, body := do(t, r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["user"])

	w, body = do(t, r, "/optional", "broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, body["user"])

	w, body = do(t, r, "/optional", tokenFor(t, tokens, admin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", body["user"])
}

// ==================== RateLimit ====================

type stubLimiter struct {
	ok    bool
	retry time.Duration
	err   error
}

func (s stubLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return s.ok, s.retry, s.err
}

func TestRateLimit(t *testing.T) {
	newRouter := func(l stubLimiter) *gin.Engine {
		r := gin.New()
		r.POST("/solicitud", RateLimit(l, "Demasiadas solicitudes"), func(c *gin.Context) {
			response.Success(c, http.StatusCreated, "ok", nil)
		})
		return r
	}

	post := func(r http.Handler) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/solicitud", nil))
		return w
	}

	w := post(newRouter(stubLimiter{ok: true}))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = post(newRouter(stubLimiter{ok: false, retry: 1500 * time.Millisecond}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Demasiadas solicitudes")

	w = post(newRouter(stubLimiter{err: errors.New("redis down")}))
	assert.Equal(t, http.StatusCreated, w.Code)
}
