package middleware

import (
	"context"
	"strings"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	userService "github.com/Angel-Eco/CuidadoPRO/internal/modules/user/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

type TokenParser interface {
	Parse(token string) (*userService.Claims, error)
}

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

type AuthMiddleware struct {
	tokens TokenParser
	users  UserFinder
}

func NewAuthMiddleware(tokens TokenParser, users UserFinder) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) (*entity.User, error) {
	claims, err := m.tokens.Parse(tokenString)
	if err != nil {
		return nil, apperror.Unauthorized("Token inválido o expirado")
	}

	user, err := m.users.FindByUsername(c.Request.Context(), claims.Subject)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Unauthorized("Usuario no encontrado")
		}
		return nil, apperror.Internal("Error al validar credenciales", err)
	}
	if claims.UserID != "" && claims.UserID != user.ID.String() {
		return nil, apperror.Unauthorized("Token inválido o expirado")
	}
	if !user.IsActive {
		return nil, apperror.BadRequest("Usuario inactivo")
	}
	return user, nil
}

// RequireAuth rejects requests without a valid bearer token for an active
// user and stores the user in the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Abort(c, apperror.Unauthorized("Token de autenticación requerido"))
			return
		}

		user, err := m.authenticate(c, tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous or badly authenticated requests through as anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if user, err := m.authenticate(c, tokenString); err == nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// RequireRoles must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Abort(c, apperror.Unauthorized("No autenticado"))
			return
		}

		if !user.HasRole(roles...) {
			response.Abort(c, apperror.Forbidden("No tiene permisos para realizar esta acción"))
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRoles(entity.RoleAdmin)
}

// RequireStaff admits admins and managers.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return m.RequireRoles(entity.RoleAdmin, entity.RoleManager)
}

func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}
