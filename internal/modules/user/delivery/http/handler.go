package handler

import (
	"net/http"

	"github.com/Angel-Eco/CuidadoPRO/internal/middleware"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/user/dto"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/user/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout only acknowledges; tokens are dropped by the client.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, commonDto.MessageResponse{
		Success: true,
		Message: "Sesión cerrada exitosamente",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ResponseError(c, apperror.Unauthorized("No autenticado"))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.ResponseError(c, apperror.Unauthorized("No autenticado"))
		return
	}
	c.JSON(http.StatusOK, dto.VerifyResponse{Valid: true, User: user})
}
