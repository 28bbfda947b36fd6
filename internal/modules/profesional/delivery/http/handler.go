package handler

import (
	"net/http"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/Angel-Eco/CuidadoPRO/internal/middleware"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/dto"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProfesionalHandler struct {
	service service.ProfesionalService
}

func NewProfesionalHandler(service service.ProfesionalService) *ProfesionalHandler {
	return &ProfesionalHandler{service: service}
}

// isStaff reports whether the optional caller may see inactive professionals.
func isStaff(c *gin.Context) bool {
	user, ok := middleware.CurrentUser(c)
	return ok && user.HasRole(entity.RoleAdmin, entity.RoleManager)
}

func (h *ProfesionalHandler) ListActivos(c *gin.Context) {
	items, err := h.service.ListActivos(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, items)
}

func (h *ProfesionalHandler) Search(c *gin.Context) {
	var query dto.SearchProfesionalQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	items, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, items)
}

func (h *ProfesionalHandler) List(c *gin.Context) {
	var query dto.ListProfesionalQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	list, err := h.service.List(c.Request.Context(), query, isStaff(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, list)
}

func (h *ProfesionalHandler) GetByID(c *gin.Context) {
	p, err := h.service.GetByID(c.Request.Context(), c.Param("id"), isStaff(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, p)
}

func (h *ProfesionalHandler) Create(c *gin.Context) {
	var req dto.CreateProfesionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *ProfesionalHandler) Update(c *gin.Context) {
	var req dto.UpdateProfesionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	p, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, p)
}

func (h *ProfesionalHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{
		Success: true,
		Message: "Profesional eliminado exitosamente",
	})
}

// Reindex rebuilds the search index on demand.
func (h *ProfesionalHandler) Reindex(c *gin.Context) {
	n, err := h.service.Reindex(c.Request.Context())
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			err = apperror.Internal("Error al reindexar profesionales", err)
		}
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Índice de profesionales actualizado", gin.H{"indexed": n})
}
