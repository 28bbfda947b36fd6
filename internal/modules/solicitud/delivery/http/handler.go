package handler

import (
	"net/http"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/dto"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/service"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SolicitudHandler struct {
	service service.SolicitudService
}

func NewSolicitudHandler(service service.SolicitudService) *SolicitudHandler {
	return &SolicitudHandler{service: service}
}

// CreateSolicitud handles the public booking form.
func (h *SolicitudHandler) CreateSolicitud(c *gin.Context) {
	var req dto.CreateSolicitudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	solicitud, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Solicitud creada exitosamente", solicitud)
}

func (h *SolicitudHandler) ListPublic(c *gin.Context) {
	solicitudes, err := h.service.ListPublic(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": solicitudes})
}

func (h *SolicitudHandler) List(c *gin.Context) {
	var query dto.ListSolicitudQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	solicitudes, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, solicitudes)
}

func (h *SolicitudHandler) ListPending(c *gin.Context) {
	solicitudes, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, solicitudes)
}

func (h *SolicitudHandler) GetByID(c *gin.Context) {
	solicitud, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, solicitud)
}

func (h *SolicitudHandler) Update(c *gin.Context) {
	var req dto.UpdateSolicitudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.BindError(err))
		return
	}

	solicitud, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Solicitud actualizada exitosamente", solicitud)
}

func (h *SolicitudHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{
		Success: true,
		Message: "Solicitud cancelada exitosamente",
	})
}

func (h *SolicitudHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, stats)
}
