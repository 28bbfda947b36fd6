package handler

import (
	"fmt"
	"net/http"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/upload/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/response"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service service.UploadService
}

func NewUploadHandler(service service.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) UploadProfesionalFoto(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("El archivo es obligatorio"))
		return
	}

	image := commonDto.ImageFile{
		FileName:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	// Reject before opening the part so oversized files are never read.
	if err := service.ValidateImage(image); err != nil {
		response.ResponseError(c, err)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.BadRequest("Error al leer el archivo: contenido no válido"))
		return
	}
	defer f.Close()
	image.Reader = f

	uploaded, err := h.service.UploadProfesionalFoto(c.Request.Context(), image)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Foto subida exitosamente", uploaded)
}

func (h *UploadHandler) DeleteProfesionalFoto(c *gin.Context) {
	filename := c.Param("filename")
	if err := h.service.DeleteProfesionalFoto(c.Request.Context(), filename); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, commonDto.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Archivo %s eliminado exitosamente", filename),
	})
}

func (h *UploadHandler) GetProfesionalFoto(c *gin.Context) {
	info, err := h.service.GetProfesionalFoto(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", info)
}
