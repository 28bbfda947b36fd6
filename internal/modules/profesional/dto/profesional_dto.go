package dto

import (
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
)

type CreateProfesionalRequest struct {
	Nombre       string  `json:"nombre" binding:"required,min=2,max=100"`
	Especialidad string  `json:"especialidad" binding:"required,min=2,max=100"`
	Experiencia  *int    `json:"experiencia" binding:"required,min=0,max=50"`
	Descripcion  string  `json:"descripcion" binding:"required,min=10,max=500"`
	Telefono     *string `json:"telefono" binding:"omitempty,max=20,phone"`
	Email        *string `json:"email" binding:"omitempty,max=100,hasat"`
	Activo       *bool   `json:"activo"`
	Orden        *int    `json:"orden" binding:"omitempty,min=0"`
	ImagenURL    *string `json:"imagen_url" binding:"omitempty,url"`
}

// UpdateProfesionalRequest applies only the fields that are present.
type UpdateProfesionalRequest struct {
	Nombre       *string `json:"nombre" binding:"omitempty,min=2,max=100"`
	Especialidad *string `json:"especialidad" binding:"omitempty,min=2,max=100"`
	Experiencia  *int    `json:"experiencia" binding:"omitempty,min=0,max=50"`
	Descripcion  *string `json:"descripcion" binding:"omitempty,min=10,max=500"`
	Telefono     *string `json:"telefono" binding:"omitempty,max=20,phone"`
	Email        *string `json:"email" binding:"omitempty,max=100,hasat"`
	Activo       *bool   `json:"activo"`
	Orden        *int    `json:"orden" binding:"omitempty,min=0"`
	ImagenURL    *string `json:"imagen_url" binding:"omitempty,url"`
}

func (r UpdateProfesionalRequest) IsEmpty() bool {
	return r.Nombre == nil &&
		r.Especialidad == nil &&
		r.Experiencia == nil &&
		r.Descripcion == nil &&
		r.Telefono == nil &&
		r.Email == nil &&
		r.Activo == nil &&
		r.Orden == nil &&
		r.ImagenURL == nil
}

type ListProfesionalQuery struct {
	commonDto.Pagination
	Activo       *bool  `form:"activo"`
	Especialidad string `form:"especialidad" binding:"omitempty,max=100"`
}

type SearchProfesionalQuery struct {
	Q     string `form:"q" binding:"required,min=2,max=100"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type ProfesionalResponse struct {
	ID           string     `json:"id"`
	Nombre       string     `json:"nombre"`
	Especialidad string     `json:"especialidad"`
	Experiencia  int        `json:"experiencia"`
	Descripcion  string     `json:"descripcion"`
	Telefono     *string    `json:"telefono"`
	Email        *string    `json:"email"`
	Activo       bool       `json:"activo"`
	Orden        int        `json:"orden"`
	ImagenURL    *string    `json:"imagen_url"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type ProfesionalListResponse struct {
	Profesionales []ProfesionalResponse `json:"profesionales"`
	Total         int64                 `json:"total"`
}

func NewProfesionalResponse(p *entity.Profesional) ProfesionalResponse {
	return ProfesionalResponse{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		Especialidad: p.Especialidad,
		Experiencia:  p.Experiencia,
		Descripcion:  p.Descripcion,
		Telefono:     p.Telefono,
		Email:        p.Email,
		Activo:       p.Activo,
		Orden:        p.Orden,
		ImagenURL:    p.ImagenURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func NewProfesionalResponses(items []*entity.Profesional) []ProfesionalResponse {
	out := make([]ProfesionalResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewProfesionalResponse(p))
	}
	return out
}
