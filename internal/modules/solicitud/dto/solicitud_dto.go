package dto

import (
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	commonDto "github.com/Angel-Eco/CuidadoPRO/pkg/dto"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"
)

type CreateSolicitudRequest struct {
	Nombre        string  `json:"nombre" binding:"required,min=2,max=100"`
	Telefono      string  `json:"telefono" binding:"required,min=8,max=20,phone"`
	Email         string  `json:"email" binding:"required,max=100,hasat"`
	Direccion     string  `json:"direccion" binding:"required,min=10,max=200"`
	TipoServicio  string  `json:"tipo_servicio" binding:"required,min=2,max=100"`
	Comentarios   *string `json:"comentarios" binding:"omitempty,max=500"`
	FechaSugerida *string `json:"fecha_sugerida"`
	HoraSugerida  *string `json:"hora_sugerida"`
}

// UpdateSolicitudRequest applies only the fields that are present.
type UpdateSolicitudRequest struct {
	Nombre           *string `json:"nombre" binding:"omitempty,min=2,max=100"`
	Telefono         *string `json:"telefono" binding:"omitempty,min=8,max=20,phone"`
	Email            *string `json:"email" binding:"omitempty,max=100,hasat"`
	Direccion        *string `json:"direccion" binding:"omitempty,min=10,max=200"`
	TipoServicio     *string `json:"tipo_servicio" binding:"omitempty,min=2,max=100"`
	Comentarios      *string `json:"comentarios" binding:"omitempty,max=500"`
	ComentariosAdmin *string `json:"comentarios_admin" binding:"omitempty,max=1000"`
	Estado           *string `json:"estado" binding:"omitempty,oneof=pendiente confirmada en_progreso en_proceso completada cancelada"`
	FechaSugerida    *string `json:"fecha_sugerida"`
	HoraSugerida     *string `json:"hora_sugerida"`
}

func (r UpdateSolicitudRequest) IsEmpty() bool {
	return r.Nombre == nil &&
		r.Telefono == nil &&
		r.Email == nil &&
		r.Direccion == nil &&
		r.TipoServicio == nil &&
		r.Comentarios == nil &&
		r.ComentariosAdmin == nil &&
		r.Estado == nil &&
		r.FechaSugerida == nil &&
		r.HoraSugerida == nil
}

type ListSolicitudQuery struct {
	commonDto.Pagination
	Estado       string `form:"estado" binding:"omitempty,oneof=pendiente confirmada en_progreso en_proceso completada cancelada"`
	TipoServicio string `form:"tipo_servicio" binding:"omitempty,max=100"`
}

type SolicitudResponse struct {
	ID               string     `json:"id"`
	Nombre           string     `json:"nombre"`
	Telefono         string     `json:"telefono"`
	Email            string     `json:"email"`
	Direccion        string     `json:"direccion"`
	TipoServicio     string     `json:"tipo_servicio"`
	Comentarios      *string    `json:"comentarios"`
	ComentariosAdmin *string    `json:"comentarios_admin,omitempty"`
	Estado           string     `json:"estado"`
	FechaSugerida    *string    `json:"fecha_sugerida"`
	HoraSugerida     *string    `json:"hora_sugerida"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

func NewSolicitudResponse(s *entity.Solicitud) SolicitudResponse {
	var fecha *string
	if s.FechaSugerida != nil {
		f := s.FechaSugerida.Format(validator.DateLayout)
		fecha = &f
	}

	return SolicitudResponse{
		ID:               s.ID.String(),
		Nombre:           s.Nombre,
		Telefono:         s.Telefono,
		Email:            s.Email,
		Direccion:        s.Direccion,
		TipoServicio:     s.TipoServicio,
		Comentarios:      s.Comentarios,
		ComentariosAdmin: s.ComentariosAdmin,
		Estado:           string(s.EstadoActual()),
		FechaSugerida:    fecha,
		HoraSugerida:     s.HoraSugerida,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func NewSolicitudResponses(items []*entity.Solicitud) []SolicitudResponse {
	out := make([]SolicitudResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewSolicitudResponse(s))
	}
	return out
}

// StatsResponse feeds the admin dashboard.
type StatsResponse struct {
	Total           int64            `json:"total"`
	Pendientes      int64            `json:"pendientes"`
	Confirmadas     int64            `json:"confirmadas"`
	EnProgreso      int64            `json:"en_progreso"`
	Completadas     int64            `json:"completadas"`
	Canceladas      int64            `json:"canceladas"`
	PorTipoServicio map[string]int64 `json:"por_tipo_servicio"`
	PorMes          map[string]int64 `json:"por_mes"`
}
