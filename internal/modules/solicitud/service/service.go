package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/dto"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/repository"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const statsMonths = 12

type SolicitudService interface {
	Create(ctx context.Context, req dto.CreateSolicitudRequest) (*dto.SolicitudResponse, error)
	ListPublic(ctx context.Context) ([]dto.SolicitudResponse, error)
	List(ctx context.Context, query dto.ListSolicitudQuery) ([]dto.SolicitudResponse, error)
	ListPending(ctx context.Context) ([]dto.SolicitudResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SolicitudResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateSolicitudRequest) (*dto.SolicitudResponse, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type solicitudService struct {
	repo repository.SolicitudRepository
	log  zerolog.Logger
	now  func() time.Time
}

type Option func(*solicitudService)

// WithClock overrides the clock used for timestamps and statistics.
func WithClock(now func() time.Time) Option {
	return func(s *solicitudService) { s.now = now }
}

func NewSolicitudService(repo repository.SolicitudRepository, log zerolog.Logger, opts ...Option) SolicitudService {
	s := &solicitudService{
		repo: repo,
		log:  log.With().Str("module", "solicitud").Logger(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *solicitudService) Create(ctx context.Context, req dto.CreateSolicitudRequest) (*dto.SolicitudResponse, error) {
	fecha, hora, err := parseSchedule(req.FechaSugerida, req.HoraSugerida)
	if err != nil {
		return nil, err
	}

	estado := string(entity.EstadoPendiente)
	solicitud := &entity.Solicitud{
		Nombre:        validator.SanitizeText(req.Nombre),
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     validator.SanitizeText(req.Direccion),
		TipoServicio:  req.TipoServicio,
		Comentarios:   validator.SanitizeOptional(req.Comentarios),
		Estado:        &estado,
		FechaSugerida: fecha,
		HoraSugerida:  hora,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, solicitud); err != nil {
		return nil, apperror.Internal("No se pudo crear la solicitud", err)
	}

	s.log.Info().
		Str("id", solicitud.ID.String()).
		Str("tipo_servicio", solicitud.TipoServicio).
		Msg("solicitud created")

	resp := dto.NewSolicitudResponse(solicitud)
	return &resp, nil
}

func (s *solicitudService) ListPublic(ctx context.Context) ([]dto.SolicitudResponse, error) {
	solicitudes, err := s.repo.FindAll(ctx, repository.Filter{})
	if err != nil {
		return nil, apperror.Internal("Error al obtener las solicitudes", err)
	}
	return dto.NewSolicitudResponses(solicitudes), nil
}

func (s *solicitudService) List(ctx context.Context, query dto.ListSolicitudQuery) ([]dto.SolicitudResponse, error) {
	query.Normalize()

	filter := repository.Filter{
		TipoServicio: query.TipoServicio,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}
	if query.Estado != "" {
		estado, ok := entity.ParseEstado(query.Estado)
		if !ok {
			return nil, apperror.Validation(fmt.Sprintf("Estado inválido: %s", query.Estado))
		}
		filter.Estado = estado
	}

	solicitudes, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("Error al obtener solicitudes", err)
	}
	return dto.NewSolicitudResponses(solicitudes), nil
}

func (s *solicitudService) ListPending(ctx context.Context) ([]dto.SolicitudResponse, error) {
	solicitudes, err := s.repo.FindAll(ctx, repository.Filter{Estado: entity.EstadoPendiente})
	if err != nil {
		return nil, apperror.Internal("Error al obtener solicitudes pendientes", err)
	}
	return dto.NewSolicitudResponses(solicitudes), nil
}

func (s *solicitudService) GetByID(ctx context.Context, id string) (*dto.SolicitudResponse, error) {
	solicitud, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewSolicitudResponse(solicitud)
	return &resp, nil
}

func (s *solicitudService) Update(ctx context.Context, id string, req dto.UpdateSolicitudRequest) (*dto.SolicitudResponse, error) {
	if req.IsEmpty() {
		return nil, apperror.BadRequest("No hay datos para actualizar")
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := updateFields(req)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = s.now().UTC()

	if err := s.repo.Updates(ctx, existing.ID, fields); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("No se pudo actualizar la solicitud", err)
	}

	updated, err := s.repo.FindByID(ctx, existing.ID)
	if err != nil {
		return nil, apperror.Internal("No se pudo leer la solicitud actualizada", err)
	}

	s.log.Info().
		Str("id", existing.ID.String()).
		Str("estado", string(updated.EstadoActual())).
		Msg("solicitud updated")

	resp := dto.NewSolicitudResponse(updated)
	return &resp, nil
}

// Delete cancels the request. The row is kept; its comments get the
// cancellation note and its status becomes cancelled.
func (s *solicitudService) Delete(ctx context.Context, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"comentarios": entity.WithCancellationNote(existing.Comentarios),
		"estado":      string(entity.EstadoCancelada),
		"updated_at":  s.now().UTC(),
	}
	if err := s.repo.Updates(ctx, existing.ID, fields); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return err
		}
		return apperror.Internal("No se pudo cancelar la solicitud", err)
	}

	s.log.Info().Str("id", existing.ID.String()).Msg("solicitud cancelled")
	return nil
}

func (s *solicitudService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	solicitudes, err := s.repo.FindAll(ctx, repository.Filter{})
	if err != nil {
		return nil, apperror.Internal("Error al obtener estadísticas", err)
	}
	return BuildStats(solicitudes, s.now()), nil
}

// BuildStats counts requests by derived status, by service type and by
// calendar month for the twelve months ending with now.
func BuildStats(solicitudes []*entity.Solicitud, now time.Time) *dto.StatsResponse {
	stats := &dto.StatsResponse{
		Total:           int64(len(solicitudes)),
		PorTipoServicio: make(map[string]int64),
		PorMes:          make(map[string]int64, statsMonths),
	}

	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < statsMonths; i++ {
		stats.PorMes[firstOfMonth.AddDate(0, -i, 0).Format("2006-01")] = 0
	}

	for _, sol := range solicitudes {
		switch sol.EstadoActual() {
		case entity.EstadoPendiente:
			stats.Pendientes++
		case entity.EstadoConfirmada:
			stats.Confirmadas++
		case entity.EstadoEnProgreso:
			stats.EnProgreso++
		case entity.EstadoCompletada:
			stats.Completadas++
		case entity.EstadoCancelada:
			stats.Canceladas++
		}

		tipo := sol.TipoServicio
		if tipo == "" {
			tipo = "otros"
		}
		stats.PorTipoServicio[tipo]++

		key := sol.CreatedAt.UTC().Format("2006-01")
		if _, ok := stats.PorMes[key]; ok {
			stats.PorMes[key]++
		}
	}

	return stats
}

func (s *solicitudService) find(ctx context.Context, id string) (*entity.Solicitud, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("Solicitud no encontrada")
	}

	solicitud, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("Error al obtener solicitud", err)
	}
	return solicitud, nil
}

func parseSchedule(fecha, hora *string) (*time.Time, *string, error) {
	var (
		date  *time.Time
		clock *string
		err   error
	)
	if fecha != nil {
		if date, err = validator.ParseDate(*fecha); err != nil {
			return nil, nil, err
		}
	}
	if hora != nil {
		if clock, err = validator.ParseClock(*hora); err != nil {
			return nil, nil, err
		}
	}
	return date, clock, nil
}

// updateFields maps the present fields of req to column values.
func updateFields(req dto.UpdateSolicitudRequest) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if req.Nombre != nil {
		fields["nombre"] = validator.SanitizeText(*req.Nombre)
	}
	if req.Telefono != nil {
		fields["telefono"] = *req.Telefono
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Direccion != nil {
		fields["direccion"] = validator.SanitizeText(*req.Direccion)
	}
	if req.TipoServicio != nil {
		fields["tipo_servicio"] = *req.TipoServicio
	}
	if req.Comentarios != nil {
		fields["comentarios"] = validator.SanitizeOptional(req.Comentarios)
	}
	if req.ComentariosAdmin != nil {
		fields["comentarios_admin"] = validator.SanitizeOptional(req.ComentariosAdmin)
	}
	if req.Estado != nil {
		estado, ok := entity.ParseEstado(*req.Estado)
		if !ok {
			return nil, apperror.Validation(fmt.Sprintf("Estado inválido: %s", *req.Estado))
		}
		fields["estado"] = string(estado)
	}
	if req.FechaSugerida != nil {
		fecha, err := validator.ParseDate(*req.FechaSugerida)
		if err != nil {
			return nil, err
		}
		fields["fecha_sugerida"] = fecha
	}
	if req.HoraSugerida != nil {
		hora, err := validator.ParseClock(*req.HoraSugerida)
		if err != nil {
			return nil, err
		}
		fields["hora_sugerida"] = hora
	}

	return fields, nil
}
