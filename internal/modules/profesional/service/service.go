package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/dto"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/repository"
	search "github.com/Angel-Eco/CuidadoPRO/internal/modules/search/service"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/Angel-Eco/CuidadoPRO/pkg/storage"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultSearchLimit = 20

type ProfesionalService interface {
	ListActivos(ctx context.Context) ([]dto.ProfesionalResponse, error)
	Search(ctx context.Context, query dto.SearchProfesionalQuery) ([]dto.ProfesionalResponse, error)
	// List returns the roster. Without includeInactive only active
	// professionals are listed, whatever the filter says.
	List(ctx context.Context, query dto.ListProfesionalQuery, includeInactive bool) (*dto.ProfesionalListResponse, error)
	GetByID(ctx context.Context, id string, includeInactive bool) (*dto.ProfesionalResponse, error)
	Create(ctx context.Context, req dto.CreateProfesionalRequest) (*dto.ProfesionalResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateProfesionalRequest) (*dto.ProfesionalResponse, error)
	Delete(ctx context.Context, id string) error
	// Reindex writes every professional to the search index and returns how
	// many were indexed. It fails with an Unavailable error when no search
	// engine is configured.
	Reindex(ctx context.Context) (int, error)
}

type profesionalService struct {
	repo    repository.ProfesionalRepository
	storage storage.ImageStorage
	index   search.ProfesionalIndex
	cache   ActivosCache
	log     zerolog.Logger
	now     func() time.Time
}

func NewProfesionalService(
	repo repository.ProfesionalRepository,
	fileStorage storage.ImageStorage,
	index search.ProfesionalIndex,
	cache ActivosCache,
	log zerolog.Logger,
) ProfesionalService {
	return &profesionalService{
		repo:    repo,
		storage: fileStorage,
		index:   index,
		cache:   cache,
		log:     log.With().Str("module", "profesional").Logger(),
		now:     time.Now,
	}
}

func (s *profesionalService) ListActivos(ctx context.Context) ([]dto.ProfesionalResponse, error) {
	if cached, ok, err := s.cache.Get(ctx); err != nil {
		s.log.Warn().Err(err).Msg("activos cache read failed")
	} else if ok {
		return cached, nil
	}

	activo := true
	items, err := s.repo.FindAll(ctx, repository.Filter{Activo: &activo})
	if err != nil {
		return nil, apperror.Internal("Error al obtener profesionales", err)
	}

	resp := dto.NewProfesionalResponses(items)
	if err := s.cache.Set(ctx, resp); err != nil {
		s.log.Warn().Err(err).Msg("activos cache write failed")
	}
	return resp, nil
}

func (s *profesionalService) Search(ctx context.Context, query dto.SearchProfesionalQuery) ([]dto.ProfesionalResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	ids, err := s.index.SearchProfesionales(ctx, query.Q, limit)
	if err != nil {
		if !errors.Is(err, search.ErrUnavailable) {
			s.log.Warn().Err(err).Msg("search engine failed, falling back to database")
		}
		items, err := s.repo.Search(ctx, query.Q, limit)
		if err != nil {
			return nil, apperror.Internal("Error al buscar profesionales", err)
		}
		return dto.NewProfesionalResponses(items), nil
	}

	uids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if uid, err := uuid.Parse(id); err == nil {
			uids = append(uids, uid)
		}
	}
	items, err := s.repo.FindByIDs(ctx, uids)
	if err != nil {
		return nil, apperror.Internal("Error al buscar profesionales", err)
	}

	// Keep the engine's ranking and drop rows deactivated since indexing.
	byID := make(map[uuid.UUID]*entity.Profesional, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	ranked := make([]*entity.Profesional, 0, len(items))
	for _, uid := range uids {
		if p, ok := byID[uid]; ok && p.Activo {
			ranked = append(ranked, p)
		}
	}
	return dto.NewProfesionalResponses(ranked), nil
}

func (s *profesionalService) List(ctx context.Context, query dto.ListProfesionalQuery, includeInactive bool) (*dto.ProfesionalListResponse, error) {
	query.Normalize()

	filter := repository.Filter{
		Activo:       query.Activo,
		Especialidad: query.Especialidad,
	}
	if !includeInactive {
		activo := true
		filter.Activo = &activo
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("Error al obtener profesionales", err)
	}

	filter.Limit = query.Limit
	filter.Offset = query.Offset
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("Error al obtener profesionales", err)
	}

	return &dto.ProfesionalListResponse{
		Profesionales: dto.NewProfesionalResponses(items),
		Total:         total,
	}, nil
}

func (s *profesionalService) GetByID(ctx context.Context, id string, includeInactive bool) (*dto.ProfesionalResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Activo && !includeInactive {
		return nil, apperror.NotFound("Profesional no encontrado")
	}

	resp := dto.NewProfesionalResponse(p)
	return &resp, nil
}

func (s *profesionalService) Create(ctx context.Context, req dto.CreateProfesionalRequest) (*dto.ProfesionalResponse, error) {
	p := &entity.Profesional{
		Nombre:       validator.SanitizeText(req.Nombre),
		Especialidad: validator.SanitizeText(req.Especialidad),
		Experiencia:  *req.Experiencia,
		Descripcion:  validator.SanitizeText(req.Descripcion),
		Telefono:     req.Telefono,
		Email:        req.Email,
		Activo:       true,
		Orden:        0,
		ImagenURL:    req.ImagenURL,
		CreatedAt:    s.now().UTC(),
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if req.Orden != nil {
		p.Orden = *req.Orden
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal("No se pudo crear el profesional", err)
	}

	s.afterWrite(ctx, p)
	s.log.Info().Str("id", p.ID.String()).Msg("profesional created")

	resp := dto.NewProfesionalResponse(p)
	return &resp, nil
}

func (s *profesionalService) Update(ctx context.Context, id string, req dto.UpdateProfesionalRequest) (*dto.ProfesionalResponse, error) {
	if req.IsEmpty() {
		return nil, apperror.BadRequest("No hay datos para actualizar")
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := updateFields(req)
	fields["updated_at"] = s.now().UTC()

	if err := s.repo.Updates(ctx, existing.ID, fields); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("Error al actualizar profesional", err)
	}

	updated, err := s.repo.FindByID(ctx, existing.ID)
	if err != nil {
		return nil, apperror.Internal("Error al actualizar profesional", err)
	}

	s.afterWrite(ctx, updated)
	s.log.Info().Str("id", updated.ID.String()).Msg("profesional updated")

	resp := dto.NewProfesionalResponse(updated)
	return &resp, nil
}

// Delete removes the record and then its photo. A photo that cannot be
// removed is logged and left behind.
func (s *profesionalService) Delete(ctx context.Context, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, existing.ID); err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return err
		}
		return apperror.Internal("Error al eliminar profesional", err)
	}

	s.deletePhoto(ctx, existing)

	if err := s.index.DeleteProfesional(ctx, existing.ID.String()); err != nil && !errors.Is(err, search.ErrUnavailable) {
		s.log.Warn().Err(err).Str("id", existing.ID.String()).Msg("failed to remove profesional from index")
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("activos cache invalidation failed")
	}

	s.log.Info().Str("id", existing.ID.String()).Msg("profesional deleted")
	return nil
}

func (s *profesionalService) Reindex(ctx context.Context) (int, error) {
	if !search.Enabled(s.index) {
		return 0, apperror.Unavailable("Motor de búsqueda no configurado", search.ErrUnavailable)
	}

	items, err := s.repo.FindAll(ctx, repository.Filter{})
	if err != nil {
		return 0, fmt.Errorf("load profesionales: %w", err)
	}

	indexed, failed := 0, 0
	for _, p := range items {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.index.IndexProfesional(ctx, p); err != nil {
			if errors.Is(err, search.ErrUnavailable) {
				return 0, apperror.Unavailable("Motor de búsqueda no configurado", err)
			}
			failed++
			s.log.Warn().Err(err).Str("id", p.ID.String()).Msg("failed to index profesional")
			continue
		}
		indexed++
	}

	s.log.Info().Int("indexed", indexed).Int("failed", failed).Msg("profesionales reindexed")
	if failed > 0 {
		return indexed, fmt.Errorf("%d of %d profesionales could not be indexed", failed, len(items))
	}
	return indexed, nil
}

func (s *profesionalService) deletePhoto(ctx context.Context, p *entity.Profesional) {
	if p.ImagenURL == nil || *p.ImagenURL == "" {
		return
	}

	filename, ok := storage.FilenameFromURL(s.storage.Bucket(), *p.ImagenURL)
	if !ok {
		s.log.Warn().Str("url", *p.ImagenURL).Msg("photo url does not belong to the upload bucket, skipping")
		return
	}

	if err := s.storage.Delete(ctx, filename); err != nil {
		s.log.Error().Err(err).Str("filename", filename).Msg("failed to delete profesional photo")
		return
	}
	s.log.Info().Str("filename", filename).Msg("profesional photo deleted")
}

func (s *profesionalService) afterWrite(ctx context.Context, p *entity.Profesional) {
	if err := s.index.IndexProfesional(ctx, p); err != nil && !errors.Is(err, search.ErrUnavailable) {
		s.log.Warn().Err(err).Str("id", p.ID.String()).Msg("failed to index profesional")
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("activos cache invalidation failed")
	}
}

func (s *profesionalService) find(ctx context.Context, id string) (*entity.Profesional, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.NotFound("Profesional no encontrado")
	}

	p, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("Error al obtener profesional", err)
	}
	return p, nil
}

func updateFields(req dto.UpdateProfesionalRequest) map[string]interface{} {
	fields := make(map[string]interface{})

	if req.Nombre != nil {
		fields["nombre"] = validator.SanitizeText(*req.Nombre)
	}
	if req.Especialidad != nil {
		fields["especialidad"] = validator.SanitizeText(*req.Especialidad)
	}
	if req.Experiencia != nil {
		fields["experiencia"] = *req.Experiencia
	}
	if req.Descripcion != nil {
		fields["descripcion"] = validator.SanitizeText(*req.Descripcion)
	}
	if req.Telefono != nil {
		fields["telefono"] = *req.Telefono
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Activo != nil {
		fields["activo"] = *req.Activo
	}
	if req.Orden != nil {
		fields["orden"] = *req.Orden
	}
	if req.ImagenURL != nil {
		fields["imagen_url"] = *req.ImagenURL
	}

	return fields
}
