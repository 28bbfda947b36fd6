package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

const profesionalesIndex = "profesionales"

// ErrUnavailable is returned by every index operation when no search engine
// is configured. Search callers fall back to the database.
var ErrUnavailable = errors.New("search engine unavailable")

// ProfesionalIndex keeps a full text index of professionals.
type ProfesionalIndex interface {
	IndexProfesional(ctx context.Context, p *entity.Profesional) error
	DeleteProfesional(ctx context.Context, id string) error
	// SearchProfesionales returns the ids of active professionals matching q,
	// best match first.
	SearchProfesionales(ctx context.Context, q string, limit int) ([]string, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

// NewMeiliSearchService configures the index settings and returns the index.
// Settings failures are logged; the index stays usable.
func NewMeiliSearchService(client meilisearch.ServiceManager, log zerolog.Logger) ProfesionalIndex {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.With().Str("module", "search").Logger(),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterableAttrs := []string{"activo", "especialidad"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(profesionalesIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		s.log.Warn().Err(err).Msg("failed to update profesionales filterable attributes")
	}

	sortableAttrs := []string{"orden", "nombre"}
	if _, err := s.client.Index(profesionalesIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		s.log.Warn().Err(err).Msg("failed to update profesionales sortable attributes")
	}

	s.log.Info().Msg("meilisearch indexes initialized")
}

type meiliProfesionalDoc struct {
	ID           string `json:"id"`
	Nombre       string `json:"nombre"`
	Especialidad string `json:"especialidad"`
	Descripcion  string `json:"descripcion"`
	Experiencia  int    `json:"experiencia"`
	Activo       bool   `json:"activo"`
	Orden        int    `json:"orden"`
}

func (s *meiliSearchService) cleanContentForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *meiliSearchService) IndexProfesional(_ context.Context, p *entity.Profesional) error {
	doc := meiliProfesionalDoc{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		Especialidad: p.Especialidad,
		Descripcion:  s.cleanContentForIndex(p.Descripcion),
		Experiencia:  p.Experiencia,
		Activo:       p.Activo,
		Orden:        p.Orden,
	}

	task, err := s.client.Index(profesionalesIndex).AddDocuments([]meiliProfesionalDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("index profesional %s: %w", doc.ID, err)
	}
	s.log.Debug().Str("id", doc.ID).Int64("task", task.TaskUID).Msg("profesional indexed")
	return nil
}

func (s *meiliSearchService) DeleteProfesional(_ context.Context, id string) error {
	if _, err := s.client.Index(profesionalesIndex).DeleteDocument(id); err != nil {
		return fmt.Errorf("delete profesional %s from index: %w", id, err)
	}
	return nil
}

func (s *meiliSearchService) SearchProfesionales(_ context.Context, q string, limit int) ([]string, error) {
	resp, err := s.client.Index(profesionalesIndex).Search(q, &meilisearch.SearchRequest{
		Limit:  int64(limit),
		Filter: "activo = true",
	})
	if err != nil {
		return nil, fmt.Errorf("search profesionales: %w", err)
	}

	raw, err := json.Marshal(resp.Hits)
	if err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}
	var docs []meiliProfesionalDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode search hits: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

type noopIndex struct{}

// NewNoopIndex is used when no search host is configured.
func NewNoopIndex() ProfesionalIndex {
	return noopIndex{}
}

// Enabled reports whether index is backed by a search engine.
func Enabled(index ProfesionalIndex) bool {
	_, noop := index.(noopIndex)
	return index != nil && !noop
}

func (noopIndex) IndexProfesional(context.Context, *entity.Profesional) error { return ErrUnavailable }

func (noopIndex) DeleteProfesional(context.Context, string) error { return ErrUnavailable }

func (noopIndex) SearchProfesionales(context.Context, string, int) ([]string, error) {
	return nil, ErrUnavailable
}

func strPtr(s string) *string {
	return &s
}
