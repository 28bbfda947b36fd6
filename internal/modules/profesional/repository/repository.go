package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows a listing. Nil Activo means any; zero Limit means no limit.
type Filter struct {
	Activo       *bool
	Especialidad string
	Limit        int
	Offset       int
}

type ProfesionalRepository interface {
	Create(ctx context.Context, p *entity.Profesional) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profesional, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Profesional, error)
	FindAll(ctx context.Context, filter Filter) ([]*entity.Profesional, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Profesional, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type profesionalRepository struct {
	db *gorm.DB
}

func NewProfesionalRepository(db *gorm.DB) ProfesionalRepository {
	return &profesionalRepository{db: db}
}

func (r *profesionalRepository) Create(ctx context.Context, p *entity.Profesional) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profesionalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profesional, error) {
	var p entity.Profesional
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Profesional no encontrado")
		}
		return nil, err
	}
	return &p, nil
}

func (r *profesionalRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Profesional, error) {
	var items []*entity.Profesional
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *profesionalRepository) applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.Activo != nil {
		query = query.Where("activo = ?", *filter.Activo)
	}
	if filter.Especialidad != "" {
		query = query.Where("especialidad = ?", filter.Especialidad)
	}
	return query
}

func (r *profesionalRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Profesional, error) {
	var items []*entity.Profesional
	query := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Profesional{}), filter)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("orden ASC").Order("nombre ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *profesionalRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&entity.Profesional{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Search matches active professionals by name, specialty or description.
func (r *profesionalRepository) Search(ctx context.Context, q string, limit int) ([]*entity.Profesional, error) {
	var items []*entity.Profesional
	pattern := containsPattern(q)

	err := r.db.WithContext(ctx).
		Where("activo = ?", true).
		Where(`nombre ILIKE ? ESCAPE '\' OR especialidad ILIKE ? ESCAPE '\' OR descripcion ILIKE ? ESCAPE '\'`, pattern, pattern, pattern).
		Order("orden ASC").
		Order("nombre ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *profesionalRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Profesional{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Profesional no encontrado")
	}
	return nil
}

func (r *profesionalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Profesional{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Profesional no encontrado")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching q literally anywhere.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
