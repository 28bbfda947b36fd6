package repository

import (
	"context"
	"errors"

	"github.com/Angel-Eco/CuidadoPRO/internal/entity"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows a listing. A zero Limit means no limit.
type Filter struct {
	TipoServicio string
	Estado       entity.Estado
	Limit        int
	Offset       int
}

type SolicitudRepository interface {
	Create(ctx context.Context, solicitud *entity.Solicitud) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Solicitud, error)
	FindAll(ctx context.Context, filter Filter) ([]*entity.Solicitud, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type solicitudRepository struct {
	db *gorm.DB
}

func NewSolicitudRepository(db *gorm.DB) SolicitudRepository {
	return &solicitudRepository{db: db}
}

func (r *solicitudRepository) Create(ctx context.Context, solicitud *entity.Solicitud) error {
	return r.db.WithContext(ctx).Create(solicitud).Error
}

func (r *solicitudRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Solicitud, error) {
	var solicitud entity.Solicitud
	if err := r.db.WithContext(ctx).First(&solicitud, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Solicitud no encontrada")
		}
		return nil, err
	}
	return &solicitud, nil
}

func (r *solicitudRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Solicitud, error) {
	var solicitudes []*entity.Solicitud
	query := r.db.WithContext(ctx).Model(&entity.Solicitud{})

	if filter.TipoServicio != "" {
		query = query.Where("tipo_servicio = ?", filter.TipoServicio)
	}
	if filter.Estado != "" {
		query = whereEstado(query, filter.Estado)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("fecha DESC").Find(&solicitudes).Error; err != nil {
		return nil, err
	}
	return solicitudes, nil
}

func (r *solicitudRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&entity.Solicitud{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Solicitud no encontrada")
	}
	return nil
}

const (
	storedEstado   = "LOWER(TRIM(COALESCE(estado, '')))"
	markedCanceled = "COALESCE(comentarios, '') LIKE ?"
)

// whereEstado mirrors entity.DeriveEstado in SQL so that filtering and
// pagination happen in the database.
func whereEstado(query *gorm.DB, estado entity.Estado) *gorm.DB {
	marker := "%" + entity.CancellationMarker + "%"

	switch estado {
	case entity.EstadoPendiente:
		return query.Where(
			"("+storedEstado+" = '' AND "+markedCanceled+") IS FALSE AND ("+storedEstado+" = '' OR "+storedEstado+" NOT IN ?)",
			marker, knownStoredValues(entity.EstadoPendiente),
		)
	case entity.EstadoCancelada:
		return query.Where(
			storedEstado+" IN ? OR ("+storedEstado+" = '' AND "+markedCanceled+")",
			estado.StoredValues(), marker,
		)
	default:
		return query.Where(storedEstado+" IN ?", estado.StoredValues())
	}
}

// knownStoredValues lists every recognized stored value except those of skip.
func knownStoredValues(skip entity.Estado) []string {
	var values []string
	for _, e := range entity.Estados {
		if e == skip {
			continue
		}
		values = append(values, e.StoredValues()...)
	}
	return values
}
