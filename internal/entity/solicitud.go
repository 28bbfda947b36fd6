package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CancellationMarker flags a soft-deleted request inside its comments. Rows
// written before the estado column existed rely on it alone.
const CancellationMarker = "[CANCELADA]"

// CancellationNote is prepended to comments on soft delete.
const CancellationNote = CancellationMarker + " Solicitud cancelada por el administrador"

type Estado string

const (
	EstadoPendiente  Estado = "pendiente"
	EstadoConfirmada Estado = "confirmada"
	EstadoEnProgreso Estado = "en_progreso"
	EstadoCompletada Estado = "completada"
	EstadoCancelada  Estado = "cancelada"
)

// Estados lists every status in lifecycle order.
var Estados = []Estado{
	EstadoPendiente,
	EstadoConfirmada,
	EstadoEnProgreso,
	EstadoCompletada,
	EstadoCancelada,
}

// legacyEstados maps spellings found in older rows.
var legacyEstados = map[string]Estado{
	"en_proceso": EstadoEnProgreso,
}

// ParseEstado reports whether s names a known status.
func ParseEstado(s string) (Estado, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range Estados {
		if string(e) == s {
			return e, true
		}
	}
	if e, ok := legacyEstados[s]; ok {
		return e, true
	}
	return "", false
}

// DeriveEstado computes the lifecycle state of a stored request. A known stored
// status wins; an unknown non-empty one is treated as pending; an empty one
// falls back to the cancellation marker in the comments.
func DeriveEstado(stored, comentarios *string) Estado {
	if stored != nil && strings.TrimSpace(*stored) != "" {
		if e, ok := ParseEstado(*stored); ok {
			return e
		}
		return EstadoPendiente
	}

	if comentarios != nil && strings.Contains(*comentarios, CancellationMarker) {
		return EstadoCancelada
	}
	return EstadoPendiente
}

// StoredValues returns the raw column values that denote e, legacy spellings
// included.
func (e Estado) StoredValues() []string {
	values := []string{string(e)}
	for legacy, target := range legacyEstados {
		if target == e {
			values = append(values, legacy)
		}
	}
	return values
}

// Solicitud is a service request submitted from the public site.
type Solicitud struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre           string     `gorm:"size:100;not null" json:"nombre"`
	Telefono         string     `gorm:"size:20;not null" json:"telefono"`
	Email            string     `gorm:"size:100;not null" json:"email"`
	Direccion        string     `gorm:"size:200;not null" json:"direccion"`
	TipoServicio     string     `gorm:"size:100;not null;index" json:"tipo_servicio"`
	Comentarios      *string    `gorm:"type:text" json:"comentarios"`
	ComentariosAdmin *string    `gorm:"type:text" json:"comentarios_admin"`
	Estado           *string    `gorm:"size:20;index" json:"estado"`
	FechaSugerida    *time.Time `gorm:"type:date" json:"fecha_sugerida"`
	HoraSugerida     *string    `gorm:"size:5" json:"hora_sugerida"`
	CreatedAt        time.Time  `gorm:"column:fecha;autoCreateTime;index" json:"created_at"`
	UpdatedAt        *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (Solicitud) TableName() string {
	return "solicitudes"
}

func (s *Solicitud) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// EstadoActual is DeriveEstado applied to the row.
func (s *Solicitud) EstadoActual() Estado {
	return DeriveEstado(s.Estado, s.Comentarios)
}

// WithCancellationNote returns comments with the cancellation note prepended.
func WithCancellationNote(comentarios *string) string {
	if comentarios == nil || strings.TrimSpace(*comentarios) == "" {
		return CancellationNote
	}
	return CancellationNote + "\n" + *comentarios
}
