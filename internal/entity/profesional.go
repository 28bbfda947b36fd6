package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profesional is a nurse or carer listed on the public site.
type Profesional struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre       string     `gorm:"size:100;not null" json:"nombre"`
	Especialidad string     `gorm:"size:100;not null;index" json:"especialidad"`
	Experiencia  int        `gorm:"not null" json:"experiencia"`
	Descripcion  string     `gorm:"size:500;not null" json:"descripcion"`
	Telefono     *string    `gorm:"size:20" json:"telefono"`
	Email        *string    `gorm:"size:100" json:"email"`
	Activo       bool       `gorm:"not null;index" json:"activo"`
	Orden        int        `gorm:"not null" json:"orden"`
	ImagenURL    *string    `gorm:"type:text" json:"imagen_url"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (Profesional) TableName() string {
	return "profesionales"
}

func (p *Profesional) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
