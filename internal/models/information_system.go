package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Информационная система: объект моделирования угроз
type InformationSystem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Diagram     string `gorm:"type:text"` // ссылка на загруженную диаграмму архитектуры

	Threats []Threat
}

func (s *InformationSystem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
