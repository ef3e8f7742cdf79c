package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Actor string `gorm:"size:64" json:"actor"` // id рабочей сессии редактора

	Entity   string `gorm:"size:50;not null" json:"entity"` // "information_system", "threat"
	EntityID string `gorm:"size:64;index" json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "delete", "batch_update" и т.п.
	Details  string `gorm:"type:text" json:"details"`
}
