package database

import (
	"log/slog"

	"tzu-threatmodel/internal/models"
)

// helper для записи в журнал аудита
func CreateAuditLog(actor, entity, entityID, action, details string) {
	if DB == nil {
		return
	}
	record := models.AuditLog{
		Actor:    actor,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if err := DB.Create(&record).Error; err != nil {
		slog.Warn("failed to write audit log", "entity", entity, "entity_id", entityID, "err", err)
	}
}
