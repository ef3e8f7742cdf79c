package handlers

import (
	"net/http"

	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/models"

	"github.com/gin-gonic/gin"
)

const auditLimit = 200

func ListAuditLogs(c *gin.Context) {
	q := database.DB.WithContext(c.Request.Context()).
		Order("created_at desc").
		Limit(auditLimit)

	// фильтры необязательные
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if id := c.Query("entity_id"); id != "" {
		q = q.Where("entity_id = ?", id)
	}

	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
