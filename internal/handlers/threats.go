package handlers

import (
	"fmt"
	"net/http"

	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/metrics"
	"tzu-threatmodel/internal/middleware"

	"github.com/gin-gonic/gin"
)

// ====== УГРОЗЫ СИСТЕМЫ ======

func ListThreats(c *gin.Context) {
	threats, err := repo().ListThreats(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, database.ThreatDTOs(threats))
}

func CreateThreat(c *gin.Context) {
	var req dto.CreateThreatRequest
	if !bindValid(c, &req) {
		return
	}

	th, err := repo().CreateThreat(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(middleware.WorkspaceID(c), "threat", th.ID.String(), "create",
		fmt.Sprintf("%s (%s) in system %s", th.Title, th.Type, th.InformationSystemID))
	c.JSON(http.StatusCreated, database.ThreatDTO(th))
}

// ====== ОДНА УГРОЗА ======

func GetThreat(c *gin.Context) {
	th, err := repo().GetThreat(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, database.ThreatDTO(th))
}

func DeleteThreat(c *gin.Context) {
	id := c.Param("id")
	if err := repo().DeleteThreat(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(middleware.WorkspaceID(c), "threat", id, "delete", "")
	c.Status(http.StatusNoContent)
}

// UpdateThreatRisk: частичное обновление: описание, мера, факторы, остаточный риск.
func UpdateThreatRisk(c *gin.Context) {
	raw, ok := bindObject(c)
	if !ok {
		return
	}
	patch, err := dto.ParsePatch(raw)
	if err != nil {
		fail(c, err)
		return
	}

	th, err := repo().PatchThreat(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, database.ThreatDTO(th))
}

func UpdateResidualRisk(c *gin.Context) {
	var req dto.ResidualRiskRequest
	if !bindValid(c, &req) {
		return
	}

	th, err := repo().SetResidualRisk(c.Request.Context(), c.Param("id"), *req.ResidualRisk)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, database.ThreatDTO(th))
}

// BatchUpdateRisk применяет список обновлений одной транзакцией.
func BatchUpdateRisk(c *gin.Context) {
	var raw []map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		badRequest(c, "request body must be a JSON array of objects")
		return
	}

	items := make([]database.BatchItem, 0, len(raw))
	for _, obj := range raw {
		id, patch, err := dto.ParseBatchItem(obj)
		if err != nil {
			fail(c, err)
			return
		}
		items = append(items, database.BatchItem{ThreatID: id, Patch: patch})
	}

	systemID := c.Param("id")
	updated, err := repo().ApplyBatch(c.Request.Context(), systemID, items)
	metrics.ObserveBatchUpdate(err)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(middleware.WorkspaceID(c), "information_system", systemID, "batch_update",
		fmt.Sprintf("%d of %d threats updated", len(updated), len(items)))
	c.JSON(http.StatusOK, database.ThreatDTOs(updated))
}
