package handlers

import (
	"net/http"
	"strconv"

	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/middleware"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 100
	maxLimit     = 1000

	reportDefaultLimit = 1000
	reportMaxLimit     = 5000
)

func repo() *database.ThreatRepository {
	return database.NewThreatRepository(database.DB)
}

// paging читает skip/limit; некорректные значения: 400.
func paging(c *gin.Context) (skip, limit int, ok bool) {
	return pagingWith(c, defaultLimit, maxLimit)
}

func pagingWith(c *gin.Context, defLimit, maxLim int) (skip, limit int, ok bool) {
	skip, limit = 0, defLimit
	if raw := c.Query("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "skip must be a non-negative integer")
			return 0, 0, false
		}
		skip = n
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxLim)
	}
	return skip, limit, true
}

// ====== ИНФОРМАЦИОННЫЕ СИСТЕМЫ ======

func ListSystems(c *gin.Context) {
	skip, limit, ok := paging(c)
	if !ok {
		return
	}

	systems, err := repo().ListSystems(c.Request.Context(), skip, limit)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]dto.InformationSystem, 0, len(systems))
	for i := range systems {
		out = append(out, database.SystemDTO(&systems[i]))
	}
	c.JSON(http.StatusOK, out)
}

func CreateSystem(c *gin.Context) {
	var req dto.CreateInformationSystemRequest
	if !bindValid(c, &req) {
		return
	}

	sys, err := repo().CreateSystem(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(middleware.WorkspaceID(c), "information_system", sys.ID.String(), "create", sys.Title)
	c.JSON(http.StatusCreated, database.SystemDTO(sys))
}

func GetSystem(c *gin.Context) {
	sys, err := repo().GetSystem(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, database.SystemDTO(sys))
}
