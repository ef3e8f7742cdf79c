package handlers

import (
	"net/http"
	"strings"

	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/dto"
	"tzu-threatmodel/internal/risk"

	"github.com/gin-gonic/gin"
)

// severityQuery читает уровень LOW/MEDIUM/HIGH; пустой: без фильтра.
func severityQuery(c *gin.Context, key string) (risk.Severity, bool) {
	raw := c.Query(key)
	if raw == "" {
		return "", true
	}
	s, ok := risk.ParseSeverity(raw)
	if !ok {
		badRequest(c, key+" must be one of LOW, MEDIUM, HIGH")
		return "", false
	}
	return s, true
}

// standardsQuery: "ASVS, masvs" -> [ASVS MASVS].
func standardsQuery(c *gin.Context) []string {
	var out []string
	for _, s := range strings.Split(c.Query("standards"), ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Report: угрозы всех систем с фильтрами по уровню собственного и текущего риска.
func Report(c *gin.Context) {
	skip, limit, ok := pagingWith(c, reportDefaultLimit, reportMaxLimit)
	if !ok {
		return
	}
	inherent, ok := severityQuery(c, "inherent_risk")
	if !ok {
		return
	}
	current, ok := severityQuery(c, "current_risk")
	if !ok {
		return
	}

	threats, err := repo().Report(c.Request.Context(), database.ReportFilter{
		SystemID:     c.Query("system_id"),
		InherentRisk: inherent,
		CurrentRisk:  current,
		Standards:    standardsQuery(c),
		Skip:         skip,
		Limit:        limit,
	})
	if err != nil {
		fail(c, err)
		return
	}

	rows := make([]dto.ReportRow, 0, len(threats))
	for i := range threats {
		rows = append(rows, database.ReportRowDTO(&threats[i]))
	}
	c.JSON(http.StatusOK, rows)
}
