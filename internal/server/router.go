package server

import (
	"net/http"

	"tzu-threatmodel/internal/config"
	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/handlers"
	"tzu-threatmodel/internal/middleware"
	"tzu-threatmodel/internal/workspace"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionName = "tzu_session"

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.WorkspaceTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.InjectWorkspace())

	// ИНФОРМАЦИОННЫЕ СИСТЕМЫ
	r.GET("/information_systems", handlers.ListSystems)
	r.POST("/information_systems", handlers.CreateSystem)
	r.GET("/information_systems/:id", handlers.GetSystem)

	// УГРОЗЫ
	r.GET("/information_systems/:id/threats", handlers.ListThreats)
	r.POST("/information_systems/:id/threats", handlers.CreateThreat)
	r.PUT("/information_systems/:id/threats/risk/batch", handlers.BatchUpdateRisk)

	r.GET("/threat/:id", handlers.GetThreat)
	r.DELETE("/threat/:id", handlers.DeleteThreat)
	r.PUT("/threat/:id/risk", handlers.UpdateThreatRisk)
	r.PUT("/threat/:id/residual-risk", handlers.UpdateResidualRisk)

	// ОТЧЁТ И АУДИТ
	r.GET("/report", handlers.Report)
	r.GET("/audit", handlers.ListAuditLogs)

	// РАБОЧИЕ СЕССИИ
	ws := handlers.NewWorkspaceHandler(
		workspace.NewCache(cfg.WorkspaceCacheSize, cfg.WorkspaceTTL),
		database.NewThreatRepository(database.DB),
	)
	sys := r.Group("/workspace/systems/:id")
	sys.GET("", ws.Get)
	sys.DELETE("", ws.Discard)
	sys.POST("/save", ws.Save)
	sys.POST("/threats", ws.AddThreat)
	sys.DELETE("/threats/:tid", ws.DeleteThreat)
	sys.PUT("/threats/:tid/factors", ws.SetFactors)
	sys.PUT("/threats/:tid/residual-risk", ws.SetResidualRisk)
	sys.PUT("/threats/:tid/remediation", ws.SetRemediation)
	sys.PUT("/threats/:tid/details", ws.SetDetails)

	// МЕТРИКИ / HEALTHCHECK
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
