package main

import (
	"fmt"
	"log/slog"
	"os"

	"tzu-threatmodel/internal/config"
	"tzu-threatmodel/internal/database"
	"tzu-threatmodel/internal/logging"
	"tzu-threatmodel/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if _, err := database.Init(cfg.DBDSN); err != nil {
		slog.Error("database init failed", "err", err)
		os.Exit(1)
	}

	r := server.NewRouter(cfg)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	slog.Info("starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
