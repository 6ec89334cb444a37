package main

import (
	"github.com/ballsdex/merchant-service/internal/config"
	"github.com/ballsdex/merchant-service/internal/logger"
)

// initLogger initializes the logger using centralized app configuration
func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "merchant-service",
	})
}
