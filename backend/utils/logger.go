package utils

import (
	"go.uber.org/zap"

	"github.com/shiv90154/Lms-sub002/backend/config"
)

func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
