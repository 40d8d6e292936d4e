package app

import (
	"strings"

	"github.com/axleworks/weighbridge-backend/internal/pkg/logger"
	"github.com/axleworks/weighbridge-backend/internal/utils"
)

// Config collects the process-level knobs read from the environment.
// Postgres, Redis and tracing settings are read by their own constructors.
type Config struct {
	Port           string
	JWTSecretKey   string
	AxleLimitsPath string
	AllowOrigins   []string
}

func Load(log *logger.Logger) Config {
	cfg := Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AxleLimitsPath: utils.GetEnv("AXLE_LIMITS_PATH", "", log),
	}
	if origins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	}
	return cfg
}
