package main

import (
	"os"

	"github.com/fridgechef/fridgechef-api/internal/ai"
	"github.com/fridgechef/fridgechef-api/internal/config"
	"github.com/fridgechef/fridgechef-api/internal/logger"
	"github.com/fridgechef/fridgechef-api/internal/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all required ENV variables are set. Upstream API keys
	// are optional: their absence routes requests to the placeholder
	// fallback instead of failing startup.
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts from YAML
	prompts, err := config.LoadPrompts("configs/prompts.yaml")
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	// Load the generative-text key pool once; it is immutable afterwards
	keyPool := ai.LoadKeyPool()
	if keyPool.Size() == 0 {
		logger.Get().Warn("no google API keys configured; serving placeholder results")
	}

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, keyPool)

	// Run the server
	logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
	r.Run(":" + cfg.EnvVars.Port)
}
