package router

import (
	"time"

	"github.com/fridgechef/fridgechef-api/internal/ai"
	"github.com/fridgechef/fridgechef-api/internal/config"
	"github.com/fridgechef/fridgechef-api/internal/handlers"
	"github.com/fridgechef/fridgechef-api/internal/logger"
	"github.com/fridgechef/fridgechef-api/internal/middleware"
	"github.com/fridgechef/fridgechef-api/internal/scrape"
	"github.com/fridgechef/fridgechef-api/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router. The credential pool and providers
// are constructed here and injected down; nothing below holds ambient
// global state.
func SetupRouter(cfg *config.Config, keyPool *ai.KeyPool) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	// Request ID middleware for log correlation
	r.Use(logger.RequestIDMiddleware())

	// Per-IP rate limiting; each request fans out to paid upstream calls
	r.Use(middleware.RateLimitByIP(10, 5*time.Minute, 10*time.Minute))

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Provider setup
	textProvider := ai.NewGeminiProvider(keyPool)
	searchProvider := ai.NewGoogleSearchProvider(cfg.EnvVars.GoogleSearchKey, cfg.EnvVars.GoogleSearchCX)
	fetcher := scrape.NewPageFetcher(cfg.EnvVars.FetchTimeout)

	// Search pipeline routes
	searchService := service.NewSearchService(cfg, textProvider, searchProvider, fetcher)
	searchHandler := handlers.NewSearchHandler(searchService)
	r.POST("/search", searchHandler.SearchRecipes)

	// Recommendation routes
	recommendService := service.NewRecommendService(cfg, textProvider)
	recommendHandler := handlers.NewRecommendHandler(recommendService)
	r.POST("/recommend", recommendHandler.RecommendDishes)

	return r
}
