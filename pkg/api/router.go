package api

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"buidl-explorer-go/pkg/api/handlers"
	"buidl-explorer-go/pkg/api/middleware"
	"buidl-explorer-go/pkg/scraper"
	"buidl-explorer-go/pkg/services"
)

func NewRouter(scrapes *services.ScrapeService, store *services.FileStore, logger *log.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS())

	// Health check
	router.GET(scraper.PathHealth, handlers.HealthCheck)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/scrape", handlers.Scrape(scrapes))
		api.GET("/projects", handlers.Projects(store))
		api.GET("/download", handlers.Download(store))
	}

	return router
}
