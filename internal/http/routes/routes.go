package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/http/handlers"
	"github.com/tryonme/outfit-server/internal/http/middleware"
)

type Router struct {
	outfitHandler     *handlers.OutfitHandler
	generationHandler *handlers.GenerationHandler
	statsHandler      *handlers.StatsHandler
	auth              middleware.AuthProvider
	logger            *zap.Logger
}

func NewRouter(
	outfitHandler *handlers.OutfitHandler,
	generationHandler *handlers.GenerationHandler,
	statsHandler *handlers.StatsHandler,
	auth middleware.AuthProvider,
	logger *zap.Logger,
) *Router {
	return &Router{
		outfitHandler:     outfitHandler,
		generationHandler: generationHandler,
		statsHandler:      statsHandler,
		auth:              auth,
		logger:            logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	api := router.Group("/api")
	{
		api.POST("/generate-outfit", middleware.OptionalAuth(r.auth), r.outfitHandler.GenerateOutfit)
		api.GET("/health", r.outfitHandler.HealthCheck)

		api.GET("/stats", r.statsHandler.GetStats)
		api.POST("/stats", r.statsHandler.RecordEvent)
		api.DELETE("/stats", r.statsHandler.ResetStats)

		generations := api.Group("/generations", middleware.RequireAuth(r.auth))
		{
			generations.GET("", r.generationHandler.List)
			generations.POST("", r.generationHandler.Save)
			generations.PUT("/:id", r.generationHandler.Update)
			generations.DELETE("/:id", r.generationHandler.Delete)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Outfit generation service is running",
		})
	})

	return router
}
