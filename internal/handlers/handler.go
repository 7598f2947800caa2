package handlers

import (
	"bedside_terminal/internal/logger"
	"bedside_terminal/internal/presentation"
	"bedside_terminal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *presentation.Hub
	gatherer prometheus.Gatherer
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. hub and
// gatherer may be nil, in which case /ws and /metrics are not registered.
func NewHandler(services *service.Service, hub *presentation.Hub, gatherer prometheus.Gatherer, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{services: services, hub: hub, gatherer: gatherer, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	// Presentation stream for renderers, same port as the API.
	if h.hub != nil {
		router.GET("/ws", h.wsConnect)
	}

	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/session", h.getSession)
		api.GET("/schedules", h.getSchedules)
		h.registerHistoryRoutes(api)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	history := api.Group("/history")
	{
		// Query example: ?from=2025-08-01&to=2025-08-31&medication=Aspirin
		history.GET("", h.getHistory)
		history.DELETE("", h.clearHistory)
	}
}
