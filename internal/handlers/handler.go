package handlers

import (
	"storewatch/internal/logger"
	"storewatch/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Run-status push over WebSocket — same port
	router.GET("/ws/reports/:id", h.wsReportStatus)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.requireAuth)
	{
		h.registerReportRoutes(api)
		h.registerStoreRoutes(api)
	}
}

func (h *Handler) registerReportRoutes(api *gin.RouterGroup) {
	reports := api.Group("/reports")
	{
		reports.POST("/trigger", h.triggerReport)
		reports.GET("/:id", h.getReport)
	}
}

func (h *Handler) registerStoreRoutes(api *gin.RouterGroup) {
	stores := api.Group("/stores")
	{
		stores.GET("/", h.listStores)
	}
}
