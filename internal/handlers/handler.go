package handlers

import (
	_ "datadog_lighthouse/docs"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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

// InitRoutes builds the API router: health, metrics, state, logs and the frame stream.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.registerAPIRoutes(router)

	// LED frame stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

// InitPortalRoutes builds the provisioning portal router. Submissions are
// limited to rps per client address with the given burst.
func (h *Handler) InitPortalRoutes(rps float64, burst int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", h.provisionForm)
	router.POST("/provision", h.rateLimit(rps, burst), h.provision)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/state", h.getState)
		api.GET("/frame", h.getFrame)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	// served with and without the trailing slash
	api.GET("/logs", h.getLogs)
	api.GET("/logs/", h.getLogs)
}
