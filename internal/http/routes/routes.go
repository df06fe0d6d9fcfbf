package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-converter/internal/config"
	"github.com/phambaophuc/image-converter/internal/http/handlers"
	"github.com/phambaophuc/image-converter/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	config       config.ConversionConfig
	logger       *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	cfg config.ConversionConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		config:       cfg,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = r.config.MaxMemory
	router.SetHTMLTemplate(handlers.UploadFormTemplate)

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	upload := middleware.ValidateContentType(r.config.MaxUploadSize)

	router.GET("/", r.imageHandler.UploadForm)
	router.POST("/", upload, r.imageHandler.ConvertImages)

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		images := v1.Group("/images")
		{
			images.POST("/convert", upload, r.imageHandler.ConvertImages)
		}
	}

	return router
}
