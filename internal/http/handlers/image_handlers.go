package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services"
	"go.uber.org/zap"
)

const (
	filesParamKey  = "files"
	formatParamKey = "output_format"
	notConfigured  = "not configured"
)

type StatsProvider interface {
	GetStats(ctx context.Context) (map[string]interface{}, error)
	HealthCheck(ctx context.Context) string
}

type QueueProvider interface {
	GetQueueStats() (map[string]interface{}, error)
	HealthCheck() string
}

type ImageHandler struct {
	converter *services.BatchService
	stats     StatsProvider
	queue     QueueProvider
	logger    *zap.Logger
}

// NewImageHandler wires the handlers. stats and queue may be nil when the
// matching backend is not configured.
func NewImageHandler(
	converter *services.BatchService,
	stats StatsProvider,
	queue QueueProvider,
	logger *zap.Logger,
) *ImageHandler {
	return &ImageHandler{
		converter: converter,
		stats:     stats,
		queue:     queue,
		logger:    logger,
	}
}

// === MAIN API ENDPOINTS ===

func (h *ImageHandler) UploadForm(c *gin.Context) {
	c.HTML(http.StatusOK, uploadFormName, uploadFormData())
}

func (h *ImageHandler) ConvertImages(c *gin.Context) {
	files, err := h.readUploadedFiles(c)
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	batchID := uuid.New().String()
	resp, err := h.converter.Convert(c.Request.Context(), batchID, files, c.PostForm(formatParamKey))
	if err != nil {
		h.respondConversionError(c, batchID, err)
		return
	}

	h.respondWithArchive(c, resp)
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	statuses := map[string]string{
		"redis":    notConfigured,
		"rabbitmq": notConfigured,
	}
	if h.stats != nil {
		statuses["redis"] = h.stats.HealthCheck(ctx)
	}
	if h.queue != nil {
		statuses["rabbitmq"] = h.queue.HealthCheck()
	}

	overall := h.calculateOverallHealth(statuses)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:        overall,
			Timestamp:     time.Now(),
			Services:      statuses,
			Workers:       h.converter.Workers(),
			FailurePolicy: string(h.converter.Policy()),
		},
	})
}

func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now(),
	}

	if h.stats == nil {
		stats["batches"] = notConfigured
	} else if batchStats, err := h.stats.GetStats(c.Request.Context()); err != nil {
		h.logger.Error("Failed to get batch stats", zap.Error(err))
		stats["batches"] = "unavailable"
	} else {
		stats["batches"] = batchStats
	}

	if h.queue == nil {
		stats["queue"] = notConfigured
	} else if queueStats, err := h.queue.GetQueueStats(); err != nil {
		h.logger.Error("Failed to get queue stats", zap.Error(err))
		stats["queue"] = "unavailable"
	} else {
		stats["queue"] = queueStats
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
