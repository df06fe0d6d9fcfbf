package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/archive"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/processor"
	"github.com/phambaophuc/image-converter/pkg/utils"
	"go.uber.org/zap"
)

const (
	noValidInputMessage = "Please upload at least one valid image file."

	headerBatchID      = "X-Batch-ID"
	headerSkippedFiles = "X-Skipped-Files"
	headerSkippedCount = "X-Skipped-Count"
)

// === REQUEST PARSING ===

// readUploadedFiles loads every part named "files" into memory. A missing
// field is not an error; validation rejects the empty batch later.
func (h *ImageHandler) readUploadedFiles(c *gin.Context) ([]models.UploadedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse form data: %w", err)
	}

	headers := form.File[filesParamKey]
	files := make([]models.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		// Browsers send an empty part when no file was picked.
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		content, err := readFileHeader(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", fh.Filename, err)
		}
		files = append(files, models.UploadedFile{Name: fh.Filename, Content: content})
	}

	return files, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Data:    data,
		Error:   message,
	})
}

func (h *ImageHandler) respondUploadError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Upload exceeds the %d byte limit", maxBytesErr.Limit), nil)
		return
	}

	h.logger.Warn("Invalid upload", zap.Error(err))
	h.respondError(c, http.StatusBadRequest, err.Error(), nil)
}

func (h *ImageHandler) respondConversionError(c *gin.Context, batchID string, err error) {
	status := statusForError(err)

	switch {
	case errors.Is(err, processor.ErrNoValidInput):
		c.String(status, noValidInputMessage)
	case errors.Is(err, models.ErrUnsupportedFormat):
		c.String(status, "Unsupported output format. Choose one of: %s.", strings.Join(formatNames(), ", "))
	default:
		failure := models.ConversionFailure{BatchID: batchID}
		var batchErr *batch.BatchError
		if errors.As(err, &batchErr) {
			failure.File = batchErr.File
			failure.Failed = batchErr.Failures
		}
		if status >= http.StatusInternalServerError {
			h.logger.Error("Batch conversion failed", zap.String("batch_id", batchID), zap.Error(err))
		}
		h.respondError(c, status, err.Error(), failure)
	}
}

func (h *ImageHandler) respondWithArchive(c *gin.Context, resp *models.ArchiveResponse) {
	c.Header("Content-Disposition", utils.ContentDisposition(resp.Filename))
	c.Header(headerBatchID, resp.BatchID)

	if len(resp.Skipped) > 0 {
		names := make([]string, len(resp.Skipped))
		for i, s := range resp.Skipped {
			names[i] = s.Name
		}
		c.Header(headerSkippedFiles, utils.JoinEscaped(names))
		c.Header(headerSkippedCount, strconv.Itoa(len(resp.Skipped)))
	}

	c.Data(http.StatusOK, resp.ContentType, resp.Data)
}

// statusForError maps conversion errors to HTTP statuses.
func statusForError(err error) int {
	var batchErr *batch.BatchError
	switch {
	case errors.Is(err, processor.ErrNoValidInput),
		errors.Is(err, models.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, archive.ErrArchiveWrite):
		return http.StatusInternalServerError
	case errors.As(err, &batchErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != notConfigured {
			return "unhealthy"
		}
	}
	return "healthy"
}

func formatNames() []string {
	names := make([]string, len(models.OutputFormats))
	for i, f := range models.OutputFormats {
		names[i] = string(f)
	}
	return names
}
