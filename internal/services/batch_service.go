package services

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/archive"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/processor"
	"github.com/phambaophuc/image-converter/pkg/utils"
	"go.uber.org/zap"
)

const reportTimeout = 5 * time.Second

type StatsRecorder interface {
	RecordBatch(ctx context.Context, report models.BatchReport) error
}

type EventPublisher interface {
	PublishBatchEvent(ctx context.Context, event *models.BatchEvent) error
}

// BatchService runs one upload through validation, parallel conversion and
// archive assembly. stats and events are optional.
type BatchService struct {
	validator *processor.Validator
	scheduler *batch.Scheduler
	stats     StatsRecorder
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewBatchService(
	validator *processor.Validator,
	scheduler *batch.Scheduler,
	stats StatsRecorder,
	events EventPublisher,
	logger *zap.Logger,
) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		validator: validator,
		scheduler: scheduler,
		stats:     stats,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *BatchService) Workers() int {
	return s.scheduler.Workers()
}

func (s *BatchService) Policy() batch.Policy {
	return s.scheduler.Policy()
}

// Convert returns the sealed archive for files converted to format. Under the
// abort policy any failed file rejects the batch and no archive is returned.
func (s *BatchService) Convert(ctx context.Context, batchID string, files []models.UploadedFile, format string) (*models.ArchiveResponse, error) {
	start := s.now()
	report := models.BatchReport{BatchID: batchID, Files: len(files)}

	valid, formatName, err := s.validator.Validate(files, format)
	if err != nil {
		report.Status = models.StatusRejected
		s.finish(ctx, report, start, err)
		return nil, err
	}

	target, err := models.ParseFormat(formatName)
	if err != nil {
		report.Status = models.StatusRejected
		s.finish(ctx, report, start, err)
		return nil, err
	}
	report.Format = target
	report.Files = len(valid)

	s.logger.Info("Batch conversion started",
		zap.String("batch_id", batchID),
		zap.String("format", string(target)),
		zap.Int("files", len(valid)),
		zap.Int("ignored", len(files)-len(valid)))

	var buf bytes.Buffer
	asm := archive.NewAssembler(&buf, start)

	results, runErr := s.scheduler.Run(ctx, valid, target, func(r models.ConversionResult) error {
		return asm.Add(r.EntryName, r.Data)
	})
	closeErr := asm.Close()

	for _, r := range results {
		if r.Succeeded() {
			report.Converted++
		}
	}
	skipped := batch.Skipped(results)
	report.Skipped = len(skipped)

	if err := errors.Join(runErr, closeErr); err != nil {
		report.Status = models.StatusFailed
		s.finish(ctx, report, start, err)
		if runErr != nil {
			return nil, runErr
		}
		return nil, closeErr
	}

	report.Status = models.StatusCompleted
	if len(skipped) > 0 {
		report.Status = models.StatusPartial
	}
	s.finish(ctx, report, start, nil)

	return &models.ArchiveResponse{
		BatchID:     batchID,
		Filename:    utils.GenerateArchiveFilename(start),
		ContentType: archive.ContentType,
		Data:        buf.Bytes(),
		Entries:     asm.Entries(),
		Skipped:     skipped,
	}, nil
}

// finish logs the outcome and hands it to the optional collaborators. Their
// failures never change the response.
func (s *BatchService) finish(ctx context.Context, report models.BatchReport, start time.Time, batchErr error) {
	report.Duration = s.now().Sub(start)

	fields := []zap.Field{
		zap.String("batch_id", report.BatchID),
		zap.String("status", report.Status),
		zap.Int("files", report.Files),
		zap.Int("converted", report.Converted),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.Duration),
	}
	if batchErr != nil {
		s.logger.Warn("Batch conversion failed", append(fields, zap.Error(batchErr))...)
	} else {
		s.logger.Info("Batch conversion finished", fields...)
	}

	if s.stats == nil && s.events == nil {
		return
	}

	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	if s.stats != nil {
		if err := s.stats.RecordBatch(reportCtx, report); err != nil {
			s.logger.Warn("Failed to record batch stats", zap.String("batch_id", report.BatchID), zap.Error(err))
		}
	}

	if s.events != nil {
		event := &models.BatchEvent{
			BatchID:     report.BatchID,
			Format:      string(report.Format),
			Status:      report.Status,
			Files:       report.Files,
			Converted:   report.Converted,
			Skipped:     report.Skipped,
			DurationMs:  report.Duration.Milliseconds(),
			CompletedAt: s.now(),
		}
		if batchErr != nil {
			event.Error = batchErr.Error()
		}
		if err := s.events.PublishBatchEvent(reportCtx, event); err != nil {
			s.logger.Warn("Failed to publish batch event", zap.String("batch_id", report.BatchID), zap.Error(err))
		}
	}
}
