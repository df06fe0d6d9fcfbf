package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/phambaophuc/image-converter/internal/models"
)

// RecordBatch folds one finished batch into the running counters.
func (s *StatsService) RecordBatch(ctx context.Context, report models.BatchReport) error {
	pipeline := s.redisClient.TxPipeline()

	pipeline.HIncrBy(ctx, TotalsKey, "batches", 1)
	pipeline.HIncrBy(ctx, TotalsKey, "batches_"+report.Status, 1)
	pipeline.HIncrBy(ctx, TotalsKey, "files", int64(report.Files))
	pipeline.HIncrBy(ctx, TotalsKey, "converted", int64(report.Converted))
	pipeline.HIncrBy(ctx, TotalsKey, "skipped", int64(report.Skipped))
	pipeline.HIncrBy(ctx, TotalsKey, "duration_ms", report.Duration.Milliseconds())
	if report.Format != "" {
		pipeline.HIncrBy(ctx, FormatsKey, string(report.Format), int64(report.Converted))
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record batch stats: %w", err)
	}
	return nil
}

func (s *StatsService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	pipeline := s.redisClient.Pipeline()
	totalsCmd := pipeline.HGetAll(ctx, TotalsKey)
	formatsCmd := pipeline.HGetAll(ctx, FormatsKey)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	totals := make(map[string]int64)
	for field, raw := range totalsCmd.Val() {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid counter %s: %w", field, err)
		}
		totals[field] = n
	}

	formats := make(map[string]int64)
	for field, raw := range formatsCmd.Val() {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid format counter %s: %w", field, err)
		}
		formats[field] = n
	}

	return map[string]interface{}{
		"totals":  totals,
		"formats": formats,
	}, nil
}
