package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/processor"
	"go.uber.org/zap"
)

// Policy decides what one failed file does to the rest of the batch.
type Policy string

const (
	// PolicyAbort rejects the batch on the first failure; no archive is produced.
	PolicyAbort Policy = "abort"
	// PolicySkip archives every success and reports the failures.
	PolicySkip Policy = "skip"
)

const DefaultFileTimeout = 30 * time.Second

func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case PolicyAbort, PolicySkip:
		return Policy(value), nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", value)
	}
}

type Converter interface {
	Convert(file models.UploadedFile, format models.Format) ([]byte, string, error)
}

// Sink receives each successful result as soon as it is ready. It is called
// from several workers at once and must serialize its own writes.
type Sink func(result models.ConversionResult) error

type Options struct {
	// Workers bounds concurrent conversions; zero means runtime.NumCPU().
	Workers int
	// FileTimeout bounds one conversion; zero disables the limit.
	FileTimeout time.Duration
	Policy      Policy
}

type Scheduler struct {
	converter Converter
	opts      Options
	logger    *zap.Logger
}

func NewScheduler(converter Converter, opts Options, logger *zap.Logger) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Policy == "" {
		opts.Policy = PolicyAbort
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{converter: converter, opts: opts, logger: logger}
}

func (s *Scheduler) Policy() Policy {
	return s.opts.Policy
}

func (s *Scheduler) Workers() int {
	return s.opts.Workers
}

// Run converts files on a bounded worker pool and returns one result per
// file, in upload order, once every started conversion has finished.
func (s *Scheduler) Run(ctx context.Context, files []models.UploadedFile, format models.Format, sink Sink) ([]models.ConversionResult, error) {
	if len(files) == 0 {
		return nil, nil
	}

	names := EntryNames(files, format)
	results := make([]models.ConversionResult, len(files))

	// Under abort, files after the lowest failed index are not started.
	// Files before it always run, so the reported failure is the first one in
	// upload order whatever the worker count.
	var (
		mu      sync.Mutex
		abortAt = len(files)
		sinkErr error
	)
	skip := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return i > abortAt
	}
	markFailed := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		abortAt = min(abortAt, i)
	}

	numWorkers := min(s.opts.Workers, len(files))
	jobs := make(chan int, len(files))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil || skip(i) {
					results[i] = models.ConversionResult{SourceName: files[i].Name, EntryName: names[i], Err: context.Canceled}
					continue
				}

				results[i] = s.processJob(ctx, files[i], names[i], format)
				if results[i].Err != nil {
					if s.opts.Policy == PolicyAbort {
						markFailed(i)
					}
					continue
				}

				if sink != nil {
					if err := sink(results[i]); err != nil {
						mu.Lock()
						if sinkErr == nil {
							sinkErr = err
						}
						abortAt = -1
						mu.Unlock()
					}
				}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	if sinkErr != nil {
		return results, sinkErr
	}

	return results, s.outcome(results)
}

func (s *Scheduler) outcome(results []models.ConversionResult) error {
	var failures []models.ConversionResult
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			failures = append(failures, r)
		}
	}

	if len(failures) == 0 {
		return nil
	}

	batchErr := &BatchError{
		File:     failures[0].SourceName,
		Err:      failures[0].Err,
		Failures: Skipped(failures),
	}

	if s.opts.Policy == PolicyAbort {
		return batchErr
	}

	if len(failures) == len(results) {
		batchErr.AllFailed = true
		return batchErr
	}
	return nil
}

func (s *Scheduler) processJob(ctx context.Context, file models.UploadedFile, entry string, format models.Format) models.ConversionResult {
	result := models.ConversionResult{SourceName: file.Name, EntryName: entry}
	start := time.Now()

	fileCtx := ctx
	if s.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		fileCtx, cancel = context.WithTimeout(ctx, s.opts.FileTimeout)
		defer cancel()
	}

	done := make(chan models.ConversionResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- models.ConversionResult{Err: fmt.Errorf("panic while converting %q: %v", file.Name, r)}
			}
		}()
		data, _, err := s.converter.Convert(file, format)
		done <- models.ConversionResult{Data: data, Err: err}
	}()

	select {
	case out := <-done:
		result.Data, result.Err = out.Data, out.Err
	case <-fileCtx.Done():
		if ctx.Err() != nil {
			result.Err = ctx.Err()
		} else {
			result.Err = &processor.TimeoutError{File: file.Name, Limit: s.opts.FileTimeout.String()}
		}
		result.Duration = time.Since(start)

		// The conversion cannot be interrupted. The worker keeps its slot until
		// it returns so at most Workers conversions ever run; the late result
		// is discarded.
		<-done
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}

	if result.Err != nil {
		s.logger.Warn("Conversion failed",
			zap.String("file", file.Name),
			zap.String("format", string(format)),
			zap.Duration("duration", result.Duration),
			zap.Error(result.Err))
	} else {
		s.logger.Debug("Conversion completed",
			zap.String("file", file.Name),
			zap.String("entry", entry),
			zap.Int("bytes", len(result.Data)),
			zap.Duration("duration", result.Duration))
	}

	return result
}

// Skipped converts failed results into the skip report.
func Skipped(results []models.ConversionResult) []models.SkippedFile {
	var skipped []models.SkippedFile
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			skipped = append(skipped, models.SkippedFile{Name: r.SourceName, Reason: r.Err.Error()})
		}
	}
	return skipped
}
