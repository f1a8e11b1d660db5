package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"sitephoto/internal/annotation"
	"sitephoto/internal/logging"
)

// Defaults for Dispatcher.
const (
	DefaultBatchSize   = 10
	DefaultConcurrency = 3
)

// Annotator produces annotations for a batch of image paths. Implementations
// wrap the vision model call; returned photos are keyed by base filename.
type Annotator interface {
	Annotate(ctx context.Context, paths []string) ([]annotation.Photo, error)
}

// AnnotatorFunc adapts a function to Annotator.
type AnnotatorFunc func(ctx context.Context, paths []string) ([]annotation.Photo, error)

// Annotate calls f.
func (f AnnotatorFunc) Annotate(ctx context.Context, paths []string) ([]annotation.Photo, error) {
	return f(ctx, paths)
}

// BatchError records a batch the annotator could not process.
type BatchError struct {
	Index int
	Files []string
	Err   error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("batch %d (%d files): %v", e.Index, len(e.Files), e.Err)
}

func (e BatchError) Unwrap() error { return e.Err }

// Report is the outcome of a dispatch run.
type Report struct {
	Photos  []annotation.Photo
	Skipped int
	Failed  []BatchError
}

// Dispatcher splits images into batches and annotates them concurrently.
type Dispatcher struct {
	Annotator   Annotator
	BatchSize   int
	Concurrency int
	Logger      *slog.Logger
}

// Run annotates every path whose base name is not in done. Failed batches are
// reported and do not stop the run; only context cancellation returns an
// error. Photos come back sorted by filename.
func (d *Dispatcher) Run(ctx context.Context, paths []string, done map[string]bool) (Report, error) {
	logger := logging.NewComponentLogger(d.Logger, "ingest")
	size := d.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	workers := d.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}

	var report Report
	pending := make([]string, 0, len(paths))
	for _, path := range paths {
		if done[filepath.Base(path)] {
			report.Skipped++
			continue
		}
		pending = append(pending, path)
	}
	batches := chunk(pending, size)
	logger.Info("annotation dispatch starting",
		logging.Int("images", len(pending)),
		logging.Int("skipped", report.Skipped),
		logging.Int("batches", len(batches)),
		logging.Int("concurrency", workers),
	)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for i, batch := range batches {
		select {
		case <-ctx.Done():
			wg.Wait()
			return report, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(index int, batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			photos, err := d.Annotator.Annotate(ctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, BatchError{Index: index, Files: baseNames(batch), Err: err})
				logging.WarnWithContext(logger, "annotation batch failed", "batch_failed",
					logging.Int("batch", index),
					logging.Int("files", len(batch)),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "rerun import to retry the remaining files"),
					logging.String(logging.FieldImpact, "photos in this batch stay unannotated"),
				)
				return
			}
			report.Photos = append(report.Photos, keep(batch, photos, logger)...)
			logger.Debug("annotation batch complete", logging.Int("batch", index), logging.Int("photos", len(photos)))
		}(i, batch)
	}
	wg.Wait()

	report.Photos = annotation.SortByFile(report.Photos)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	logger.Info("annotation dispatch complete",
		logging.Int("annotated", len(report.Photos)),
		logging.Int("failed_batches", len(report.Failed)),
	)
	return report, nil
}

// keep drops photos whose filename is not part of the batch.
func keep(batch []string, photos []annotation.Photo, logger *slog.Logger) []annotation.Photo {
	want := make(map[string]bool, len(batch))
	for _, name := range baseNames(batch) {
		want[name] = true
	}
	out := make([]annotation.Photo, 0, len(photos))
	for _, photo := range photos {
		photo.File = filepath.Base(strings.TrimSpace(photo.File))
		if !want[photo.File] {
			logger.Warn("annotator returned unknown file", logging.String(logging.FieldFile, photo.File))
			continue
		}
		out = append(out, photo)
	}
	return out
}

func chunk(paths []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(paths); start += size {
		end := min(start+size, len(paths))
		out = append(out, paths[start:end])
	}
	return out
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = filepath.Base(path)
	}
	return out
}
