package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mfairchild/tvdeckd/internal/metrics"
	"github.com/mfairchild/tvdeckd/internal/models"
)

// Task syncs one source. Implementations own their domain errors and may
// emit fine-grained status text through report; the scheduler prefixes each
// message with the item's position.
type Task func(ctx context.Context, src *models.Source, report func(msg string)) error

// ProgressFunc receives human-readable status text.
type ProgressFunc func(msg string)

// BatchScheduler runs per-source sync tasks in fixed-size concurrent batches.
// It is the system's sole backpressure mechanism: at most limit tasks are in
// flight at once, bounding simultaneous outbound requests and peak memory
// from large catalog payloads.
type BatchScheduler struct {
	logger *slog.Logger
}

// NewBatchScheduler creates a scheduler.
func NewBatchScheduler(logger *slog.Logger) *BatchScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchScheduler{logger: logger}
}

// Run partitions sources into consecutive batches of size <= limit and
// processes the batches strictly in order: batch n+1 does not start until
// every task of batch n has settled. Tasks within a batch run concurrently.
//
// A task failing or panicking never aborts its siblings or later batches;
// failures are caught, logged, and counted.
func (s *BatchScheduler) Run(ctx context.Context, kind SyncKind, sources []*models.Source, limit int, task Task, onBatchProgress, onItemProgress ProgressFunc) {
	if len(sources) == 0 {
		return
	}
	if limit < 1 {
		limit = 1
	}

	total := len(sources)
	batches := (total + limit - 1) / limit

	for b := 0; b < batches; b++ {
		start := b * limit
		end := min(start+limit, total)
		batch := sources[start:end]

		if onBatchProgress != nil {
			names := make([]string, len(batch))
			for i, src := range batch {
				names[i] = src.Name
			}
			onBatchProgress(fmt.Sprintf("batch %d/%d: %s", b+1, batches, strings.Join(names, ", ")))
		}
		metrics.SyncBatches.WithLabelValues(string(kind)).Inc()

		var wg sync.WaitGroup
		for i, src := range batch {
			wg.Add(1)
			go func(pos int, src *models.Source) {
				defer wg.Done()
				s.runTask(ctx, kind, pos, total, src, task, onItemProgress)
			}(start+i+1, src)
		}
		// Full settlement of the batch gates the next one.
		wg.Wait()
	}
}

// runTask executes one task with failure isolation.
func (s *BatchScheduler) runTask(ctx context.Context, kind SyncKind, pos, total int, src *models.Source, task Task, onItemProgress ProgressFunc) {
	metrics.SyncTasksInFlight.Inc()
	defer metrics.SyncTasksInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			metrics.SyncTasks.WithLabelValues(string(kind), "panic").Inc()
			s.logger.Error("sync task panicked",
				slog.String("kind", string(kind)),
				slog.String("source", src.Name),
				slog.Any("panic", r))
		}
	}()

	report := func(msg string) {
		if onItemProgress != nil {
			onItemProgress(fmt.Sprintf("[%d/%d] %s: %s", pos, total, src.Name, msg))
		}
	}

	if err := task(ctx, src, report); err != nil {
		metrics.SyncTasks.WithLabelValues(string(kind), "error").Inc()
		s.logger.Error("sync task failed",
			slog.String("kind", string(kind)),
			slog.String("source", src.Name),
			slog.String("error", err.Error()))
		return
	}

	metrics.SyncTasks.WithLabelValues(string(kind), "success").Inc()
	s.logger.Debug("sync task completed",
		slog.String("kind", string(kind)),
		slog.String("source", src.Name))
}
