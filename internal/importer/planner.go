package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"clipvault/internal/config"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/queue"
)

// BatchPayload describes an import-batch task: the candidate files one task
// copies into the library.
type BatchPayload struct {
	Paths []string `json:"paths"`
}

// Planner groups import candidates into fixed-size batches and enqueues one
// task per batch, skipping files that are already cataloged or already
// sitting in a pending import task.
type Planner struct {
	cfg    *config.Config
	store  *library.Store
	queue  *queue.Store
	logger *slog.Logger
}

// NewPlanner builds an import planner.
func NewPlanner(cfg *config.Config, store *library.Store, q *queue.Store, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{
		cfg:    cfg,
		store:  store,
		queue:  q,
		logger: logger.With(logging.String(logging.FieldComponent, "importer")),
	}
}

// Enqueue plans and enqueues import batches for the given files. It returns
// the enqueued task IDs and the paths that were skipped as duplicates or
// unreadable.
func (p *Planner) Enqueue(ctx context.Context, paths []string) ([]string, []string, error) {
	batchSize := p.cfg.Queue.ImportBatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	pending, err := pendingImportPaths(p.queue)
	if err != nil {
		return nil, nil, err
	}

	var (
		accepted []string
		skipped  []string
		seen     = make(map[string]struct{})
	)
	for _, raw := range paths {
		path, err := config.ExpandPath(raw)
		if err != nil {
			skipped = append(skipped, raw)
			continue
		}
		if _, dup := seen[path]; dup {
			skipped = append(skipped, path)
			continue
		}
		seen[path] = struct{}{}

		if info, err := os.Stat(path); err != nil || info.IsDir() {
			skipped = append(skipped, path)
			continue
		}
		if _, queued := pending[path]; queued {
			skipped = append(skipped, path)
			continue
		}
		existing, err := p.store.GetVideoByPath(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			skipped = append(skipped, path)
			continue
		}
		accepted = append(accepted, path)
	}

	var specs []queue.Spec
	for start := 0; start < len(accepted); start += batchSize {
		end := start + batchSize
		if end > len(accepted) {
			end = len(accepted)
		}
		payload, err := json.Marshal(BatchPayload{Paths: accepted[start:end]})
		if err != nil {
			return nil, nil, fmt.Errorf("marshal import batch: %w", err)
		}
		specs = append(specs, queue.Spec{Kind: queue.KindImportBatch, Payload: payload})
	}

	ids := p.queue.Enqueue(specs...)
	if len(accepted) > 0 {
		p.logger.Info("import batches enqueued",
			logging.Int("files", len(accepted)),
			logging.Int("batches", len(ids)),
			logging.Int("skipped", len(skipped)),
		)
	}
	return ids, skipped, nil
}

func pendingImportPaths(q *queue.Store) (map[string]struct{}, error) {
	pending := make(map[string]struct{})
	for _, task := range q.List(queue.StatusPending) {
		if task.Kind != queue.KindImportBatch {
			continue
		}
		var payload BatchPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode pending import payload: %w", err)
		}
		for _, path := range payload.Paths {
			pending[path] = struct{}{}
		}
	}
	return pending, nil
}
