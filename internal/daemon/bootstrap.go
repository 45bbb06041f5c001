package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clipvault/internal/analysis"
	"clipvault/internal/config"
	"clipvault/internal/dispatch"
	"clipvault/internal/download"
	"clipvault/internal/importer"
	"clipvault/internal/library"
	"clipvault/internal/logging"
	"clipvault/internal/media"
	"clipvault/internal/notifications"
	"clipvault/internal/queue"
)

// Build opens the library database and wires every service a running daemon
// needs: one executor per task kind, the dispatcher, the notifier, and the
// import planner.
func Build(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	q := queue.NewStore()
	notifier := notifications.NewService(cfg)
	executors := dispatch.Registry{
		queue.KindExportClip:      media.NewExportExecutor(cfg, store, logger),
		queue.KindOverwriteClip:   media.NewOverwriteExecutor(cfg, store, logger),
		queue.KindImportBatch:     importer.NewExecutor(cfg, store, logger),
		queue.KindDownloadVideo:   download.NewExecutor(cfg, store, logger),
		queue.KindTranscribeVideo: analysis.NewTranscribeExecutor(cfg, store, logger),
		queue.KindAnalyzeVideo:    analysis.NewAnalyzeExecutor(cfg, store, logger),
	}
	dispatcher := dispatch.New(q, executors, &notifierAdapter{service: notifier, logger: logger}, logger)
	planner := importer.NewPlanner(cfg, store, q, logger)

	d, err := New(cfg, store, q, dispatcher, notifier, planner, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return d, nil
}

// notifierAdapter bridges the dispatcher's drain hook to the push service.
// Push failures are logged, never propagated into task handling.
type notifierAdapter struct {
	service notifications.Service
	logger  *slog.Logger
}

func (n *notifierAdapter) QueueDrained(ctx context.Context, succeeded, failed int, duration time.Duration) {
	if n.service == nil {
		return
	}
	if err := n.service.NotifyQueueDrained(ctx, succeeded, failed, duration); err != nil {
		log := n.logger
		if log == nil {
			log = logging.NewNop()
		}
		log.Warn("queue drained notification not sent", logging.Error(err))
	}
}
