package database

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/store-management/pkg/logger"
)

// Inline runs tasks on the calling goroutine. Transaction-bound entity
// stores use it because their outer transaction already occupies a worker.
type Inline struct {
	Logger *slog.Logger
}

func (i Inline) Do(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return runTask(ctx, task)
}

func (i Inline) Go(task Task) {
	if err := runTask(context.Background(), task); err != nil {
		lg := i.Logger
		if lg == nil {
			lg = logger.LoggerWrapper()
		}
		lg.Error("background database task failed", "error", err)
	}
}
