package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"walksim/pkg/store"
)

// DefaultRetention is how long run history is kept when none is configured.
const DefaultRetention = 90 * 24 * time.Hour

// Run executes all maintenance tasks and returns the first failure.
// Callers decide whether it is fatal; the walk treats it as a warning.
func Run(ctx context.Context, s store.RunStore, retention time.Duration) error {
	slog.Debug("Starting database maintenance...")

	if retention <= 0 {
		retention = DefaultRetention
	}

	n, err := s.PruneRuns(ctx, retention)
	if err != nil {
		return fmt.Errorf("prune run history: %w", err)
	}
	if n > 0 {
		slog.Info("Pruned run history", "removed", n, "retention", retention)
	}
	return nil
}
