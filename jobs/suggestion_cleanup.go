package jobs

import (
	"context"
	"fmt"
	"time"
)

type SuggestionCleanupConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

// SuggestionCleanup purges rejected category suggestions older than the
// retention window so re-evaluated transactions do not drag dead rows
// around forever.
func (h *handler) SuggestionCleanup(ctx context.Context, c Config) error {
	var cfg SuggestionCleanupConfig
	if err := c.Decode(&cfg); err != nil {
		return fmt.Errorf("invalid config for %s job: %w", SuggestionCleanup, err)
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}

	removed, err := h.categorizationService.CleanupRejected(ctx, time.Duration(cfg.RetentionDays)*24*time.Hour)
	if err != nil {
		return err
	}

	h.logger.Info(ctx, "rejected suggestion cleanup finished",
		"retention_days", cfg.RetentionDays, "removed", removed)
	return nil
}
