package jobs

import (
	"context"
	"fmt"

	"github.com/chimbuka/mabuku/domain"
)

type AutoCategorizeConfig struct {
	OrganizationIDs []string `mapstructure:"organization_ids"`
	BatchSize       int      `mapstructure:"batch_size"`
}

// AutoCategorize re-evaluates uncategorized transactions and applies
// suggestions where the engine is confident enough.
func (h *handler) AutoCategorize(ctx context.Context, c Config) error {
	var cfg AutoCategorizeConfig
	if err := c.Decode(&cfg); err != nil {
		return fmt.Errorf("invalid config for %s job: %w", AutoCategorize, err)
	}

	for _, orgID := range cfg.OrganizationIDs {
		results, err := h.categorizationService.AutoCategorize(ctx, orgID, cfg.BatchSize)
		if err != nil {
			h.logger.Error(ctx, "auto categorization failed", "organization_id", orgID, "error", err)
			continue
		}

		var applied, failed int
		for _, result := range results {
			switch result.Outcome {
			case domain.BulkOutcomeSuccess:
				applied++
			case domain.BulkOutcomeFailed:
				failed++
			}
		}
		h.logger.Info(ctx, "auto categorization finished",
			"organization_id", orgID, "processed", len(results), "applied", applied, "failed", failed)
	}

	return nil
}
