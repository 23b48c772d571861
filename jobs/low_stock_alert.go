package jobs

import (
	"context"
	"fmt"

	"github.com/chimbuka/mabuku/domain"
)

type LowStockAlertConfig struct {
	OrganizationIDs []string `mapstructure:"organization_ids"`
}

// LowStockAlert notifies owners and managers of every active item at or
// below its reorder level.
func (h *handler) LowStockAlert(ctx context.Context, c Config) error {
	var cfg LowStockAlertConfig
	if err := c.Decode(&cfg); err != nil {
		return fmt.Errorf("invalid config for %s job: %w", LowStockAlert, err)
	}

	for _, orgID := range cfg.OrganizationIDs {
		items, err := h.inventoryService.ListLowStock(ctx, orgID)
		if err != nil {
			h.logger.Error(ctx, "failed to list low stock items", "organization_id", orgID, "error", err)
			continue
		}
		if len(items) == 0 {
			continue
		}
		h.logger.Info(ctx, "found low stock items", "organization_id", orgID, "count", len(items))

		recipients, err := h.userService.FindActiveByRoles(ctx, orgID, []string{domain.RoleOwner, domain.RoleManager})
		if err != nil {
			h.logger.Error(ctx, "failed to resolve alert recipients", "organization_id", orgID, "error", err)
			continue
		}

		itemSummaries := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			itemSummaries = append(itemSummaries, map[string]interface{}{
				"sku":              item.SKU,
				"name":             item.Name,
				"quantity_on_hand": item.QuantityOnHand,
				"reorder_level":    item.ReorderLevel,
			})
		}

		var notifications []domain.Notification
		for _, recipient := range recipients {
			notifications = append(notifications, domain.Notification{
				User: recipient.Email,
				Message: domain.NotificationMessage{
					Type: domain.NotificationTypeLowStockAlert,
					Variables: map[string]interface{}{
						"item_count": len(items),
						"items":      itemSummaries,
					},
				},
			})
		}

		if errs := h.notifier.Notify(ctx, notifications); errs != nil {
			for _, e := range errs {
				h.logger.Error(ctx, "failed to send low stock alert", "error", e)
			}
		}
	}

	return nil
}
