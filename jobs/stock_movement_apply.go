package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chimbuka/mabuku/core/inventory"
	"github.com/chimbuka/mabuku/internal/queue"
)

// ApplyStockMovement processes one queued stock movement. Insufficient
// stock is terminal for the movement, not a transient failure, so it is
// logged and not retried.
func (h *handler) ApplyStockMovement(ctx context.Context, job *queue.Job) error {
	var payload inventory.ApplyMovementPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("invalid payload for %s job: %w", StockMovementApply, err)
	}

	h.logger.Info(ctx, "applying stock movement", "movement_id", payload.MovementID)
	if err := h.inventoryService.ApplyMovement(ctx, payload.OrganizationID, payload.MovementID); err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			h.logger.Warn(ctx, "stock movement failed on insufficient stock", "movement_id", payload.MovementID)
			return nil
		}
		return err
	}

	return nil
}
