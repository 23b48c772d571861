package jobs

import (
	"context"
	"fmt"

	"github.com/chimbuka/mabuku/domain"
)

type PendingApprovalsReminderConfig struct {
	OrganizationIDs []string `mapstructure:"organization_ids"`
}

func (h *handler) PendingApprovalsReminder(ctx context.Context, c Config) error {
	var cfg PendingApprovalsReminderConfig
	if err := c.Decode(&cfg); err != nil {
		return fmt.Errorf("invalid config for %s job: %w", PendingApprovalsReminder, err)
	}

	h.logger.Info(ctx, "running pending approvals reminder job")
	for _, orgID := range cfg.OrganizationIDs {
		tasks, err := h.approvalService.ListPendingTasks(ctx, orgID, "")
		if err != nil {
			h.logger.Error(ctx, "failed to list pending tasks", "organization_id", orgID, "error", err)
			continue
		}
		h.logger.Info(ctx, "retrieved pending tasks", "organization_id", orgID, "count", len(tasks))

		approverPendingTasks := make(map[string]int)
		for _, task := range tasks {
			approverPendingTasks[task.ApproverID]++
		}

		var notifications []domain.Notification
		for approverID, count := range approverPendingTasks {
			approver, err := h.userService.GetByID(ctx, orgID, approverID)
			if err != nil {
				h.logger.Error(ctx, "failed to resolve approver", "approver_id", approverID, "error", err)
				continue
			}
			notifications = append(notifications, domain.Notification{
				User: approver.Email,
				Message: domain.NotificationMessage{
					Type: domain.NotificationTypePendingApprovalsReminder,
					Variables: map[string]interface{}{
						"pending_tasks_count": count,
					},
				},
			})
		}

		if errs := h.notifier.Notify(ctx, notifications); errs != nil {
			for _, e := range errs {
				h.logger.Error(ctx, "failed to send reminder", "error", e)
			}
		}
	}

	h.logger.Info(ctx, "pending approvals reminders sent")
	return nil
}
