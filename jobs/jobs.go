package jobs

import (
	"context"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/internal/queue"
	"github.com/chimbuka/mabuku/pkg/log"
	"github.com/chimbuka/mabuku/plugins/notifiers"
)

type Type string

const (
	StockMovementApply       Type = "stock_movement_apply"
	LowStockAlert            Type = "low_stock_alert"
	PendingApprovalsReminder Type = "pending_approvals_reminder"
	AutoCategorize           Type = "auto_categorize"
	SuggestionCleanup        Type = "suggestion_cleanup"
)

// Config is the free-form per-job configuration block from the config
// file.
type Config map[string]interface{}

func (c Config) Decode(v interface{}) error {
	return mapstructure.Decode(c, v)
}

type Job struct {
	Enabled bool   `mapstructure:"enabled"`
	Config  Config `mapstructure:"config"`
}

type inventoryService interface {
	ApplyMovement(ctx context.Context, orgID, movementID string) error
	ListLowStock(ctx context.Context, orgID string) ([]*domain.InventoryItem, error)
}

type approvalService interface {
	ListPendingTasks(ctx context.Context, orgID, approverID string) ([]*domain.ApprovalTask, error)
}

type categorizationService interface {
	AutoCategorize(ctx context.Context, orgID string, limit int) ([]*domain.BulkDecisionResult, error)
	CleanupRejected(ctx context.Context, retention time.Duration) (int64, error)
}

type userService interface {
	FindActiveByRoles(ctx context.Context, orgID string, roles []string) ([]*domain.User, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.User, error)
}

type handler struct {
	logger                log.Logger
	inventoryService      inventoryService
	approvalService       approvalService
	categorizationService categorizationService
	userService           userService
	notifier              notifiers.Client
}

func NewHandler(
	logger log.Logger,
	inventoryService inventoryService,
	approvalService approvalService,
	categorizationService categorizationService,
	userService userService,
	notifier notifiers.Client,
) *handler {
	return &handler{
		logger:                logger,
		inventoryService:      inventoryService,
		approvalService:       approvalService,
		categorizationService: categorizationService,
		userService:           userService,
		notifier:              notifier,
	}
}

// RegisterQueueHandlers binds the queue-driven jobs to a worker.
func (h *handler) RegisterQueueHandlers(worker *queue.Worker) {
	worker.Register(string(StockMovementApply), h.ApplyStockMovement)
}
