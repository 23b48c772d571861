package domain

import (
	"time"
)

const (
	ApprovalRequestStatusPending   = "pending"
	ApprovalRequestStatusApproved  = "approved"
	ApprovalRequestStatusRejected  = "rejected"
	ApprovalRequestStatusCancelled = "cancelled"
)

const (
	ApprovalTaskStatusPending   = "pending"
	ApprovalTaskStatusCompleted = "completed"
	ApprovalTaskStatusSkipped   = "skipped"
	ApprovalTaskStatusExpired   = "expired"
)

const (
	ApprovalDecisionApproved = "approved"
	ApprovalDecisionRejected = "rejected"
	ApprovalDecisionReturned = "returned"
)

const (
	ApprovalHistoryActionSubmitted = "submitted"
	ApprovalHistoryActionApproved  = "approved"
	ApprovalHistoryActionRejected  = "rejected"
	ApprovalHistoryActionReturned  = "returned"
	ApprovalHistoryActionCancelled = "cancelled"
)

// ApprovalRequest is the umbrella workflow instance for one expense's
// approval. Terminal on approved/rejected/cancelled.
type ApprovalRequest struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	ExpenseID      string `json:"expense_id" yaml:"expense_id"`
	RequesterID    string `json:"requester_id" yaml:"requester_id"`
	Status         string `json:"status" yaml:"status"`
	Urgency        string `json:"urgency" yaml:"urgency"`

	// Amount/currency are snapshotted from the expense at submission time.
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`

	DueAt *time.Time `json:"due_at,omitempty" yaml:"due_at,omitempty"`

	Tasks []*ApprovalTask `json:"tasks,omitempty" yaml:"tasks,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (r *ApprovalRequest) IsPending() bool {
	return r.Status == ApprovalRequestStatusPending
}

func (r *ApprovalRequest) Approve() {
	r.Status = ApprovalRequestStatusApproved
}

func (r *ApprovalRequest) Reject() {
	r.Status = ApprovalRequestStatusRejected
}

func (r *ApprovalRequest) Cancel() {
	r.Status = ApprovalRequestStatusCancelled
}

func (r *ApprovalRequest) GetTask(taskID string) *ApprovalTask {
	for _, t := range r.Tasks {
		if t.ID == taskID {
			return t
		}
	}
	return nil
}

// ResolveOutcome aggregates completed tasks into the request outcome.
// A single rejected required task rejects the whole request; that check
// runs before the all-completed check. Returns the terminal request
// status, or an empty string while the request must stay pending.
func (r *ApprovalRequest) ResolveOutcome() string {
	for _, t := range r.Tasks {
		if t.IsRequired && t.Status == ApprovalTaskStatusCompleted && t.Decision == ApprovalDecisionRejected {
			return ApprovalRequestStatusRejected
		}
	}
	for _, t := range r.Tasks {
		if t.IsRequired && t.Status != ApprovalTaskStatusCompleted {
			return ""
		}
	}
	return ApprovalRequestStatusApproved
}

// ApprovalTask is one approver's pending or resolved decision within a
// request.
type ApprovalTask struct {
	ID         string     `json:"id" yaml:"id"`
	RequestID  string     `json:"request_id" yaml:"request_id"`
	RuleID     string     `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	ApproverID string     `json:"approver_id" yaml:"approver_id"`
	Status     string     `json:"status" yaml:"status"`
	Decision   string     `json:"decision,omitempty" yaml:"decision,omitempty"`
	Comment    string     `json:"comment,omitempty" yaml:"comment,omitempty"`
	Sequence   int        `json:"sequence" yaml:"sequence"`
	IsRequired bool       `json:"is_required" yaml:"is_required"`
	DecidedAt  *time.Time `json:"decided_at,omitempty" yaml:"decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (t *ApprovalTask) IsPending() bool {
	return t.Status == ApprovalTaskStatusPending
}

func (t *ApprovalTask) Complete(decision string, comment string, at time.Time) {
	t.Status = ApprovalTaskStatusCompleted
	t.Decision = decision
	t.Comment = comment
	t.DecidedAt = &at
}

func (t *ApprovalTask) Skip() {
	t.Status = ApprovalTaskStatusSkipped
}

// ApprovalHistory is an append-only audit entry against a request.
type ApprovalHistory struct {
	ID        string    `json:"id" yaml:"id"`
	RequestID string    `json:"request_id" yaml:"request_id"`
	Action    string    `json:"action" yaml:"action"`
	ActorID   string    `json:"actor_id" yaml:"actor_id"`
	Comment   string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// BulkDecisionResult reports the outcome of one item within a bulk
// call so callers can tell which items failed and why. ID is the bulk
// item's id: a task, transaction or suggestion depending on the caller.
type BulkDecisionResult struct {
	ID      string `json:"id" yaml:"id"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

const (
	BulkOutcomeSuccess = "success"
	BulkOutcomeSkipped = "skipped"
	BulkOutcomeFailed  = "failed"
)

type ListApprovalRequestsFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	RequesterID    string   `mapstructure:"requester_id" validate:"omitempty"`
	ExpenseID      string   `mapstructure:"expense_id" validate:"omitempty"`
	Statuses       []string `mapstructure:"statuses" validate:"omitempty,min=1"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}

type ListApprovalTasksFilter struct {
	OrganizationID string   `mapstructure:"organization_id" validate:"required"`
	ApproverID     string   `mapstructure:"approver_id" validate:"omitempty"`
	Statuses       []string `mapstructure:"statuses" validate:"omitempty,min=1"`
	Size           int      `mapstructure:"size" validate:"omitempty"`
	Offset         int      `mapstructure:"offset" validate:"omitempty"`
}

// ApprovalStats summarises request volumes for an organization.
type ApprovalStats struct {
	TotalRequests        int64   `json:"total_requests" yaml:"total_requests"`
	PendingRequests      int64   `json:"pending_requests" yaml:"pending_requests"`
	ApprovedRequests     int64   `json:"approved_requests" yaml:"approved_requests"`
	RejectedRequests     int64   `json:"rejected_requests" yaml:"rejected_requests"`
	CancelledRequests    int64   `json:"cancelled_requests" yaml:"cancelled_requests"`
	AvgCompletionHours   float64 `json:"avg_completion_hours" yaml:"avg_completion_hours"`
	PendingTasks         int64   `json:"pending_tasks" yaml:"pending_tasks"`
}
