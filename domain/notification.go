package domain

const (
	NotificationTypeApprovalRequested        = "ApprovalRequested"
	NotificationTypeApprovalApproved         = "ApprovalApproved"
	NotificationTypeApprovalRejected         = "ApprovalRejected"
	NotificationTypeApprovalCancelled        = "ApprovalCancelled"
	NotificationTypeLowStockAlert            = "LowStockAlert"
	NotificationTypePendingApprovalsReminder = "PendingApprovalsReminder"
)

type NotificationMessage struct {
	Type      string                 `json:"type" yaml:"type"`
	Variables map[string]interface{} `json:"variables,omitempty" yaml:"variables,omitempty"`
}

type Notification struct {
	User    string              `json:"user" yaml:"user"`
	Labels  map[string]string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Message NotificationMessage `json:"message" yaml:"message"`
}
