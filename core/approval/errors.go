package approval

import "errors"

var (
	ErrRequestNotFound     = errors.New("approval request not found")
	ErrRequestIDEmptyParam = errors.New("approval request id is required")
	ErrTaskNotFound        = errors.New("approval task not found")
	ErrTaskIDEmptyParam    = errors.New("approval task id is required")
	ErrExpenseNotDraft     = errors.New("only draft expenses can be submitted for approval")
	ErrAlreadySubmitted    = errors.New("an approval request already exists for this expense")
	ErrTaskNotPending      = errors.New("approval task is no longer pending")
	ErrActionForbidden     = errors.New("user is not the assigned approver of this task")
	ErrRequestNotPending   = errors.New("only pending approval requests can be cancelled")
	ErrInvalidDecision     = errors.New("invalid approval decision")
	ErrNoApproversResolved = errors.New("no active approvers could be resolved for the requirement")
)
