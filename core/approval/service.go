package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
	"github.com/chimbuka/mabuku/pkg/slices"
	"github.com/chimbuka/mabuku/plugins/notifiers"
)

const (
	AuditKeySubmit = "approval.submit"
	AuditKeyDecide = "approval.decide"
	AuditKeyCancel = "approval.cancel"
)

type repository interface {
	CreateRequest(context.Context, *domain.ApprovalRequest) error
	GetRequestByID(ctx context.Context, orgID, id string) (*domain.ApprovalRequest, error)
	GetRequestByExpenseID(ctx context.Context, orgID, expenseID string) (*domain.ApprovalRequest, error)
	FindRequests(context.Context, *domain.ListApprovalRequestsFilter) ([]*domain.ApprovalRequest, error)
	UpdateRequest(context.Context, *domain.ApprovalRequest) error
	GetTaskByID(ctx context.Context, orgID, id string) (*domain.ApprovalTask, error)
	FindTasks(context.Context, *domain.ListApprovalTasksFilter) ([]*domain.ApprovalTask, error)
	UpdateTask(context.Context, *domain.ApprovalTask) error
	AppendHistory(context.Context, *domain.ApprovalHistory) error
	ListHistory(ctx context.Context, requestID string) ([]*domain.ApprovalHistory, error)
	GetStats(ctx context.Context, orgID string) (*domain.ApprovalStats, error)
}

type rulesEngine interface {
	Evaluate(ctx context.Context, orgID string, facts map[string]interface{}) ([]*domain.ApprovalRequirement, error)
}

type expenseService interface {
	GetByID(ctx context.Context, orgID, id string) (*domain.Expense, error)
	UpdateStatus(ctx context.Context, orgID, id, status string) error
}

type userService interface {
	FindActiveByRoles(ctx context.Context, orgID string, roles []string) ([]*domain.User, error)
}

type ServiceDeps struct {
	Repository     repository
	RulesEngine    rulesEngine
	ExpenseService expenseService
	UserService    userService

	Notifier    notifiers.Client
	Validator   *validator.Validate
	Logger      log.Logger
	AuditLogger audit.AuditLogger
}

// Service drives the approval workflow: it turns rule requirements into
// persisted tasks and aggregates per-task decisions into the request
// outcome.
type Service struct {
	repo           repository
	rulesEngine    rulesEngine
	expenseService expenseService
	userService    userService

	notifier    notifiers.Client
	validator   *validator.Validate
	logger      log.Logger
	auditLogger audit.AuditLogger

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.Repository,
		deps.RulesEngine,
		deps.ExpenseService,
		deps.UserService,
		deps.Notifier,
		deps.Validator,
		deps.Logger,
		deps.AuditLogger,
		time.Now,
	}
}

// Submit evaluates approval rules for the expense and opens an approval
// request when at least one requirement matches. A nil request with a nil
// error means no approval was required and the expense was auto-approved.
func (s *Service) Submit(ctx context.Context, orgID, expenseID, requesterID string) (*domain.ApprovalRequest, error) {
	expense, err := s.expenseService.GetByID(ctx, orgID, expenseID)
	if err != nil {
		return nil, err
	}
	if !expense.IsDraft() {
		return nil, ErrExpenseNotDraft
	}

	existing, err := s.repo.GetRequestByExpenseID(ctx, orgID, expenseID)
	if err != nil && !errors.Is(err, ErrRequestNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubmitted
	}

	requirements, err := s.rulesEngine.Evaluate(ctx, orgID, expense.ToRuleContext())
	if err != nil {
		return nil, fmt.Errorf("evaluating approval rules: %w", err)
	}

	if len(requirements) == 0 {
		if err := s.expenseService.UpdateStatus(ctx, orgID, expenseID, domain.ExpenseStatusApproved); err != nil {
			return nil, fmt.Errorf("auto-approving expense: %w", err)
		}
		s.logger.Info(ctx, "expense auto-approved, no matching approval rules", "expense_id", expenseID)
		return nil, nil
	}

	now := s.TimeNow()
	request := &domain.ApprovalRequest{
		OrganizationID: orgID,
		ExpenseID:      expenseID,
		RequesterID:    requesterID,
		Status:         domain.ApprovalRequestStatusPending,
		Urgency:        highestUrgency(requirements),
		Amount:         expense.Amount,
		Currency:       expense.Currency,
		DueAt:          earliestDue(now, requirements),
	}

	sequence := 0
	for _, req := range requirements {
		approverIDs, err := s.resolveApprovers(ctx, orgID, req)
		if err != nil {
			return nil, err
		}
		for _, approverID := range approverIDs {
			request.Tasks = append(request.Tasks, &domain.ApprovalTask{
				RuleID:     req.RuleID,
				ApproverID: approverID,
				Status:     domain.ApprovalTaskStatusPending,
				Sequence:   sequence,
				IsRequired: true,
			})
			sequence++
		}
	}

	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("creating approval request: %w", err)
	}

	if err := s.expenseService.UpdateStatus(ctx, orgID, expenseID, domain.ExpenseStatusPendingApproval); err != nil {
		return nil, fmt.Errorf("flagging expense pending approval: %w", err)
	}

	if err := s.repo.AppendHistory(ctx, &domain.ApprovalHistory{
		RequestID: request.ID,
		Action:    domain.ApprovalHistoryActionSubmitted,
		ActorID:   requesterID,
	}); err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}

	s.notifyAsync(ctx, s.taskNotifications(request))
	s.auditAsync(ctx, AuditKeySubmit, request)

	return request, nil
}

// Decide completes one approval task and re-evaluates the request
// outcome.
func (s *Service) Decide(ctx context.Context, orgID, taskID, actorID, decision, comment string) (*domain.ApprovalRequest, error) {
	if taskID == "" {
		return nil, ErrTaskIDEmptyParam
	}
	switch decision {
	case domain.ApprovalDecisionApproved, domain.ApprovalDecisionRejected, domain.ApprovalDecisionReturned:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	task, err := s.repo.GetTaskByID(ctx, orgID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsPending() {
		return nil, ErrTaskNotPending
	}
	if task.ApproverID != actorID {
		return nil, ErrActionForbidden
	}

	request, err := s.repo.GetRequestByID(ctx, orgID, task.RequestID)
	if err != nil {
		return nil, err
	}

	now := s.TimeNow()
	current := request.GetTask(taskID)
	if current == nil {
		return nil, ErrTaskNotFound
	}
	current.Complete(decision, comment, now)
	if err := s.repo.UpdateTask(ctx, current); err != nil {
		return nil, fmt.Errorf("completing task: %w", err)
	}

	if err := s.repo.AppendHistory(ctx, &domain.ApprovalHistory{
		RequestID: request.ID,
		Action:    historyActionForDecision(decision),
		ActorID:   actorID,
		Comment:   comment,
	}); err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}

	outcome := request.ResolveOutcome()
	if outcome != "" {
		if err := s.completeRequest(ctx, request, outcome); err != nil {
			return nil, err
		}
	}

	s.auditAsync(ctx, AuditKeyDecide, map[string]interface{}{
		"task_id":  taskID,
		"actor":    actorID,
		"decision": decision,
	})

	return request, nil
}

// BulkDecide applies a decision to each listed task, reporting a per-item
// outcome so callers can tell which items failed and why.
func (s *Service) BulkDecide(ctx context.Context, orgID string, taskIDs []string, actorID, decision, comment string) []*domain.BulkDecisionResult {
	results := make([]*domain.BulkDecisionResult, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		result := &domain.BulkDecisionResult{ID: taskID, Outcome: domain.BulkOutcomeSuccess}
		if _, err := s.Decide(ctx, orgID, taskID, actorID, decision, comment); err != nil {
			result.Error = err.Error()
			if errors.Is(err, ErrTaskNotPending) || errors.Is(err, ErrActionForbidden) {
				result.Outcome = domain.BulkOutcomeSkipped
			} else {
				result.Outcome = domain.BulkOutcomeFailed
			}
			s.logger.Warn(ctx, "bulk decision item failed", "task_id", taskID, "error", err)
		}
		results = append(results, result)
	}
	return results
}

// Cancel aborts a pending request and reverts the expense to draft.
func (s *Service) Cancel(ctx context.Context, orgID, requestID, actorID string) (*domain.ApprovalRequest, error) {
	if requestID == "" {
		return nil, ErrRequestIDEmptyParam
	}

	request, err := s.repo.GetRequestByID(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsPending() {
		return nil, ErrRequestNotPending
	}

	request.Cancel()
	if err := s.repo.UpdateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("cancelling request: %w", err)
	}

	if err := s.expenseService.UpdateStatus(ctx, orgID, request.ExpenseID, domain.ExpenseStatusDraft); err != nil {
		return nil, fmt.Errorf("reverting expense to draft: %w", err)
	}

	if err := s.repo.AppendHistory(ctx, &domain.ApprovalHistory{
		RequestID: request.ID,
		Action:    domain.ApprovalHistoryActionCancelled,
		ActorID:   actorID,
	}); err != nil {
		return nil, fmt.Errorf("appending history: %w", err)
	}

	s.auditAsync(ctx, AuditKeyCancel, map[string]interface{}{"request_id": requestID, "actor": actorID})

	return request, nil
}

func (s *Service) GetRequest(ctx context.Context, orgID, id string) (*domain.ApprovalRequest, error) {
	if id == "" {
		return nil, ErrRequestIDEmptyParam
	}
	return s.repo.GetRequestByID(ctx, orgID, id)
}

func (s *Service) FindRequests(ctx context.Context, filter *domain.ListApprovalRequestsFilter) ([]*domain.ApprovalRequest, error) {
	return s.repo.FindRequests(ctx, filter)
}

func (s *Service) FindTasks(ctx context.Context, filter *domain.ListApprovalTasksFilter) ([]*domain.ApprovalTask, error) {
	return s.repo.FindTasks(ctx, filter)
}

// ListPendingTasks returns the actor's open approval tasks.
func (s *Service) ListPendingTasks(ctx context.Context, orgID, approverID string) ([]*domain.ApprovalTask, error) {
	return s.repo.FindTasks(ctx, &domain.ListApprovalTasksFilter{
		OrganizationID: orgID,
		ApproverID:     approverID,
		Statuses:       []string{domain.ApprovalTaskStatusPending},
	})
}

func (s *Service) ListHistory(ctx context.Context, requestID string) ([]*domain.ApprovalHistory, error) {
	if requestID == "" {
		return nil, ErrRequestIDEmptyParam
	}
	return s.repo.ListHistory(ctx, requestID)
}

func (s *Service) GetStats(ctx context.Context, orgID string) (*domain.ApprovalStats, error) {
	return s.repo.GetStats(ctx, orgID)
}

func (s *Service) completeRequest(ctx context.Context, request *domain.ApprovalRequest, outcome string) error {
	request.Status = outcome

	expenseStatus := domain.ExpenseStatusApproved
	notificationType := domain.NotificationTypeApprovalApproved
	if outcome == domain.ApprovalRequestStatusRejected {
		expenseStatus = domain.ExpenseStatusRejected
		notificationType = domain.NotificationTypeApprovalRejected

		for _, t := range request.Tasks {
			if t.IsPending() {
				t.Skip()
				if err := s.repo.UpdateTask(ctx, t); err != nil {
					return fmt.Errorf("skipping remaining task %q: %w", t.ID, err)
				}
			}
		}
	}

	if err := s.repo.UpdateRequest(ctx, request); err != nil {
		return fmt.Errorf("completing request: %w", err)
	}
	if err := s.expenseService.UpdateStatus(ctx, request.OrganizationID, request.ExpenseID, expenseStatus); err != nil {
		return fmt.Errorf("updating expense status: %w", err)
	}

	s.notifyAsync(ctx, []domain.Notification{{
		User: request.RequesterID,
		Labels: map[string]string{
			"request_id": request.ID,
		},
		Message: domain.NotificationMessage{
			Type: notificationType,
			Variables: map[string]interface{}{
				"expense_id": request.ExpenseID,
				"request_id": request.ID,
			},
		},
	}})

	return nil
}

// resolveApprovers unions the requirement's explicit user ids with all
// active holders of any of the listed roles, deduplicated.
func (s *Service) resolveApprovers(ctx context.Context, orgID string, req *domain.ApprovalRequirement) ([]string, error) {
	approverIDs := append([]string{}, req.ApproverUserIDs...)

	if len(req.ApproverRoles) > 0 {
		users, err := s.userService.FindActiveByRoles(ctx, orgID, req.ApproverRoles)
		if err != nil {
			return nil, fmt.Errorf("resolving role approvers for rule %q: %w", req.RuleName, err)
		}
		for _, u := range users {
			approverIDs = append(approverIDs, u.ID)
		}
	}

	approverIDs = slices.UniqueStringSlice(slices.FilterEmptyStrings(approverIDs))
	if len(approverIDs) == 0 {
		return nil, fmt.Errorf("%w: rule %q", ErrNoApproversResolved, req.RuleName)
	}
	return approverIDs, nil
}

func (s *Service) taskNotifications(request *domain.ApprovalRequest) []domain.Notification {
	notifications := make([]domain.Notification, 0, len(request.Tasks))
	for _, t := range request.Tasks {
		notifications = append(notifications, domain.Notification{
			User: t.ApproverID,
			Labels: map[string]string{
				"request_id": request.ID,
				"task_id":    t.ID,
			},
			Message: domain.NotificationMessage{
				Type: domain.NotificationTypeApprovalRequested,
				Variables: map[string]interface{}{
					"expense_id": request.ExpenseID,
					"amount":     request.Amount,
					"currency":   request.Currency,
					"requester":  request.RequesterID,
				},
			},
		})
	}
	return notifications
}

func (s *Service) notifyAsync(ctx context.Context, notifications []domain.Notification) {
	if len(notifications) == 0 {
		return
	}
	go func() {
		ctx := context.WithoutCancel(ctx)
		if errs := s.notifier.Notify(ctx, notifications); errs != nil {
			for _, err := range errs {
				s.logger.Error(ctx, "failed to send notification", "error", err)
			}
		}
	}()
}

func (s *Service) auditAsync(ctx context.Context, key string, data interface{}) {
	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, key, data); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()
}

func historyActionForDecision(decision string) string {
	switch decision {
	case domain.ApprovalDecisionApproved:
		return domain.ApprovalHistoryActionApproved
	case domain.ApprovalDecisionRejected:
		return domain.ApprovalHistoryActionRejected
	default:
		return domain.ApprovalHistoryActionReturned
	}
}

// highestUrgency picks the most urgent requirement level for the request.
func highestUrgency(requirements []*domain.ApprovalRequirement) string {
	urgency := domain.UrgencyNormal
	for _, r := range requirements {
		if domain.UrgencyRank(r.Urgency) > domain.UrgencyRank(urgency) {
			urgency = r.Urgency
		}
	}
	return urgency
}

// earliestDue computes the request due date from the minimum escalation
// window across requirements. Requirements without an escalation window
// are ignored; nil means no deadline.
func earliestDue(now time.Time, requirements []*domain.ApprovalRequirement) *time.Time {
	var due *time.Time
	for _, r := range requirements {
		if r.EscalationHours <= 0 {
			continue
		}
		d := now.Add(time.Duration(r.EscalationHours) * time.Hour)
		if due == nil || d.Before(*due) {
			due = &d
		}
	}
	return due
}
