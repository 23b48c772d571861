package approval_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chimbuka/mabuku/core/approval"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/log"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateRequest(ctx context.Context, request *domain.ApprovalRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *mockRepository) GetRequestByID(ctx context.Context, orgID, id string) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *mockRepository) GetRequestByExpenseID(ctx context.Context, orgID, expenseID string) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, orgID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *mockRepository) FindRequests(ctx context.Context, filter *domain.ListApprovalRequestsFilter) ([]*domain.ApprovalRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalRequest), args.Error(1)
}

func (m *mockRepository) UpdateRequest(ctx context.Context, request *domain.ApprovalRequest) error {
	return m.Called(ctx, request).Error(0)
}

func (m *mockRepository) GetTaskByID(ctx context.Context, orgID, id string) (*domain.ApprovalTask, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalTask), args.Error(1)
}

func (m *mockRepository) FindTasks(ctx context.Context, filter *domain.ListApprovalTasksFilter) ([]*domain.ApprovalTask, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalTask), args.Error(1)
}

func (m *mockRepository) UpdateTask(ctx context.Context, task *domain.ApprovalTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockRepository) AppendHistory(ctx context.Context, history *domain.ApprovalHistory) error {
	return m.Called(ctx, history).Error(0)
}

func (m *mockRepository) ListHistory(ctx context.Context, requestID string) ([]*domain.ApprovalHistory, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalHistory), args.Error(1)
}

func (m *mockRepository) GetStats(ctx context.Context, orgID string) (*domain.ApprovalStats, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalStats), args.Error(1)
}

type mockRulesEngine struct {
	mock.Mock
}

func (m *mockRulesEngine) Evaluate(ctx context.Context, orgID string, facts map[string]interface{}) ([]*domain.ApprovalRequirement, error) {
	args := m.Called(ctx, orgID, facts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalRequirement), args.Error(1)
}

type mockExpenseService struct {
	mock.Mock
}

func (m *mockExpenseService) GetByID(ctx context.Context, orgID, id string) (*domain.Expense, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *mockExpenseService) UpdateStatus(ctx context.Context, orgID, id, status string) error {
	return m.Called(ctx, orgID, id, status).Error(0)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) FindActiveByRoles(ctx context.Context, orgID string, roles []string) ([]*domain.User, error) {
	args := m.Called(ctx, orgID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, notifications []domain.Notification) []error {
	args := m.Called(ctx, notifications)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]error)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Log(ctx context.Context, action string, data interface{}) error {
	return m.Called(ctx, action, data).Error(0)
}

type serviceTestHelper struct {
	repo           *mockRepository
	rulesEngine    *mockRulesEngine
	expenseService *mockExpenseService
	userService    *mockUserService
	notifier       *mockNotifier

	service *approval.Service
}

func newServiceTestHelper() *serviceTestHelper {
	h := &serviceTestHelper{
		repo:           new(mockRepository),
		rulesEngine:    new(mockRulesEngine),
		expenseService: new(mockExpenseService),
		userService:    new(mockUserService),
		notifier:       new(mockNotifier),
	}
	auditLogger := new(mockAuditLogger)
	auditLogger.On("Log", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	h.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	h.service = approval.NewService(approval.ServiceDeps{
		Repository:     h.repo,
		RulesEngine:    h.rulesEngine,
		ExpenseService: h.expenseService,
		UserService:    h.userService,
		Notifier:       h.notifier,
		Validator:      validator.New(),
		Logger:         log.NewNoop(),
		AuditLogger:    auditLogger,
	})
	return h
}

const (
	testOrgID     = "org-1"
	testExpenseID = "expense-1"
)

func draftExpense() *domain.Expense {
	return &domain.Expense{
		ID:             testExpenseID,
		OrganizationID: testOrgID,
		SubmitterID:    "user-1",
		SubmitterRole:  domain.RoleStaff,
		Status:         domain.ExpenseStatusDraft,
		Amount:         150000,
		Currency:       "ZMW",
	}
}

func TestServiceSubmit(t *testing.T) {
	t.Run("should reject non-draft expenses", func(t *testing.T) {
		h := newServiceTestHelper()
		exp := draftExpense()
		exp.Status = domain.ExpenseStatusApproved
		h.expenseService.On("GetByID", mock.Anything, testOrgID, testExpenseID).Return(exp, nil).Once()

		_, err := h.service.Submit(context.Background(), testOrgID, testExpenseID, "user-1")

		assert.ErrorIs(t, err, approval.ErrExpenseNotDraft)
	})

	t.Run("should reject a second submission for the same expense", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expenseService.On("GetByID", mock.Anything, testOrgID, testExpenseID).Return(draftExpense(), nil).Once()
		h.repo.On("GetRequestByExpenseID", mock.Anything, testOrgID, testExpenseID).
			Return(&domain.ApprovalRequest{ID: "request-1"}, nil).Once()

		_, err := h.service.Submit(context.Background(), testOrgID, testExpenseID, "user-1")

		assert.ErrorIs(t, err, approval.ErrAlreadySubmitted)
	})

	t.Run("should auto-approve when no rule matches", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expenseService.On("GetByID", mock.Anything, testOrgID, testExpenseID).Return(draftExpense(), nil).Once()
		h.repo.On("GetRequestByExpenseID", mock.Anything, testOrgID, testExpenseID).
			Return(nil, approval.ErrRequestNotFound).Once()
		h.rulesEngine.On("Evaluate", mock.Anything, testOrgID, mock.Anything).
			Return([]*domain.ApprovalRequirement{}, nil).Once()
		h.expenseService.On("UpdateStatus", mock.Anything, testOrgID, testExpenseID, domain.ExpenseStatusApproved).
			Return(nil).Once()

		request, err := h.service.Submit(context.Background(), testOrgID, testExpenseID, "user-1")

		require.NoError(t, err)
		assert.Nil(t, request)
		h.expenseService.AssertExpectations(t)
	})

	t.Run("should open a pending request with one task per resolved approver", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expenseService.On("GetByID", mock.Anything, testOrgID, testExpenseID).Return(draftExpense(), nil).Once()
		h.repo.On("GetRequestByExpenseID", mock.Anything, testOrgID, testExpenseID).
			Return(nil, approval.ErrRequestNotFound).Once()
		h.rulesEngine.On("Evaluate", mock.Anything, testOrgID, mock.Anything).
			Return([]*domain.ApprovalRequirement{
				{
					RuleID:        "rule-1",
					RuleName:      "Manager approval above K1,000",
					RulePriority:  10,
					ApproverRoles: []string{domain.RoleManager},
					Urgency:       domain.UrgencyNormal,
				},
			}, nil).Once()
		h.userService.On("FindActiveByRoles", mock.Anything, testOrgID, []string{domain.RoleManager}).
			Return([]*domain.User{
				{ID: "manager-1"},
				{ID: "manager-2"},
			}, nil).Once()
		h.repo.On("CreateRequest", mock.Anything, mock.AnythingOfType("*domain.ApprovalRequest")).Return(nil).Once()
		h.expenseService.On("UpdateStatus", mock.Anything, testOrgID, testExpenseID, domain.ExpenseStatusPendingApproval).
			Return(nil).Once()
		h.repo.On("AppendHistory", mock.Anything, mock.AnythingOfType("*domain.ApprovalHistory")).Return(nil).Once()

		request, err := h.service.Submit(context.Background(), testOrgID, testExpenseID, "user-1")

		require.NoError(t, err)
		require.NotNil(t, request)
		assert.Equal(t, domain.ApprovalRequestStatusPending, request.Status)
		assert.Equal(t, int64(150000), request.Amount)
		require.Len(t, request.Tasks, 2)
		assert.Equal(t, "manager-1", request.Tasks[0].ApproverID)
		assert.Equal(t, "manager-2", request.Tasks[1].ApproverID)
		assert.Equal(t, 0, request.Tasks[0].Sequence)
		assert.Equal(t, 1, request.Tasks[1].Sequence)
		h.repo.AssertExpectations(t)
	})

	t.Run("should deduplicate approvers resolved by both id and role", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expenseService.On("GetByID", mock.Anything, testOrgID, testExpenseID).Return(draftExpense(), nil).Once()
		h.repo.On("GetRequestByExpenseID", mock.Anything, testOrgID, testExpenseID).
			Return(nil, approval.ErrRequestNotFound).Once()
		h.rulesEngine.On("Evaluate", mock.Anything, testOrgID, mock.Anything).
			Return([]*domain.ApprovalRequirement{
				{
					RuleID:          "rule-1",
					RuleName:        "Manager approval",
					ApproverUserIDs: []string{"manager-1"},
					ApproverRoles:   []string{domain.RoleManager},
				},
			}, nil).Once()
		h.userService.On("FindActiveByRoles", mock.Anything, testOrgID, []string{domain.RoleManager}).
			Return([]*domain.User{{ID: "manager-1"}}, nil).Once()
		h.repo.On("CreateRequest", mock.Anything, mock.Anything).Return(nil).Once()
		h.expenseService.On("UpdateStatus", mock.Anything, testOrgID, testExpenseID, domain.ExpenseStatusPendingApproval).
			Return(nil).Once()
		h.repo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil).Once()

		request, err := h.service.Submit(context.Background(), testOrgID, testExpenseID, "user-1")

		require.NoError(t, err)
		require.NotNil(t, request)
		assert.Len(t, request.Tasks, 1)
	})

	t.Run("should fail when a requirement resolves no approvers", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expenseService.On("GetByID", mock.Anything, testOrgID, testExpenseID).Return(draftExpense(), nil).Once()
		h.repo.On("GetRequestByExpenseID", mock.Anything, testOrgID, testExpenseID).
			Return(nil, approval.ErrRequestNotFound).Once()
		h.rulesEngine.On("Evaluate", mock.Anything, testOrgID, mock.Anything).
			Return([]*domain.ApprovalRequirement{
				{RuleID: "rule-1", RuleName: "Manager approval", ApproverRoles: []string{domain.RoleManager}},
			}, nil).Once()
		h.userService.On("FindActiveByRoles", mock.Anything, testOrgID, []string{domain.RoleManager}).
			Return([]*domain.User{}, nil).Once()

		_, err := h.service.Submit(context.Background(), testOrgID, testExpenseID, "user-1")

		assert.ErrorIs(t, err, approval.ErrNoApproversResolved)
	})
}

func pendingRequest() *domain.ApprovalRequest {
	return &domain.ApprovalRequest{
		ID:             "request-1",
		OrganizationID: testOrgID,
		ExpenseID:      testExpenseID,
		RequesterID:    "user-1",
		Status:         domain.ApprovalRequestStatusPending,
		Tasks: []*domain.ApprovalTask{
			{
				ID:         "task-1",
				RequestID:  "request-1",
				ApproverID: "manager-1",
				Status:     domain.ApprovalTaskStatusPending,
				Sequence:   0,
				IsRequired: true,
			},
			{
				ID:         "task-2",
				RequestID:  "request-1",
				ApproverID: "manager-2",
				Status:     domain.ApprovalTaskStatusPending,
				Sequence:   1,
				IsRequired: true,
			},
		},
	}
}

func TestServiceDecide(t *testing.T) {
	t.Run("should reject unknown decisions", func(t *testing.T) {
		h := newServiceTestHelper()

		_, err := h.service.Decide(context.Background(), testOrgID, "task-1", "manager-1", "maybe", "")

		assert.ErrorIs(t, err, approval.ErrInvalidDecision)
	})

	t.Run("should forbid deciding someone else's task", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-1").Return(request.Tasks[0], nil).Once()

		_, err := h.service.Decide(context.Background(), testOrgID, "task-1", "intruder", domain.ApprovalDecisionApproved, "")

		assert.ErrorIs(t, err, approval.ErrActionForbidden)
	})

	t.Run("should reject deciding a completed task again", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		request.Tasks[0].Status = domain.ApprovalTaskStatusCompleted
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-1").Return(request.Tasks[0], nil).Once()

		_, err := h.service.Decide(context.Background(), testOrgID, "task-1", "manager-1", domain.ApprovalDecisionApproved, "")

		assert.ErrorIs(t, err, approval.ErrTaskNotPending)
	})

	t.Run("should keep the request pending while required tasks remain", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-1").Return(request.Tasks[0], nil).Once()
		h.repo.On("GetRequestByID", mock.Anything, testOrgID, "request-1").Return(request, nil).Once()
		h.repo.On("UpdateTask", mock.Anything, request.Tasks[0]).Return(nil).Once()
		h.repo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil).Once()

		got, err := h.service.Decide(context.Background(), testOrgID, "task-1", "manager-1", domain.ApprovalDecisionApproved, "lgtm")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRequestStatusPending, got.Status)
		assert.Equal(t, domain.ApprovalTaskStatusCompleted, got.Tasks[0].Status)
		assert.Equal(t, "lgtm", got.Tasks[0].Comment)
		h.repo.AssertExpectations(t)
	})

	t.Run("should approve the request when the last required task approves", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		request.Tasks[0].Status = domain.ApprovalTaskStatusCompleted
		request.Tasks[0].Decision = domain.ApprovalDecisionApproved
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-2").Return(request.Tasks[1], nil).Once()
		h.repo.On("GetRequestByID", mock.Anything, testOrgID, "request-1").Return(request, nil).Once()
		h.repo.On("UpdateTask", mock.Anything, request.Tasks[1]).Return(nil).Once()
		h.repo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil).Once()
		h.repo.On("UpdateRequest", mock.Anything, request).Return(nil).Once()
		h.expenseService.On("UpdateStatus", mock.Anything, testOrgID, testExpenseID, domain.ExpenseStatusApproved).
			Return(nil).Once()

		got, err := h.service.Decide(context.Background(), testOrgID, "task-2", "manager-2", domain.ApprovalDecisionApproved, "")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRequestStatusApproved, got.Status)
		h.repo.AssertExpectations(t)
		h.expenseService.AssertExpectations(t)
	})

	t.Run("should reject the request on the first rejection and skip open tasks", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-1").Return(request.Tasks[0], nil).Once()
		h.repo.On("GetRequestByID", mock.Anything, testOrgID, "request-1").Return(request, nil).Once()
		h.repo.On("UpdateTask", mock.Anything, mock.Anything).Return(nil)
		h.repo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil).Once()
		h.repo.On("UpdateRequest", mock.Anything, request).Return(nil).Once()
		h.expenseService.On("UpdateStatus", mock.Anything, testOrgID, testExpenseID, domain.ExpenseStatusRejected).
			Return(nil).Once()

		got, err := h.service.Decide(context.Background(), testOrgID, "task-1", "manager-1", domain.ApprovalDecisionRejected, "not budgeted")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRequestStatusRejected, got.Status)
		assert.Equal(t, domain.ApprovalTaskStatusSkipped, got.Tasks[1].Status)
		h.expenseService.AssertExpectations(t)
	})
}

func TestServiceBulkDecide(t *testing.T) {
	t.Run("should report a per-task outcome instead of failing the batch", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()

		// task-1 decides fine
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-1").Return(request.Tasks[0], nil).Once()
		h.repo.On("GetRequestByID", mock.Anything, testOrgID, "request-1").Return(request, nil).Once()
		h.repo.On("UpdateTask", mock.Anything, request.Tasks[0]).Return(nil).Once()
		h.repo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil).Once()

		// task-2 belongs to a different approver
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-2").Return(request.Tasks[1], nil).Once()

		// task-3 does not exist
		h.repo.On("GetTaskByID", mock.Anything, testOrgID, "task-3").Return(nil, approval.ErrTaskNotFound).Once()

		results := h.service.BulkDecide(context.Background(), testOrgID,
			[]string{"task-1", "task-2", "task-3"}, "manager-1", domain.ApprovalDecisionApproved, "")

		require.Len(t, results, 3)
		assert.Equal(t, domain.BulkOutcomeSuccess, results[0].Outcome)
		assert.Equal(t, domain.BulkOutcomeSkipped, results[1].Outcome)
		assert.NotEmpty(t, results[1].Error)
		assert.Equal(t, domain.BulkOutcomeFailed, results[2].Outcome)
		assert.NotEmpty(t, results[2].Error)
	})
}

func TestServiceCancel(t *testing.T) {
	t.Run("should only cancel pending requests", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		request.Status = domain.ApprovalRequestStatusApproved
		h.repo.On("GetRequestByID", mock.Anything, testOrgID, "request-1").Return(request, nil).Once()

		_, err := h.service.Cancel(context.Background(), testOrgID, "request-1", "user-1")

		assert.ErrorIs(t, err, approval.ErrRequestNotPending)
	})

	t.Run("should cancel the request and revert the expense to draft", func(t *testing.T) {
		h := newServiceTestHelper()
		request := pendingRequest()
		h.repo.On("GetRequestByID", mock.Anything, testOrgID, "request-1").Return(request, nil).Once()
		h.repo.On("UpdateRequest", mock.Anything, request).Return(nil).Once()
		h.expenseService.On("UpdateStatus", mock.Anything, testOrgID, testExpenseID, domain.ExpenseStatusDraft).
			Return(nil).Once()
		h.repo.On("AppendHistory", mock.Anything, mock.Anything).Return(nil).Once()

		got, err := h.service.Cancel(context.Background(), testOrgID, "request-1", "user-1")

		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalRequestStatusCancelled, got.Status)
		h.repo.AssertExpectations(t)
		h.expenseService.AssertExpectations(t)
	})
}
