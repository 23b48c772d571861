package approvalrule_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chimbuka/mabuku/core/approvalrule"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/log"
)

type mockRuleRepository struct {
	mock.Mock
}

func (m *mockRuleRepository) Create(ctx context.Context, rule *domain.ApprovalRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *mockRuleRepository) Find(ctx context.Context, filter *domain.ListApprovalRulesFilter) ([]*domain.ApprovalRule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ApprovalRule), args.Error(1)
}

func (m *mockRuleRepository) GetByID(ctx context.Context, orgID, id string) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRule), args.Error(1)
}

func (m *mockRuleRepository) GetByName(ctx context.Context, orgID, name string) (*domain.ApprovalRule, error) {
	args := m.Called(ctx, orgID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRule), args.Error(1)
}

func (m *mockRuleRepository) Update(ctx context.Context, rule *domain.ApprovalRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *mockRuleRepository) Delete(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *mockRuleRepository) IncrementMatchCount(ctx context.Context, id string, matchedAt time.Time) error {
	return m.Called(ctx, id, matchedAt).Error(0)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Log(ctx context.Context, action string, data interface{}) error {
	return m.Called(ctx, action, data).Error(0)
}

func newTestService(t *testing.T) (*approvalrule.Service, *mockRuleRepository) {
	t.Helper()
	repo := new(mockRuleRepository)
	auditLogger := new(mockAuditLogger)
	auditLogger.On("Log", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	service := approvalrule.NewService(approvalrule.ServiceDeps{
		Repository:  repo,
		Validator:   validator.New(),
		Logger:      log.NewNoop(),
		AuditLogger: auditLogger,
	})
	return service, repo
}

func expenseFacts(amount float64) map[string]interface{} {
	return map[string]interface{}{
		"amount":         amount,
		"currency":       "ZMW",
		"category":       "travel",
		"submitter_role": domain.RoleStaff,
		"vendor":         "Shoprite Lusaka",
		"payment_method": "mobile_money",
	}
}

func TestServiceEvaluate(t *testing.T) {
	orgID := "org-1"

	t.Run("should require organization id", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.Evaluate(context.Background(), "", expenseFacts(100))

		assert.ErrorIs(t, err, approvalrule.ErrInvalidRuleContext)
	})

	t.Run("should return no requirements when no rule matches", func(t *testing.T) {
		service, repo := newTestService(t)
		repo.On("Find", mock.Anything, mock.Anything).Return(approvalrule.DefaultRules(orgID), nil).Once()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(500))

		require.NoError(t, err)
		assert.Empty(t, requirements)
	})

	t.Run("should match only the rules whose thresholds pass", func(t *testing.T) {
		service, repo := newTestService(t)
		rules := approvalrule.DefaultRules(orgID)
		rules[0].ID = "rule-manager"
		rules[1].ID = "rule-admin"
		repo.On("Find", mock.Anything, mock.Anything).Return(rules, nil).Once()
		repo.On("IncrementMatchCount", mock.Anything, "rule-manager", mock.Anything).Return(nil).Maybe()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(1500))

		require.NoError(t, err)
		require.Len(t, requirements, 1)
		assert.Equal(t, "rule-manager", requirements[0].RuleID)
		assert.Equal(t, []string{domain.RoleManager, domain.RoleAdmin}, requirements[0].ApproverRoles)
		assert.Equal(t, domain.UrgencyNormal, requirements[0].Urgency)
	})

	t.Run("should order requirements by rule priority descending", func(t *testing.T) {
		service, repo := newTestService(t)
		rules := approvalrule.DefaultRules(orgID)
		rules[0].ID = "rule-manager"
		rules[1].ID = "rule-admin"
		repo.On("Find", mock.Anything, mock.Anything).Return(rules, nil).Once()
		repo.On("IncrementMatchCount", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(6000))

		require.NoError(t, err)
		require.Len(t, requirements, 2)
		assert.Equal(t, "rule-admin", requirements[0].RuleID)
		assert.Equal(t, "rule-manager", requirements[1].RuleID)
	})

	t.Run("should be deterministic across evaluations", func(t *testing.T) {
		service, repo := newTestService(t)
		rules := approvalrule.DefaultRules(orgID)
		rules[0].ID = "rule-manager"
		rules[1].ID = "rule-admin"
		repo.On("Find", mock.Anything, mock.Anything).Return(rules, nil)
		repo.On("IncrementMatchCount", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

		first, err := service.Evaluate(context.Background(), orgID, expenseFacts(6000))
		require.NoError(t, err)
		second, err := service.Evaluate(context.Background(), orgID, expenseFacts(6000))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("should AND-combine conditions within a rule", func(t *testing.T) {
		service, repo := newTestService(t)
		rule := &domain.ApprovalRule{
			ID:             "rule-1",
			OrganizationID: orgID,
			Name:           "High travel spend",
			Priority:       5,
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "amount", Operator: domain.ConditionOperatorGt, Value: float64(1000)},
				{Field: "category", Operator: domain.ConditionOperatorEq, Value: "fuel"},
			},
			Actions: []domain.RuleAction{
				{Type: domain.RuleActionRequireApproval, ApproverRoles: []string{domain.RoleManager}},
			},
		}
		repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.ApprovalRule{rule}, nil).Once()

		// amount passes, category does not
		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(2000))

		require.NoError(t, err)
		assert.Empty(t, requirements)
	})

	t.Run("should support in and not_in operators", func(t *testing.T) {
		service, repo := newTestService(t)
		rule := &domain.ApprovalRule{
			ID:             "rule-1",
			OrganizationID: orgID,
			Name:           "Staff and manager submissions",
			Priority:       1,
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "submitter_role", Operator: domain.ConditionOperatorIn, Value: []interface{}{"staff", "manager"}},
				{Field: "payment_method", Operator: domain.ConditionOperatorNotIn, Value: []interface{}{"cash"}},
			},
			Actions: []domain.RuleAction{
				{Type: domain.RuleActionRequireApproval, ApproverRoles: []string{domain.RoleAdmin}},
			},
		}
		repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.ApprovalRule{rule}, nil).Once()
		repo.On("IncrementMatchCount", mock.Anything, "rule-1", mock.Anything).Return(nil).Maybe()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(100))

		require.NoError(t, err)
		assert.Len(t, requirements, 1)
	})

	t.Run("should treat unknown operators as non-matching", func(t *testing.T) {
		service, repo := newTestService(t)
		rule := &domain.ApprovalRule{
			ID:             "rule-1",
			OrganizationID: orgID,
			Name:           "Rule with bogus operator",
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "amount", Operator: "matches_regex", Value: ".*"},
			},
			Actions: []domain.RuleAction{
				{Type: domain.RuleActionRequireApproval, ApproverRoles: []string{domain.RoleAdmin}},
			},
		}
		repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.ApprovalRule{rule}, nil).Once()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(100))

		require.NoError(t, err)
		assert.Empty(t, requirements)
	})

	t.Run("should treat unknown fields as non-matching", func(t *testing.T) {
		service, repo := newTestService(t)
		rule := &domain.ApprovalRule{
			ID:             "rule-1",
			OrganizationID: orgID,
			Name:           "Rule with unknown field",
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "cost_center", Operator: domain.ConditionOperatorEq, Value: "ops"},
			},
			Actions: []domain.RuleAction{
				{Type: domain.RuleActionRequireApproval, ApproverRoles: []string{domain.RoleAdmin}},
			},
		}
		repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.ApprovalRule{rule}, nil).Once()

		requirements, err := service.Evaluate(context.Background(), orgID, map[string]interface{}{"amount": float64(100)})

		require.NoError(t, err)
		assert.Empty(t, requirements)
	})

	t.Run("should AND-combine the expression guard with conditions", func(t *testing.T) {
		service, repo := newTestService(t)
		rule := &domain.ApprovalRule{
			ID:             "rule-1",
			OrganizationID: orgID,
			Name:           "Weekend spend",
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "amount", Operator: domain.ConditionOperatorGt, Value: float64(10)},
			},
			Expression: `expense.currency == "USD"`,
			Actions: []domain.RuleAction{
				{Type: domain.RuleActionRequireApproval, ApproverRoles: []string{domain.RoleAdmin}},
			},
		}
		repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.ApprovalRule{rule}, nil).Once()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(100))

		require.NoError(t, err)
		assert.Empty(t, requirements)
	})

	t.Run("should default requirement urgency to normal", func(t *testing.T) {
		service, repo := newTestService(t)
		rule := &domain.ApprovalRule{
			ID:             "rule-1",
			OrganizationID: orgID,
			Name:           "No urgency set",
			IsActive:       true,
			Conditions: []domain.RuleCondition{
				{Field: "amount", Operator: domain.ConditionOperatorGte, Value: float64(0)},
			},
			Actions: []domain.RuleAction{
				{Type: domain.RuleActionRequireApproval, ApproverUserIDs: []string{"user-1"}},
			},
		}
		repo.On("Find", mock.Anything, mock.Anything).Return([]*domain.ApprovalRule{rule}, nil).Once()
		repo.On("IncrementMatchCount", mock.Anything, "rule-1", mock.Anything).Return(nil).Maybe()

		requirements, err := service.Evaluate(context.Background(), orgID, expenseFacts(100))

		require.NoError(t, err)
		require.Len(t, requirements, 1)
		assert.Equal(t, domain.UrgencyNormal, requirements[0].Urgency)
	})
}

func TestServiceCreate(t *testing.T) {
	newRule := func() *domain.ApprovalRule {
		rules := approvalrule.DefaultRules("org-1")
		return rules[0]
	}

	t.Run("should create a valid rule", func(t *testing.T) {
		service, repo := newTestService(t)
		repo.On("GetByName", mock.Anything, "org-1", mock.Anything).Return(nil, approvalrule.ErrRuleNotFound).Once()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		err := service.Create(context.Background(), newRule())

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("should reject duplicate rule names", func(t *testing.T) {
		service, repo := newTestService(t)
		existing := newRule()
		existing.ID = "rule-existing"
		repo.On("GetByName", mock.Anything, "org-1", existing.Name).Return(existing, nil).Once()

		err := service.Create(context.Background(), newRule())

		assert.ErrorIs(t, err, approvalrule.ErrRuleDuplicateName)
	})

	t.Run("should reject a rule with an invalid condition", func(t *testing.T) {
		service, _ := newTestService(t)
		rule := newRule()
		rule.Conditions = []domain.RuleCondition{
			{Field: "amount", Operator: "between", Value: float64(10)},
		}

		err := service.Create(context.Background(), rule)

		assert.ErrorIs(t, err, approvalrule.ErrInvalidRule)
	})

	t.Run("should reject in conditions without an array value", func(t *testing.T) {
		service, _ := newTestService(t)
		rule := newRule()
		rule.Conditions = []domain.RuleCondition{
			{Field: "currency", Operator: domain.ConditionOperatorIn, Value: "ZMW"},
		}

		err := service.Create(context.Background(), rule)

		assert.ErrorIs(t, err, approvalrule.ErrInvalidRule)
	})

	t.Run("should reject require_approval actions without approvers", func(t *testing.T) {
		service, _ := newTestService(t)
		rule := newRule()
		rule.Actions = []domain.RuleAction{
			{Type: domain.RuleActionRequireApproval},
		}

		err := service.Create(context.Background(), rule)

		assert.ErrorIs(t, err, approvalrule.ErrInvalidRule)
	})
}
