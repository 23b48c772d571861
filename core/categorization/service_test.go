package categorization_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chimbuka/mabuku/core/categorization"
	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/log"
)

type mockRuleRepository struct {
	mock.Mock
}

func (m *mockRuleRepository) Create(ctx context.Context, rule *domain.CategoryRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *mockRuleRepository) Find(ctx context.Context, filter *domain.ListCategoryRulesFilter) ([]*domain.CategoryRule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CategoryRule), args.Error(1)
}

func (m *mockRuleRepository) GetByID(ctx context.Context, orgID, id string) (*domain.CategoryRule, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryRule), args.Error(1)
}

func (m *mockRuleRepository) GetByName(ctx context.Context, orgID, name string) (*domain.CategoryRule, error) {
	args := m.Called(ctx, orgID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryRule), args.Error(1)
}

func (m *mockRuleRepository) Update(ctx context.Context, rule *domain.CategoryRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *mockRuleRepository) Delete(ctx context.Context, orgID, id string) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *mockRuleRepository) IncrementMatchCount(ctx context.Context, id string, matchedAt time.Time) error {
	return m.Called(ctx, id, matchedAt).Error(0)
}

type mockTransactionRepository struct {
	mock.Mock
}

func (m *mockTransactionRepository) GetByID(ctx context.Context, orgID, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *mockTransactionRepository) FindSimilar(ctx context.Context, txn *domain.Transaction, limit int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, txn, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *mockTransactionRepository) ListUncategorized(ctx context.Context, orgID string, limit int) ([]*domain.Transaction, error) {
	args := m.Called(ctx, orgID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *mockTransactionRepository) SetCategory(ctx context.Context, orgID, id, categoryID string) error {
	return m.Called(ctx, orgID, id, categoryID).Error(0)
}

type mockSuggestionRepository struct {
	mock.Mock
}

func (m *mockSuggestionRepository) ReplaceForTransaction(ctx context.Context, transactionID string, suggestions []*domain.CategorySuggestion) error {
	return m.Called(ctx, transactionID, suggestions).Error(0)
}

func (m *mockSuggestionRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.CategorySuggestion, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CategorySuggestion), args.Error(1)
}

func (m *mockSuggestionRepository) GetByID(ctx context.Context, orgID, id string) (*domain.CategorySuggestion, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategorySuggestion), args.Error(1)
}

func (m *mockSuggestionRepository) Update(ctx context.Context, suggestion *domain.CategorySuggestion) error {
	return m.Called(ctx, suggestion).Error(0)
}

func (m *mockSuggestionRepository) DeleteByTransaction(ctx context.Context, transactionID string) error {
	return m.Called(ctx, transactionID).Error(0)
}

func (m *mockSuggestionRepository) DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Log(ctx context.Context, action string, data interface{}) error {
	return m.Called(ctx, action, data).Error(0)
}

type serviceTestHelper struct {
	ruleRepo        *mockRuleRepository
	transactionRepo *mockTransactionRepository
	suggestionRepo  *mockSuggestionRepository

	service *categorization.Service
}

func newServiceTestHelper() *serviceTestHelper {
	h := &serviceTestHelper{
		ruleRepo:        new(mockRuleRepository),
		transactionRepo: new(mockTransactionRepository),
		suggestionRepo:  new(mockSuggestionRepository),
	}
	// Match counters and audit entries are recorded from goroutines the
	// tests do not wait on.
	h.ruleRepo.On("IncrementMatchCount", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	auditLogger := new(mockAuditLogger)
	auditLogger.On("Log", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	h.service = categorization.NewService(categorization.ServiceDeps{
		RuleRepository:        h.ruleRepo,
		TransactionRepository: h.transactionRepo,
		SuggestionRepository:  h.suggestionRepo,
		Validator:             validator.New(),
		Logger:                log.NewNoop(),
		AuditLogger:           auditLogger,
	})
	return h
}

const (
	testOrgID         = "org-1"
	testTransactionID = "txn-1"
)

func electricityTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:             testTransactionID,
		OrganizationID: testOrgID,
		Reference:      "REF-001",
		Description:    "ZESCO prepaid electricity",
		Counterparty:   "ZESCO Limited",
		Direction:      domain.TransactionDirectionOut,
		Amount:         35000,
		Currency:       "ZMW",
	}
}

func categorizedTransaction(categoryID string) *domain.Transaction {
	return &domain.Transaction{
		OrganizationID: testOrgID,
		Description:    "ZESCO prepaid electricity",
		CategoryID:     categoryID,
	}
}

func (h *serviceTestHelper) expectTransaction(txn *domain.Transaction) {
	h.transactionRepo.On("GetByID", mock.Anything, testOrgID, testTransactionID).Return(txn, nil).Once()
}

func (h *serviceTestHelper) expectRules(rules ...*domain.CategoryRule) {
	h.ruleRepo.On("Find", mock.Anything, &domain.ListCategoryRulesFilter{
		OrganizationID: testOrgID,
		ActiveOnly:     true,
	}).Return(rules, nil).Once()
}

func (h *serviceTestHelper) expectSimilar(transactions ...*domain.Transaction) {
	h.transactionRepo.On("FindSimilar", mock.Anything, mock.Anything, 10).Return(transactions, nil).Once()
}

func TestServiceCategorize(t *testing.T) {
	t.Run("should propagate transaction lookup failures", func(t *testing.T) {
		h := newServiceTestHelper()
		h.transactionRepo.On("GetByID", mock.Anything, testOrgID, testTransactionID).
			Return(nil, categorization.ErrTransactionNotFound).Once()

		_, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		assert.ErrorIs(t, err, categorization.ErrTransactionNotFound)
	})

	t.Run("should score keyword rules by the matched fraction", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:         "rule-1",
			CategoryID: "cat-utilities",
			Name:       "Utilities",
			Type:       domain.CategoryRuleTypeKeyword,
			Keyword:    &domain.KeywordCondition{Keywords: []string{"electricity", "water"}},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		sg := result.Suggestions[0]
		assert.Equal(t, "cat-utilities", sg.CategoryID)
		assert.Equal(t, "rule-1", sg.RuleID)
		assert.Equal(t, domain.SuggestionSourceRule, sg.Source)
		assert.Equal(t, float64(50), sg.Score)
		assert.Equal(t, domain.ConfidenceMedium, sg.Confidence)
		assert.Equal(t, sg, result.BestSuggestion)
		assert.False(t, result.IsAutoApplied)
	})

	t.Run("should floor confidence at the tier declared on the rule", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:         "rule-1",
			CategoryID: "cat-utilities",
			Name:       "Utilities",
			Type:       domain.CategoryRuleTypeKeyword,
			Confidence: domain.ConfidenceHigh,
			Keyword:    &domain.KeywordCondition{Keywords: []string{"electricity", "water"}},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		assert.Equal(t, float64(50), result.Suggestions[0].Score)
		assert.Equal(t, domain.ConfidenceHigh, result.Suggestions[0].Confidence)
	})

	t.Run("should drop the rule when an exclude keyword hits", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:         "rule-1",
			CategoryID: "cat-utilities",
			Name:       "Utilities",
			Type:       domain.CategoryRuleTypeKeyword,
			Keyword: &domain.KeywordCondition{
				Keywords:        []string{"electricity"},
				ExcludeKeywords: []string{"prepaid"},
			},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		assert.Empty(t, result.Suggestions)
		assert.Nil(t, result.BestSuggestion)
	})

	t.Run("should average sub-rule scores for combined and-rules", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:              "rule-1",
			CategoryID:      "cat-utilities",
			Name:            "Utility range",
			Type:            domain.CategoryRuleTypeCombined,
			CombineOperator: domain.CombineOperatorAnd,
			SubRules: []*domain.CategoryRule{
				{Type: domain.CategoryRuleTypeKeyword, Keyword: &domain.KeywordCondition{Keywords: []string{"zesco"}}},
				{Type: domain.CategoryRuleTypeAmountRange, AmountRange: &domain.AmountRangeCondition{Min: 10000, Max: 50000}},
			},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		// keyword 100 and amount range 80 average to 90
		assert.Equal(t, float64(90), result.Suggestions[0].Score)
		assert.Equal(t, domain.ConfidenceVeryHigh, result.Suggestions[0].Confidence)
	})

	t.Run("should fail combined and-rules when one sub-rule misses", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:              "rule-1",
			CategoryID:      "cat-utilities",
			Name:            "Utility range",
			Type:            domain.CategoryRuleTypeCombined,
			CombineOperator: domain.CombineOperatorAnd,
			SubRules: []*domain.CategoryRule{
				{Type: domain.CategoryRuleTypeKeyword, Keyword: &domain.KeywordCondition{Keywords: []string{"zesco"}}},
				{Type: domain.CategoryRuleTypeAmountRange, AmountRange: &domain.AmountRangeCondition{Min: 100000}},
			},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		assert.Empty(t, result.Suggestions)
	})

	t.Run("should take the best sub-rule score for combined or-rules", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:              "rule-1",
			CategoryID:      "cat-utilities",
			Name:            "Utility either",
			Type:            domain.CategoryRuleTypeCombined,
			CombineOperator: domain.CombineOperatorOr,
			SubRules: []*domain.CategoryRule{
				{Type: domain.CategoryRuleTypeKeyword, Keyword: &domain.KeywordCondition{Keywords: []string{"zesco"}}},
				{Type: domain.CategoryRuleTypeAmountRange, AmountRange: &domain.AmountRangeCondition{Min: 10000, Max: 50000}},
			},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		assert.Equal(t, float64(100), result.Suggestions[0].Score)
	})

	t.Run("should rank frequency counts into confidence tiers", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules()
		h.expectSimilar(
			categorizedTransaction("cat-1"),
			categorizedTransaction("cat-1"),
			categorizedTransaction("cat-1"),
			categorizedTransaction("cat-2"),
			categorizedTransaction("cat-2"),
			categorizedTransaction("cat-3"),
			categorizedTransaction(""),
		)
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		require.Len(t, result.Suggestions, 3)

		assert.Equal(t, "cat-1", result.Suggestions[0].CategoryID)
		assert.Equal(t, domain.ConfidenceHigh, result.Suggestions[0].Confidence)
		assert.Equal(t, float64(60), result.Suggestions[0].Score)

		assert.Equal(t, "cat-2", result.Suggestions[1].CategoryID)
		assert.Equal(t, domain.ConfidenceMedium, result.Suggestions[1].Confidence)
		assert.Equal(t, float64(40), result.Suggestions[1].Score)

		assert.Equal(t, "cat-3", result.Suggestions[2].CategoryID)
		assert.Equal(t, domain.ConfidenceLow, result.Suggestions[2].Confidence)
		assert.Equal(t, float64(20), result.Suggestions[2].Score)

		assert.Equal(t, domain.SuggestionSourceFrequency, result.Suggestions[0].Source)
	})

	t.Run("should keep the strongest suggestion when rule and frequency agree on a category", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:         "rule-1",
			CategoryID: "cat-utilities",
			Name:       "Utilities",
			Type:       domain.CategoryRuleTypeKeyword,
			Keyword:    &domain.KeywordCondition{Keywords: []string{"electricity", "water"}},
		})
		h.expectSimilar(
			categorizedTransaction("cat-utilities"),
			categorizedTransaction("cat-utilities"),
			categorizedTransaction("cat-utilities"),
		)
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		require.Len(t, result.Suggestions, 1)
		// frequency got 3 hits (high, 60) and beats the medium rule match
		assert.Equal(t, domain.SuggestionSourceFrequency, result.Suggestions[0].Source)
		assert.Equal(t, float64(60), result.Suggestions[0].Score)
	})

	t.Run("should keep at most five suggestions", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules()
		h.expectSimilar(
			categorizedTransaction("cat-1"),
			categorizedTransaction("cat-2"),
			categorizedTransaction("cat-3"),
			categorizedTransaction("cat-4"),
			categorizedTransaction("cat-5"),
			categorizedTransaction("cat-6"),
		)
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, false)

		require.NoError(t, err)
		assert.Len(t, result.Suggestions, 5)
	})

	t.Run("should not auto-apply below very high confidence", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:         "rule-1",
			CategoryID: "cat-utilities",
			Name:       "Utilities",
			Type:       domain.CategoryRuleTypeKeyword,
			Keyword:    &domain.KeywordCondition{Keywords: []string{"electricity", "water"}},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, true)

		require.NoError(t, err)
		assert.False(t, result.IsAutoApplied)
		h.transactionRepo.AssertNotCalled(t, "SetCategory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should auto-apply a very high confidence match", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.expectRules(&domain.CategoryRule{
			ID:         "rule-1",
			CategoryID: "cat-utilities",
			Name:       "Utilities",
			Type:       domain.CategoryRuleTypeKeyword,
			Keyword:    &domain.KeywordCondition{Keywords: []string{"zesco"}},
		})
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).
			Run(func(args mock.Arguments) {
				// the repository assigns ids on insert
				persisted := args.Get(2).([]*domain.CategorySuggestion)
				require.Len(t, persisted, 1)
				persisted[0].ID = "suggestion-1"
			}).
			Return(nil).Once()

		applied := &domain.CategorySuggestion{
			ID:             "suggestion-1",
			OrganizationID: testOrgID,
			TransactionID:  testTransactionID,
			CategoryID:     "cat-utilities",
		}
		h.suggestionRepo.On("GetByID", mock.Anything, testOrgID, "suggestion-1").Return(applied, nil).Once()
		h.transactionRepo.On("SetCategory", mock.Anything, testOrgID, testTransactionID, "cat-utilities").Return(nil).Once()
		h.suggestionRepo.On("ListByTransaction", mock.Anything, testTransactionID).
			Return([]*domain.CategorySuggestion{applied}, nil).Once()
		h.suggestionRepo.On("Update", mock.Anything, applied).Return(nil).Once()

		result, err := h.service.Categorize(context.Background(), testOrgID, testTransactionID, true)

		require.NoError(t, err)
		assert.True(t, result.IsAutoApplied)
		require.NotNil(t, result.BestSuggestion)
		assert.Equal(t, domain.ConfidenceVeryHigh, result.BestSuggestion.Confidence)
		require.NotNil(t, applied.Accepted)
		assert.True(t, *applied.Accepted)
	})
}

func TestServiceBulkCategorize(t *testing.T) {
	h := newServiceTestHelper()
	h.expectTransaction(electricityTransaction())
	h.expectRules()
	h.expectSimilar()
	h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()
	h.transactionRepo.On("GetByID", mock.Anything, testOrgID, "txn-missing").
		Return(nil, categorization.ErrTransactionNotFound).Once()

	results := h.service.BulkCategorize(context.Background(), testOrgID, []string{testTransactionID, "txn-missing"}, false)

	require.Len(t, results, 2)
	assert.Equal(t, testTransactionID, results[0].ID)
	assert.Equal(t, domain.BulkOutcomeSuccess, results[0].Outcome)
	assert.Equal(t, "txn-missing", results[1].ID)
	assert.Equal(t, domain.BulkOutcomeFailed, results[1].Outcome)
	assert.Equal(t, categorization.ErrTransactionNotFound.Error(), results[1].Error)
}

func TestServiceAutoCategorize(t *testing.T) {
	t.Run("should default the limit to 100", func(t *testing.T) {
		h := newServiceTestHelper()
		h.transactionRepo.On("ListUncategorized", mock.Anything, testOrgID, 100).
			Return([]*domain.Transaction{}, nil).Once()

		results, err := h.service.AutoCategorize(context.Background(), testOrgID, 0)

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("should categorize every uncategorized transaction", func(t *testing.T) {
		h := newServiceTestHelper()
		h.transactionRepo.On("ListUncategorized", mock.Anything, testOrgID, 10).
			Return([]*domain.Transaction{electricityTransaction()}, nil).Once()
		h.expectTransaction(electricityTransaction())
		h.expectRules()
		h.expectSimilar()
		h.suggestionRepo.On("ReplaceForTransaction", mock.Anything, testTransactionID, mock.Anything).Return(nil).Once()

		results, err := h.service.AutoCategorize(context.Background(), testOrgID, 10)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, domain.BulkOutcomeSuccess, results[0].Outcome)
	})
}

func TestServiceApply(t *testing.T) {
	t.Run("should propagate missing suggestions", func(t *testing.T) {
		h := newServiceTestHelper()
		h.suggestionRepo.On("GetByID", mock.Anything, testOrgID, "suggestion-1").
			Return(nil, categorization.ErrSuggestionNotFound).Once()

		err := h.service.Apply(context.Background(), testOrgID, "suggestion-1")

		assert.ErrorIs(t, err, categorization.ErrSuggestionNotFound)
	})

	t.Run("should link the category and settle sibling suggestions", func(t *testing.T) {
		h := newServiceTestHelper()
		chosen := &domain.CategorySuggestion{
			ID:            "suggestion-1",
			TransactionID: testTransactionID,
			CategoryID:    "cat-utilities",
		}
		sibling := &domain.CategorySuggestion{
			ID:            "suggestion-2",
			TransactionID: testTransactionID,
			CategoryID:    "cat-fuel",
		}
		h.suggestionRepo.On("GetByID", mock.Anything, testOrgID, "suggestion-1").Return(chosen, nil).Once()
		h.transactionRepo.On("SetCategory", mock.Anything, testOrgID, testTransactionID, "cat-utilities").Return(nil).Once()
		h.suggestionRepo.On("ListByTransaction", mock.Anything, testTransactionID).
			Return([]*domain.CategorySuggestion{chosen, sibling}, nil).Once()
		h.suggestionRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Twice()

		err := h.service.Apply(context.Background(), testOrgID, "suggestion-1")

		require.NoError(t, err)
		require.NotNil(t, chosen.Accepted)
		assert.True(t, *chosen.Accepted)
		require.NotNil(t, sibling.Accepted)
		assert.False(t, *sibling.Accepted)
	})
}

func TestServiceBulkApply(t *testing.T) {
	h := newServiceTestHelper()

	chosen := &domain.CategorySuggestion{
		ID:            "suggestion-1",
		TransactionID: testTransactionID,
		CategoryID:    "cat-utilities",
	}
	h.suggestionRepo.On("GetByID", mock.Anything, testOrgID, "suggestion-1").Return(chosen, nil).Once()
	h.transactionRepo.On("SetCategory", mock.Anything, testOrgID, testTransactionID, "cat-utilities").Return(nil).Once()
	h.suggestionRepo.On("ListByTransaction", mock.Anything, testTransactionID).
		Return([]*domain.CategorySuggestion{chosen}, nil).Once()
	h.suggestionRepo.On("Update", mock.Anything, chosen).Return(nil).Once()

	h.suggestionRepo.On("GetByID", mock.Anything, testOrgID, "suggestion-missing").
		Return(nil, categorization.ErrSuggestionNotFound).Once()

	results := h.service.BulkApply(context.Background(), testOrgID, []string{"suggestion-1", "suggestion-missing"})

	require.Len(t, results, 2)
	assert.Equal(t, domain.BulkOutcomeSuccess, results[0].Outcome)
	assert.Equal(t, domain.BulkOutcomeSkipped, results[1].Outcome)
	assert.Equal(t, categorization.ErrSuggestionNotFound.Error(), results[1].Error)
}

func TestServiceCleanupRejected(t *testing.T) {
	h := newServiceTestHelper()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	h.service.TimeNow = func() time.Time { return now }
	h.suggestionRepo.On("DeleteRejectedBefore", mock.Anything, now.Add(-30*24*time.Hour)).
		Return(int64(4), nil).Once()

	removed, err := h.service.CleanupRejected(context.Background(), 30*24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}

func TestServiceRemoveSuggestions(t *testing.T) {
	t.Run("should require an existing transaction", func(t *testing.T) {
		h := newServiceTestHelper()
		h.transactionRepo.On("GetByID", mock.Anything, testOrgID, testTransactionID).
			Return(nil, categorization.ErrTransactionNotFound).Once()

		err := h.service.RemoveSuggestions(context.Background(), testOrgID, testTransactionID)

		assert.ErrorIs(t, err, categorization.ErrTransactionNotFound)
	})

	t.Run("should drop all suggestions for the transaction", func(t *testing.T) {
		h := newServiceTestHelper()
		h.expectTransaction(electricityTransaction())
		h.suggestionRepo.On("DeleteByTransaction", mock.Anything, testTransactionID).Return(nil).Once()

		err := h.service.RemoveSuggestions(context.Background(), testOrgID, testTransactionID)

		assert.NoError(t, err)
	})
}
