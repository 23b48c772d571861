package categorization

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/pkg/audit"
	"github.com/chimbuka/mabuku/pkg/log"
)

const (
	AuditKeyRuleCreate = "categorization_rule.create"
	AuditKeyRuleUpdate = "categorization_rule.update"
	AuditKeyRuleDelete = "categorization_rule.delete"
	AuditKeyApply      = "categorization.apply"

	// maxSuggestionsKept caps how many suggestions are persisted per
	// transaction on each evaluation.
	maxSuggestionsKept = 5

	// similarTransactionLimit caps the sample used by the frequency
	// heuristic.
	similarTransactionLimit = 10
)

type ruleRepository interface {
	Create(context.Context, *domain.CategoryRule) error
	Find(context.Context, *domain.ListCategoryRulesFilter) ([]*domain.CategoryRule, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.CategoryRule, error)
	GetByName(ctx context.Context, orgID, name string) (*domain.CategoryRule, error)
	Update(context.Context, *domain.CategoryRule) error
	Delete(ctx context.Context, orgID, id string) error
	IncrementMatchCount(ctx context.Context, id string, matchedAt time.Time) error
}

type transactionRepository interface {
	GetByID(ctx context.Context, orgID, id string) (*domain.Transaction, error)
	FindSimilar(ctx context.Context, txn *domain.Transaction, limit int) ([]*domain.Transaction, error)
	ListUncategorized(ctx context.Context, orgID string, limit int) ([]*domain.Transaction, error)
	SetCategory(ctx context.Context, orgID, id, categoryID string) error
}

type suggestionRepository interface {
	ReplaceForTransaction(ctx context.Context, transactionID string, suggestions []*domain.CategorySuggestion) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*domain.CategorySuggestion, error)
	GetByID(ctx context.Context, orgID, id string) (*domain.CategorySuggestion, error)
	Update(context.Context, *domain.CategorySuggestion) error
	DeleteByTransaction(ctx context.Context, transactionID string) error
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Result is the outcome of categorizing one transaction.
type Result struct {
	Suggestions    []*domain.CategorySuggestion `json:"suggestions"`
	BestSuggestion *domain.CategorySuggestion   `json:"best_suggestion,omitempty"`
	IsAutoApplied  bool                         `json:"is_auto_applied"`
}

type ServiceDeps struct {
	RuleRepository        ruleRepository
	TransactionRepository transactionRepository
	SuggestionRepository  suggestionRepository

	Validator   *validator.Validate
	Logger      log.Logger
	AuditLogger audit.AuditLogger
}

// Service produces ranked category suggestions for transactions by
// combining rule matches with a frequency heuristic over similar
// transactions.
type Service struct {
	ruleRepo        ruleRepository
	transactionRepo transactionRepository
	suggestionRepo  suggestionRepository

	validator   *validator.Validate
	logger      log.Logger
	auditLogger audit.AuditLogger

	TimeNow func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{
		deps.RuleRepository,
		deps.TransactionRepository,
		deps.SuggestionRepository,
		deps.Validator,
		deps.Logger,
		deps.AuditLogger,
		time.Now,
	}
}

// Categorize evaluates all active rules plus the frequency heuristic for
// the transaction, persists the top suggestions, and auto-applies the
// best one when autoApply is set and its confidence is very_high.
func (s *Service) Categorize(ctx context.Context, orgID, transactionID string, autoApply bool) (*Result, error) {
	txn, err := s.transactionRepo.GetByID(ctx, orgID, transactionID)
	if err != nil {
		return nil, err
	}

	suggestions := s.ruleSuggestions(ctx, txn)
	suggestions = append(suggestions, s.frequencySuggestions(ctx, txn)...)
	suggestions = dedupeByCategory(suggestions)

	sortSuggestions(suggestions)
	if len(suggestions) > maxSuggestionsKept {
		suggestions = suggestions[:maxSuggestionsKept]
	}

	if err := s.suggestionRepo.ReplaceForTransaction(ctx, transactionID, suggestions); err != nil {
		return nil, fmt.Errorf("persisting suggestions: %w", err)
	}

	result := &Result{Suggestions: suggestions}
	if len(suggestions) > 0 {
		result.BestSuggestion = suggestions[0]
	}

	if autoApply && result.BestSuggestion != nil &&
		result.BestSuggestion.Confidence == domain.ConfidenceVeryHigh {
		if err := s.Apply(ctx, orgID, result.BestSuggestion.ID); err != nil {
			return nil, fmt.Errorf("auto-applying suggestion: %w", err)
		}
		result.IsAutoApplied = true
	}

	return result, nil
}

// BulkCategorize runs Categorize over the listed transactions, reporting
// per-item outcomes.
func (s *Service) BulkCategorize(ctx context.Context, orgID string, transactionIDs []string, autoApply bool) []*domain.BulkDecisionResult {
	results := make([]*domain.BulkDecisionResult, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		result := &domain.BulkDecisionResult{ID: id, Outcome: domain.BulkOutcomeSuccess}
		if _, err := s.Categorize(ctx, orgID, id, autoApply); err != nil {
			result.Outcome = domain.BulkOutcomeFailed
			result.Error = err.Error()
			s.logger.Warn(ctx, "bulk categorization item failed", "transaction_id", id, "error", err)
		}
		results = append(results, result)
	}
	return results
}

// AutoCategorize suggests and auto-applies across uncategorized
// transactions of the organization, up to limit.
func (s *Service) AutoCategorize(ctx context.Context, orgID string, limit int) ([]*domain.BulkDecisionResult, error) {
	if limit <= 0 {
		limit = 100
	}
	transactions, err := s.transactionRepo.ListUncategorized(ctx, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing uncategorized transactions: %w", err)
	}

	ids := make([]string, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}
	return s.BulkCategorize(ctx, orgID, ids, true), nil
}

// Apply links the suggestion's category to its transaction and marks the
// suggestion accepted; sibling suggestions are marked not accepted.
func (s *Service) Apply(ctx context.Context, orgID, suggestionID string) error {
	suggestion, err := s.suggestionRepo.GetByID(ctx, orgID, suggestionID)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.SetCategory(ctx, orgID, suggestion.TransactionID, suggestion.CategoryID); err != nil {
		return fmt.Errorf("linking category to transaction: %w", err)
	}

	siblings, err := s.suggestionRepo.ListByTransaction(ctx, suggestion.TransactionID)
	if err != nil {
		return err
	}
	for _, sib := range siblings {
		accepted := sib.ID == suggestion.ID
		sib.Accepted = &accepted
		if err := s.suggestionRepo.Update(ctx, sib); err != nil {
			return fmt.Errorf("updating suggestion %q: %w", sib.ID, err)
		}
	}

	go func() {
		ctx := context.WithoutCancel(ctx)
		if err := s.auditLogger.Log(ctx, AuditKeyApply, map[string]interface{}{
			"suggestion_id":  suggestion.ID,
			"transaction_id": suggestion.TransactionID,
			"category_id":    suggestion.CategoryID,
		}); err != nil {
			s.logger.Error(ctx, "failed to record audit log", "error", err)
		}
	}()

	return nil
}

// BulkApply applies each listed suggestion, reporting per-item outcomes.
func (s *Service) BulkApply(ctx context.Context, orgID string, suggestionIDs []string) []*domain.BulkDecisionResult {
	results := make([]*domain.BulkDecisionResult, 0, len(suggestionIDs))
	for _, id := range suggestionIDs {
		result := &domain.BulkDecisionResult{ID: id, Outcome: domain.BulkOutcomeSuccess}
		if err := s.Apply(ctx, orgID, id); err != nil {
			result.Outcome = domain.BulkOutcomeFailed
			result.Error = err.Error()
			if errors.Is(err, ErrSuggestionNotFound) {
				result.Outcome = domain.BulkOutcomeSkipped
			}
		}
		results = append(results, result)
	}
	return results
}

// CleanupRejected purges rejected suggestions untouched for longer than
// the retention window, across all organizations.
func (s *Service) CleanupRejected(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.TimeNow().Add(-retention)
	removed, err := s.suggestionRepo.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging rejected suggestions: %w", err)
	}
	return removed, nil
}

// RemoveSuggestions drops all persisted suggestions for a transaction.
func (s *Service) RemoveSuggestions(ctx context.Context, orgID, transactionID string) error {
	if _, err := s.transactionRepo.GetByID(ctx, orgID, transactionID); err != nil {
		return err
	}
	return s.suggestionRepo.DeleteByTransaction(ctx, transactionID)
}

func (s *Service) ListSuggestions(ctx context.Context, orgID, transactionID string) ([]*domain.CategorySuggestion, error) {
	if _, err := s.transactionRepo.GetByID(ctx, orgID, transactionID); err != nil {
		return nil, err
	}
	return s.suggestionRepo.ListByTransaction(ctx, transactionID)
}

func (s *Service) ruleSuggestions(ctx context.Context, txn *domain.Transaction) []*domain.CategorySuggestion {
	rules, err := s.ruleRepo.Find(ctx, &domain.ListCategoryRulesFilter{
		OrganizationID: txn.OrganizationID,
		ActiveOnly:     true,
	})
	if err != nil {
		s.logger.Error(ctx, "failed to load categorization rules", "error", err)
		return nil
	}

	var suggestions []*domain.CategorySuggestion
	for _, rule := range rules {
		result := s.evaluateRule(ctx, rule, txn)
		if !result.IsMatch {
			continue
		}

		suggestions = append(suggestions, &domain.CategorySuggestion{
			OrganizationID: txn.OrganizationID,
			TransactionID:  txn.ID,
			CategoryID:     rule.CategoryID,
			RuleID:         rule.ID,
			Source:         domain.SuggestionSourceRule,
			Confidence:     resolveConfidence(rule, result.Score),
			Score:          result.Score,
			Reason:         result.Reason,
		})

		ruleID := rule.ID
		matchedAt := s.TimeNow()
		go func() {
			ctx := context.WithoutCancel(ctx)
			if err := s.ruleRepo.IncrementMatchCount(ctx, ruleID, matchedAt); err != nil {
				s.logger.Error(ctx, "failed to update rule match counter", "rule_id", ruleID, "error", err)
			}
		}()
	}
	return suggestions
}

// frequencySuggestions tallies the categories of up to ten similar,
// already-categorized transactions (same reference or shared description
// prefix) and emits one suggestion per distinct category. Pure counting,
// no learning involved.
func (s *Service) frequencySuggestions(ctx context.Context, txn *domain.Transaction) []*domain.CategorySuggestion {
	similar, err := s.transactionRepo.FindSimilar(ctx, txn, similarTransactionLimit)
	if err != nil {
		s.logger.Error(ctx, "failed to find similar transactions", "transaction_id", txn.ID, "error", err)
		return nil
	}

	counts := map[string]int{}
	for _, t := range similar {
		if t.CategoryID != "" {
			counts[t.CategoryID]++
		}
	}

	var suggestions []*domain.CategorySuggestion
	for categoryID, count := range counts {
		confidence := domain.ConfidenceLow
		if count >= 3 {
			confidence = domain.ConfidenceHigh
		} else if count >= 2 {
			confidence = domain.ConfidenceMedium
		}
		suggestions = append(suggestions, &domain.CategorySuggestion{
			OrganizationID: txn.OrganizationID,
			TransactionID:  txn.ID,
			CategoryID:     categoryID,
			Source:         domain.SuggestionSourceFrequency,
			Confidence:     confidence,
			Score:          float64(count) * 20,
			Reason:         fmt.Sprintf("%d similar transactions share this category", count),
		})
	}
	return suggestions
}

// sortSuggestions orders by confidence tier descending, then score
// descending.
func sortSuggestions(suggestions []*domain.CategorySuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		ri, rj := domain.ConfidenceRank(suggestions[i].Confidence), domain.ConfidenceRank(suggestions[j].Confidence)
		if ri != rj {
			return ri > rj
		}
		return suggestions[i].Score > suggestions[j].Score
	})
}

// dedupeByCategory keeps the strongest suggestion per category when the
// rule and frequency paths both propose it.
func dedupeByCategory(suggestions []*domain.CategorySuggestion) []*domain.CategorySuggestion {
	sortSuggestions(suggestions)
	seen := map[string]bool{}
	result := make([]*domain.CategorySuggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		if seen[sg.CategoryID] {
			continue
		}
		seen[sg.CategoryID] = true
		result = append(result, sg)
	}
	return result
}
