package categorization

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/chimbuka/mabuku/domain"
)

// MatchResult is the outcome of evaluating one rule against a
// transaction.
type MatchResult struct {
	IsMatch bool
	Score   float64
	Reason  string
}

// evaluateRule dispatches on the rule type. Rules are validated at write
// time; anything malformed that still reaches evaluation is treated as
// non-matching.
func (s *Service) evaluateRule(ctx context.Context, rule *domain.CategoryRule, txn *domain.Transaction) MatchResult {
	switch rule.Type {
	case domain.CategoryRuleTypeKeyword:
		return evaluateKeyword(rule.Keyword, txn)
	case domain.CategoryRuleTypeAmountRange:
		return evaluateAmountRange(rule.AmountRange, txn)
	case domain.CategoryRuleTypeCounterparty:
		return evaluateCounterparty(rule.Counterparty, txn)
	case domain.CategoryRuleTypeDescription:
		return s.evaluateDescription(ctx, rule, txn)
	case domain.CategoryRuleTypeCombined:
		return s.evaluateCombined(ctx, rule, txn)
	default:
		s.logger.Warn(ctx, "unknown categorization rule type, treating as non-matching", "rule", rule.Name, "type", rule.Type)
		return MatchResult{}
	}
}

// evaluateKeyword does case-insensitive substring search over the
// transaction text. An exclude keyword hit forces no-match. Score is the
// matched fraction of configured keywords scaled to 100.
func evaluateKeyword(c *domain.KeywordCondition, txn *domain.Transaction) MatchResult {
	if c == nil || len(c.Keywords) == 0 {
		return MatchResult{}
	}

	text := strings.ToLower(txn.SearchText())

	for _, exclude := range c.ExcludeKeywords {
		if exclude != "" && strings.Contains(text, strings.ToLower(exclude)) {
			return MatchResult{Reason: fmt.Sprintf("excluded by keyword %q", exclude)}
		}
	}

	var matched []string
	for _, keyword := range c.Keywords {
		if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	if len(matched) == 0 {
		return MatchResult{}
	}

	score := float64(len(matched)) / float64(len(c.Keywords)) * 100
	if score > 100 {
		score = 100
	}
	return MatchResult{
		IsMatch: true,
		Score:   score,
		Reason:  fmt.Sprintf("matched keywords: %s", strings.Join(matched, ", ")),
	}
}

// evaluateAmountRange checks an inclusive min/max range; fixed score 80.
func evaluateAmountRange(c *domain.AmountRangeCondition, txn *domain.Transaction) MatchResult {
	if c == nil {
		return MatchResult{}
	}
	if txn.Amount < c.Min {
		return MatchResult{}
	}
	if c.Max != 0 && txn.Amount > c.Max {
		return MatchResult{}
	}
	return MatchResult{
		IsMatch: true,
		Score:   80,
		Reason:  fmt.Sprintf("amount %d within range [%d, %d]", txn.Amount, c.Min, c.Max),
	}
}

// evaluateCounterparty is a case-insensitive substring match on the
// counterparty; fixed score 90.
func evaluateCounterparty(c *domain.PatternCondition, txn *domain.Transaction) MatchResult {
	if c == nil || c.Pattern == "" {
		return MatchResult{}
	}
	if !strings.Contains(strings.ToLower(txn.Counterparty), strings.ToLower(c.Pattern)) {
		return MatchResult{}
	}
	return MatchResult{
		IsMatch: true,
		Score:   90,
		Reason:  fmt.Sprintf("counterparty matches %q", c.Pattern),
	}
}

// evaluateDescription is a regex match on the description; fixed score
// 85. Patterns are validated at write time; an invalid pattern that
// slipped through is skipped.
func (s *Service) evaluateDescription(ctx context.Context, rule *domain.CategoryRule, txn *domain.Transaction) MatchResult {
	c := rule.Description
	if c == nil || c.Pattern == "" {
		return MatchResult{}
	}
	re, err := regexp.Compile("(?i)" + c.Pattern)
	if err != nil {
		s.logger.Warn(ctx, "skipping rule with invalid description pattern", "rule", rule.Name, "error", err)
		return MatchResult{}
	}
	if !re.MatchString(txn.Description) {
		return MatchResult{}
	}
	return MatchResult{
		IsMatch: true,
		Score:   85,
		Reason:  fmt.Sprintf("description matches pattern %q", c.Pattern),
	}
}

// evaluateCombined combines sub-rule results: AND requires every sub-rule
// to match and scores the mean; OR returns the best-scoring sub-result.
func (s *Service) evaluateCombined(ctx context.Context, rule *domain.CategoryRule, txn *domain.Transaction) MatchResult {
	if len(rule.SubRules) == 0 {
		return MatchResult{}
	}

	if rule.CombineOperator == domain.CombineOperatorAnd {
		var total float64
		var reasons []string
		for _, sub := range rule.SubRules {
			result := s.evaluateRule(ctx, sub, txn)
			if !result.IsMatch {
				return MatchResult{}
			}
			total += result.Score
			reasons = append(reasons, result.Reason)
		}
		return MatchResult{
			IsMatch: true,
			Score:   total / float64(len(rule.SubRules)),
			Reason:  strings.Join(reasons, "; "),
		}
	}

	best := MatchResult{}
	for _, sub := range rule.SubRules {
		result := s.evaluateRule(ctx, sub, txn)
		if result.IsMatch && (!best.IsMatch || result.Score > best.Score) {
			best = result
		}
	}
	return best
}

// resolveConfidence maps a match to its confidence tier: the
// score-derived tier, floored at the tier declared on the rule.
func resolveConfidence(rule *domain.CategoryRule, score float64) string {
	tier := domain.ConfidenceForScore(score)
	if rule.Confidence != "" && domain.ConfidenceRank(rule.Confidence) > domain.ConfidenceRank(tier) {
		tier = rule.Confidence
	}
	return tier
}
