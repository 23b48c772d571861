package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	CategoryRuleTypeKeyword      = "keyword"
	CategoryRuleTypeAmountRange  = "amount_range"
	CategoryRuleTypeCounterparty = "counterparty"
	CategoryRuleTypeDescription  = "description"
	CategoryRuleTypeCombined     = "combined"
)

const (
	CombineOperatorAnd = "and"
	CombineOperatorOr  = "or"
)

const (
	ConfidenceLow      = "low"
	ConfidenceMedium   = "medium"
	ConfidenceHigh     = "high"
	ConfidenceVeryHigh = "very_high"
)

var confidenceRank = map[string]int{
	ConfidenceLow:      0,
	ConfidenceMedium:   1,
	ConfidenceHigh:     2,
	ConfidenceVeryHigh: 3,
}

// ConfidenceRank returns the ordinal weight of a confidence tier,
// defaulting unknown values to low.
func ConfidenceRank(tier string) int {
	return confidenceRank[tier]
}

// ConfidenceForScore maps a 0-100 match score to a confidence tier.
func ConfidenceForScore(score float64) string {
	switch {
	case score >= 90:
		return ConfidenceVeryHigh
	case score >= 70:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

var (
	ErrInvalidCategoryRule = errors.New("invalid categorization rule")
)

// KeywordCondition matches case-insensitive substrings over the
// transaction's description and counterparty. Any exclude keyword hit
// forces no-match.
type KeywordCondition struct {
	Keywords        []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
	ExcludeKeywords []string `json:"exclude_keywords,omitempty" yaml:"exclude_keywords,omitempty" mapstructure:"exclude_keywords"`
}

// AmountRangeCondition is an inclusive minor-unit amount range; a zero
// Max means unbounded above.
type AmountRangeCondition struct {
	Min int64 `json:"min" yaml:"min" mapstructure:"min"`
	Max int64 `json:"max" yaml:"max" mapstructure:"max"`
}

type PatternCondition struct {
	Pattern string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`
}

// CategoryRule assigns transactions to a category. Exactly one condition
// set is populated, matching the rule type; combined rules nest sub-rules
// under an and/or operator.
type CategoryRule struct {
	ID             string `json:"id" yaml:"id"`
	OrganizationID string `json:"organization_id" yaml:"organization_id"`
	CategoryID     string `json:"category_id" yaml:"category_id" validate:"required"`
	Name           string `json:"name" yaml:"name" validate:"required"`
	Type           string `json:"type" yaml:"type" validate:"required,oneof=keyword amount_range counterparty description combined"`
	IsActive       bool   `json:"is_active" yaml:"is_active"`
	Priority       int    `json:"priority" yaml:"priority"`

	// Confidence is the tier declared on the rule. The resolved tier of a
	// match is the higher of this and the score-derived tier.
	Confidence string `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	Keyword         *KeywordCondition     `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	AmountRange     *AmountRangeCondition `json:"amount_range,omitempty" yaml:"amount_range,omitempty"`
	Counterparty    *PatternCondition     `json:"counterparty,omitempty" yaml:"counterparty,omitempty"`
	Description     *PatternCondition     `json:"description,omitempty" yaml:"description,omitempty"`
	CombineOperator string                `json:"combine_operator,omitempty" yaml:"combine_operator,omitempty"`
	SubRules        []*CategoryRule       `json:"sub_rules,omitempty" yaml:"sub_rules,omitempty"`

	MatchCount    int        `json:"match_count" yaml:"match_count"`
	LastMatchedAt *time.Time `json:"last_matched_at,omitempty" yaml:"last_matched_at,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (r *CategoryRule) Validate() error {
	switch r.Type {
	case CategoryRuleTypeKeyword:
		if r.Keyword == nil || len(r.Keyword.Keywords) == 0 {
			return fmt.Errorf("%w: keyword rule needs at least one keyword", ErrInvalidCategoryRule)
		}
	case CategoryRuleTypeAmountRange:
		if r.AmountRange == nil {
			return fmt.Errorf("%w: amount_range rule needs a range", ErrInvalidCategoryRule)
		}
		if r.AmountRange.Max != 0 && r.AmountRange.Max < r.AmountRange.Min {
			return fmt.Errorf("%w: amount range max is below min", ErrInvalidCategoryRule)
		}
	case CategoryRuleTypeCounterparty:
		if r.Counterparty == nil || r.Counterparty.Pattern == "" {
			return fmt.Errorf("%w: counterparty rule needs a pattern", ErrInvalidCategoryRule)
		}
	case CategoryRuleTypeDescription:
		if r.Description == nil || r.Description.Pattern == "" {
			return fmt.Errorf("%w: description rule needs a pattern", ErrInvalidCategoryRule)
		}
		if _, err := regexp.Compile(r.Description.Pattern); err != nil {
			return fmt.Errorf("%w: invalid description pattern: %v", ErrInvalidCategoryRule, err)
		}
	case CategoryRuleTypeCombined:
		if r.CombineOperator != CombineOperatorAnd && r.CombineOperator != CombineOperatorOr {
			return fmt.Errorf("%w: combined rule needs an and/or operator", ErrInvalidCategoryRule)
		}
		if len(r.SubRules) == 0 {
			return fmt.Errorf("%w: combined rule needs sub-rules", ErrInvalidCategoryRule)
		}
		for i, sub := range r.SubRules {
			if sub.Type == CategoryRuleTypeCombined {
				return fmt.Errorf("%w: combined rules cannot nest further", ErrInvalidCategoryRule)
			}
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("sub_rules[%d]: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategoryRule, r.Type)
	}
	if r.Confidence != "" {
		if _, ok := confidenceRank[r.Confidence]; !ok {
			return fmt.Errorf("%w: unknown confidence %q", ErrInvalidCategoryRule, r.Confidence)
		}
	}
	return nil
}

const (
	SuggestionSourceRule      = "rule"
	SuggestionSourceFrequency = "frequency"
)

// CategorySuggestion is a persisted, ranked category candidate for one
// transaction. Recreated on each re-evaluation; only the top five are
// kept.
type CategorySuggestion struct {
	ID             string  `json:"id" yaml:"id"`
	OrganizationID string  `json:"organization_id" yaml:"organization_id"`
	TransactionID  string  `json:"transaction_id" yaml:"transaction_id"`
	CategoryID     string  `json:"category_id" yaml:"category_id"`
	RuleID         string  `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	Source         string  `json:"source" yaml:"source"`
	Confidence     string  `json:"confidence" yaml:"confidence"`
	Score          float64 `json:"score" yaml:"score"`
	Reason         string  `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Accepted is nil while the suggestion is pending user action.
	Accepted *bool `json:"accepted,omitempty" yaml:"accepted,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type ListCategoryRulesFilter struct {
	OrganizationID string `mapstructure:"organization_id" validate:"required"`
	CategoryID     string `mapstructure:"category_id" validate:"omitempty"`
	ActiveOnly     bool   `mapstructure:"active_only" validate:"omitempty"`
	Size           int    `mapstructure:"size" validate:"omitempty"`
	Offset         int    `mapstructure:"offset" validate:"omitempty"`
}
