package categorization

import "errors"

var (
	ErrRuleNotFound           = errors.New("categorization rule not found")
	ErrRuleIDEmptyParam       = errors.New("categorization rule id is required")
	ErrRuleDuplicateName      = errors.New("a categorization rule with the same name already exists")
	ErrInvalidRule            = errors.New("invalid categorization rule")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrSuggestionNotFound     = errors.New("category suggestion not found")
	ErrTransactionCategorized = errors.New("transaction is already linked to a category")
)
