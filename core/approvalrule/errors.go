package approvalrule

import "errors"

var (
	ErrRuleNotFound       = errors.New("approval rule not found")
	ErrRuleIDEmptyParam   = errors.New("approval rule id is required")
	ErrRuleDuplicateName  = errors.New("an approval rule with the same name already exists")
	ErrInvalidRule        = errors.New("invalid approval rule")
	ErrInvalidRuleContext = errors.New("invalid rule evaluation context")
)
