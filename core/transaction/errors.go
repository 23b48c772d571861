package transaction

import "errors"

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionIDEmpty   = errors.New("transaction id is required")
	ErrAlreadyLinked        = errors.New("transaction is already linked to a category")
	ErrCategoryIDEmptyParam = errors.New("category id is required")
)
