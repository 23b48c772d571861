package expense

import "errors"

var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrExpenseIDEmptyParam = errors.New("expense id is required")
	ErrInvalidStatusChange = errors.New("invalid expense status transition")
	ErrExpenseNotEditable  = errors.New("only draft expenses can be modified")
)
