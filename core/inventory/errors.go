package inventory

import "errors"

var (
	ErrItemNotFound       = errors.New("inventory item not found")
	ErrItemIDEmptyParam   = errors.New("inventory item id is required")
	ErrDuplicateSKU       = errors.New("an item with the same SKU already exists")
	ErrInvalidBarcode     = errors.New("barcode failed EAN checksum validation")
	ErrMovementNotFound   = errors.New("stock movement not found")
	ErrInvalidMovement    = errors.New("invalid stock movement")
	ErrInsufficientStock  = errors.New("movement would take quantity on hand below zero")
	ErrMovementNotPending = errors.New("stock movement has already been processed")
)
