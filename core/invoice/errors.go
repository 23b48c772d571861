package invoice

import "errors"

var (
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrInvoiceIDEmptyParam = errors.New("invoice id is required")
	ErrInvoiceNotDraft     = errors.New("only draft invoices can be modified or issued")
	ErrInvoiceNotIssued    = errors.New("only issued invoices can be paid or voided")
	ErrInvalidInvoice      = errors.New("invalid invoice")
	ErrAlreadySubmitted    = errors.New("invoice has already been submitted to ZRA")
)
