package zra

import (
	"context"
	"errors"

	"github.com/chimbuka/mabuku/domain"
)

var ErrDisabled = errors.New("ZRA integration is not configured")

// Disabled stands in when no ZRA endpoint is configured. Submissions
// fail with ErrDisabled; classification lookups fail too, which makes
// callers fall back to the standard rate.
type Disabled struct{}

func (Disabled) SubmitInvoice(_ context.Context, _ *domain.Invoice) (string, error) {
	return "", ErrDisabled
}

func (Disabled) ClassifyItem(_ context.Context, _ string) (string, error) {
	return "", ErrDisabled
}
