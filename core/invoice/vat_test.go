package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chimbuka/mabuku/core/invoice"
	"github.com/chimbuka/mabuku/domain"
)

func TestComputeLine(t *testing.T) {
	testCases := []struct {
		name              string
		line              *domain.InvoiceLine
		expectedNetAmount int64
		expectedVATAmount int64
	}{
		{
			name: "standard rate",
			line: &domain.InvoiceLine{
				Quantity:  2,
				UnitPrice: 50000, // K500.00
				VATClass:  domain.VATClassStandard,
			},
			expectedNetAmount: 100000,
			expectedVATAmount: 16000, // 16%
		},
		{
			name: "zero rated",
			line: &domain.InvoiceLine{
				Quantity:  3,
				UnitPrice: 10000,
				VATClass:  domain.VATClassZero,
			},
			expectedNetAmount: 30000,
			expectedVATAmount: 0,
		},
		{
			name: "exempt",
			line: &domain.InvoiceLine{
				Quantity:  1,
				UnitPrice: 25050,
				VATClass:  domain.VATClassExempt,
			},
			expectedNetAmount: 25050,
			expectedVATAmount: 0,
		},
		{
			name: "10% discount before VAT",
			line: &domain.InvoiceLine{
				Quantity:    1,
				UnitPrice:   100000,
				DiscountBps: 1000,
				VATClass:    domain.VATClassStandard,
			},
			expectedNetAmount: 90000,
			expectedVATAmount: 14400,
		},
		{
			name: "rounding half up on discount",
			line: &domain.InvoiceLine{
				Quantity:    1,
				UnitPrice:   333,
				DiscountBps: 1500, // 49.95 rounds to 50
				VATClass:    domain.VATClassStandard,
			},
			expectedNetAmount: 283,
			expectedVATAmount: 45, // 45.28 rounds down
		},
		{
			name: "rounding half up on VAT",
			line: &domain.InvoiceLine{
				Quantity:  1,
				UnitPrice: 97, // VAT 15.52 rounds to 16
				VATClass:  domain.VATClassStandard,
			},
			expectedNetAmount: 97,
			expectedVATAmount: 16,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			invoice.ComputeLine(tc.line)
			assert.Equal(t, tc.expectedNetAmount, tc.line.NetAmount)
			assert.Equal(t, tc.expectedVATAmount, tc.line.VATAmount)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	inv := &domain.Invoice{
		Lines: []*domain.InvoiceLine{
			{Quantity: 2, UnitPrice: 50000, VATClass: domain.VATClassStandard},
			{Quantity: 1, UnitPrice: 20000, VATClass: domain.VATClassZero},
			{Quantity: 4, UnitPrice: 2500, VATClass: domain.VATClassExempt},
		},
	}

	invoice.ComputeTotals(inv)

	assert.Equal(t, int64(130000), inv.Subtotal)
	assert.Equal(t, int64(16000), inv.VATTotal)
	assert.Equal(t, int64(146000), inv.Total)
}

func TestComputeTotalsIsStable(t *testing.T) {
	inv := &domain.Invoice{
		Lines: []*domain.InvoiceLine{
			{Quantity: 3, UnitPrice: 333, DiscountBps: 750, VATClass: domain.VATClassStandard},
		},
	}

	invoice.ComputeTotals(inv)
	first := *inv
	invoice.ComputeTotals(inv)

	assert.Equal(t, first.Subtotal, inv.Subtotal)
	assert.Equal(t, first.VATTotal, inv.VATTotal)
	assert.Equal(t, first.Total, inv.Total)
}
