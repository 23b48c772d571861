package invoice

import (
	"github.com/chimbuka/mabuku/domain"
)

// bpsDenominator converts basis points to a fraction.
const bpsDenominator = 10000

// ComputeLine fills the computed amounts of a line. All arithmetic is in
// integer minor units with half-up rounding so totals are stable across
// re-computation.
func ComputeLine(line *domain.InvoiceLine) {
	gross := line.Quantity * line.UnitPrice
	discount := roundDiv(gross*line.DiscountBps, bpsDenominator)
	net := gross - discount

	var vat int64
	if line.VATClass == domain.VATClassStandard {
		vat = roundDiv(net*domain.StandardVATRateBps, bpsDenominator)
	}

	line.NetAmount = net
	line.VATAmount = vat
}

// ComputeTotals recomputes every line and the invoice totals.
func ComputeTotals(inv *domain.Invoice) {
	var subtotal, vatTotal int64
	for _, line := range inv.Lines {
		ComputeLine(line)
		subtotal += line.NetAmount
		vatTotal += line.VATAmount
	}
	inv.Subtotal = subtotal
	inv.VATTotal = vatTotal
	inv.Total = subtotal + vatTotal
}

// roundDiv divides a by b rounding half away from zero.
func roundDiv(a, b int64) int64 {
	if a >= 0 {
		return (a + b/2) / b
	}
	return (a - b/2) / b
}
