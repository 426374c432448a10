// Package pricing computes cart and order totals in integer minor currency
// units (cents). Floats never enter the arithmetic, so repeated mutation and
// the authoritative checkout pass always agree to the cent.
package pricing

// Line is one priced item: unit price already includes customization deltas.
type Line struct {
	UnitPriceCents int64
	Quantity       int
}

type Totals struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// Compute returns subtotal, tax and total for the given lines. taxRateBP is
// the tax rate in basis points (1800 = 18% IGV). Tax is rounded half-up to
// the cent. An empty line set yields all-zero totals.
func Compute(lines []Line, taxRateBP int64) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPriceCents * int64(l.Quantity)
	}
	tax := RoundHalfUpBP(subtotal, taxRateBP)
	return Totals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}

// RoundHalfUpBP multiplies amount by a basis-point rate and rounds half-up
// to the nearest cent. Amounts are non-negative.
func RoundHalfUpBP(amountCents, rateBP int64) int64 {
	return (amountCents*rateBP + 5000) / 10000
}
