// Package pricing derives a defensible unit price for a prescription line
// from partially populated upstream price fields. All amounts are exact
// integer minor currency units.
package pricing

// NormalizeQuantity maps a stored quantity to the effective billing quantity.
// Anything that is not a positive integer counts as a single unit.
func NormalizeQuantity(qty int) int {
	if qty <= 0 {
		return 1
	}
	return qty
}

// DivideRoundHalfUp divides amount by the divisor and rounds half away from
// zero to the nearest minor unit. The divisor must be positive.
func DivideRoundHalfUp(amount, by int64) int64 {
	if by <= 0 {
		return amount
	}
	if amount >= 0 {
		return (amount + by/2) / by
	}
	return -((-amount + by/2) / by)
}

// ResolveUnitPrice evaluates the fallback chain for one line:
//
//  1. a positive stored subtotal, divided by the effective quantity
//  2. a positive price snapshot captured at prescribing time
//  3. the current catalog price
//  4. zero
//
// The first satisfied branch wins. The chain prefers the most contextually
// specific source; a line is never left unpriced.
func ResolveUnitPrice(qty int, subtotal, snapshot, catalogPrice *int64) int64 {
	effectiveQty := int64(NormalizeQuantity(qty))

	if subtotal != nil && *subtotal > 0 {
		return DivideRoundHalfUp(*subtotal, effectiveQty)
	}
	if snapshot != nil && *snapshot > 0 {
		return *snapshot
	}
	if catalogPrice != nil {
		return *catalogPrice
	}
	return 0
}
