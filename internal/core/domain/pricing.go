package domain

// ComputeFinalPrice derives the bindable price from the reviewer-set inputs.
// The coverage tier uplifts the base price, the discount is applied on top,
// and the result never goes below zero. This is the only place a final price
// is computed; persisted values are always recomputed from these inputs and
// a client-supplied final price is never trusted.
func ComputeFinalPrice(basePrice float64, tier CoverageTier, discountRate float64) (float64, error) {
	if basePrice < 0 {
		return 0, NewValidationError("base_price", "must not be negative")
	}
	if !tier.IsValid() {
		return 0, NewValidationError("coverage_tier", "must be one of 0, 25, 40")
	}
	if discountRate < 0 || discountRate > 100 {
		return 0, NewValidationError("discount_rate", "must be between 0 and 100")
	}

	withCoverage := basePrice * (1 + float64(tier)/100)
	final := withCoverage * (1 - discountRate/100)
	if final < 0 {
		final = 0
	}
	return final, nil
}
