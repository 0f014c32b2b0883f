package rental

import (
	"sort"

	"pujcovna/internal/domain"
)

// PriceForDuration returns the total price in minor units for renting one
// camera for days days. The tier with the largest MinimumDays the stay still
// meets wins; stays shorter than every tier fall back to the tier with the
// smallest MinimumDays. No tiers price at zero.
func PriceForDuration(tiers []domain.PricingTier, days int) (int64, error) {
	if len(tiers) == 0 {
		return 0, nil
	}
	if days < 1 {
		return 0, InvalidDurationError{Days: days}
	}
	tier, _ := SelectTier(tiers, days)
	return tier.PricePerDay * int64(days), nil
}

// SelectTier picks the tier PriceForDuration would use. ok is false only
// when tiers is empty. The input slice is not modified.
func SelectTier(tiers []domain.PricingTier, days int) (tier domain.PricingTier, ok bool) {
	if len(tiers) == 0 {
		return domain.PricingTier{}, false
	}
	sorted := make([]domain.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinimumDays > sorted[j].MinimumDays
	})
	for _, t := range sorted {
		if t.MinimumDays <= days {
			return t, true
		}
	}
	return sorted[len(sorted)-1], true
}
