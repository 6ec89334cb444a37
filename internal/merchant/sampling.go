package merchant

import (
	"github.com/ballsdex/merchant-service/internal/domain"
)

// sampleWithoutReplacement draws k distinct items from the pool, each draw
// proportional to the item's effective weight, removing the drawn item so it
// cannot be selected twice. Draw order does not matter to callers.
//
// Cumulative weights are rebuilt per draw because the pool shrinks; pools are
// catalog-sized so this stays cheap.
func sampleWithoutReplacement(pool []domain.MerchantItem, k int, rnd func() float64) []domain.MerchantItem {
	if k > len(pool) {
		k = len(pool)
	}
	if k <= 0 {
		return nil
	}

	remaining := make([]domain.MerchantItem, len(pool))
	copy(remaining, pool)

	selected := make([]domain.MerchantItem, 0, k)
	for len(selected) < k {
		idx := weightedIndex(remaining, rnd())
		selected = append(selected, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return selected
}

// weightedIndex picks an index by a roll in [0, totalWeight) using binary
// search over cumulative weights.
func weightedIndex(items []domain.MerchantItem, rnd float64) int {
	cumulative := make([]int, len(items))
	total := 0
	for i, item := range items {
		total += item.EffectiveWeight()
		cumulative[i] = total
	}

	roll := int(rnd * float64(total))
	if roll >= total {
		roll = total - 1
	}

	lo, hi := 0, len(cumulative)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cumulative[mid] <= roll {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
