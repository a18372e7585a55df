package parsing

import (
	"math"
	"strings"
)

// reconcile fills in whichever of subtotal, tax and total can be derived
// from the others and the item sum. Values read directly from the text are
// never replaced.
func reconcile(r *ParsedReceipt) {
	itemsSum := roundCents(r.ItemsSum())

	if r.Total != nil && len(r.Items) > 0 {
		if r.Subtotal == nil {
			r.Subtotal = money(itemsSum)
		}
		if r.Tax == nil && *r.Total > itemsSum {
			r.Tax = money(math.Max(0, *r.Total-itemsSum))
		}
	}

	if r.Total != nil {
		return
	}

	switch {
	case len(r.Items) > 0:
		r.Total = money(itemsSum + valueOr(r.Tax, 0))
	case r.Subtotal != nil || r.Tax != nil:
		if sum := valueOr(r.Subtotal, 0) + valueOr(r.Tax, 0); sum > 0 {
			r.Total = money(sum)
		}
	}
}

// categorize maps a store name to the first category whose keyword list
// has a fragment contained in it
func categorize(storeName string) Category {
	if storeName == UnknownStore {
		return CategoryOther
	}
	name := strings.ToLower(storeName)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}

func money(v float64) *float64 {
	v = roundCents(v)
	return &v
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
