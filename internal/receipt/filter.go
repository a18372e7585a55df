package receipt

import (
	"sort"
	"time"

	"github.com/zombor/receipt-tracker/internal/parsing"
)

// DefaultListLimit is how many receipts a listing returns when the filter
// does not say
const DefaultListLimit = 50

// Filter selects receipts. Zero values match everything. Date bounds and
// amount bounds are inclusive; receipts without a total never match an
// amount bound.
type Filter struct {
	OwnerID   string
	Category  parsing.Category
	DateFrom  *time.Time
	DateTo    *time.Time
	MinAmount *float64
	MaxAmount *float64
	// Limit caps the result size. Zero means DefaultListLimit and a
	// negative value means no limit.
	Limit int
}

// Matches reports whether the receipt passes every bound of the filter
func (f Filter) Matches(r *Receipt) bool {
	if f.OwnerID != "" && r.OwnerID != f.OwnerID {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	if f.MinAmount != nil && (r.Total == nil || *r.Total < *f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && (r.Total == nil || *r.Total > *f.MaxAmount) {
		return false
	}
	return true
}

// Apply returns the matching receipts, newest receipt date first, cut to
// the filter's limit
func (f Filter) Apply(receipts []*Receipt) []*Receipt {
	matched := make([]*Receipt, 0, len(receipts))
	for _, r := range receipts {
		if f.Matches(r) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit := f.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
