package receipt

import (
	"fmt"
	"math"
	"sort"

	"github.com/zombor/receipt-tracker/internal/parsing"
)

const trendMonths = 12

// CategorySpend is the spend in one category
type CategorySpend struct {
	Category     parsing.Category `json:"category"`
	TotalSpent   float64          `json:"total_spent"`
	ReceiptCount int              `json:"receipt_count"`
	AverageSpent float64          `json:"average_spent"`
}

// MonthlySpend is the spend in one calendar month, keyed "2006-01"
type MonthlySpend struct {
	Month        string  `json:"month"`
	TotalSpent   float64 `json:"total_spent"`
	ReceiptCount int     `json:"receipt_count"`
}

// Analytics summarises spending over a set of receipts
type Analytics struct {
	CategoryBreakdown []CategorySpend `json:"category_breakdown"`
	MonthlyTrend      []MonthlySpend  `json:"monthly_trend"`
	TotalReceipts     int             `json:"total_receipts"`
	TotalSpent        float64         `json:"total_spent"`
}

// SpendingAnalytics summarises the processed receipts selected by filter.
// The filter's limit is ignored. Categories are ordered by spend, highest
// first, and the trend holds the latest twelve months with receipts.
func (s *Service) SpendingAnalytics(filter Filter) (*Analytics, error) {
	filter.Limit = -1
	receipts, err := s.ListReceipts(filter)
	if err != nil {
		return nil, fmt.Errorf("loading receipts for analytics: %w", err)
	}
	return summarize(receipts), nil
}

func summarize(receipts []*Receipt) *Analytics {
	byCategory := map[parsing.Category]*CategorySpend{}
	byMonth := map[string]*MonthlySpend{}
	analytics := &Analytics{
		CategoryBreakdown: []CategorySpend{},
		MonthlyTrend:      []MonthlySpend{},
	}

	for _, r := range receipts {
		if r.Status != StatusProcessed {
			continue
		}
		total := r.TotalOrZero()
		analytics.TotalReceipts++
		analytics.TotalSpent += total

		cat, ok := byCategory[r.Category]
		if !ok {
			cat = &CategorySpend{Category: r.Category}
			byCategory[r.Category] = cat
		}
		cat.TotalSpent += total
		cat.ReceiptCount++

		key := r.Date.Format("2006-01")
		month, ok := byMonth[key]
		if !ok {
			month = &MonthlySpend{Month: key}
			byMonth[key] = month
		}
		month.TotalSpent += total
		month.ReceiptCount++
	}

	for _, cat := range byCategory {
		cat.TotalSpent = roundCents(cat.TotalSpent)
		cat.AverageSpent = roundCents(cat.TotalSpent / float64(cat.ReceiptCount))
		analytics.CategoryBreakdown = append(analytics.CategoryBreakdown, *cat)
	}
	sort.Slice(analytics.CategoryBreakdown, func(i, j int) bool {
		a, b := analytics.CategoryBreakdown[i], analytics.CategoryBreakdown[j]
		if a.TotalSpent != b.TotalSpent {
			return a.TotalSpent > b.TotalSpent
		}
		return a.Category < b.Category
	})

	for _, month := range byMonth {
		month.TotalSpent = roundCents(month.TotalSpent)
		analytics.MonthlyTrend = append(analytics.MonthlyTrend, *month)
	}
	sort.Slice(analytics.MonthlyTrend, func(i, j int) bool {
		return analytics.MonthlyTrend[i].Month > analytics.MonthlyTrend[j].Month
	})
	if len(analytics.MonthlyTrend) > trendMonths {
		analytics.MonthlyTrend = analytics.MonthlyTrend[:trendMonths]
	}

	analytics.TotalSpent = roundCents(analytics.TotalSpent)
	return analytics
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
