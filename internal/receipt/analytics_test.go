package receipt

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-tracker/internal/parsing"
)

var _ = Describe("SpendingAnalytics", func() {
	var (
		db        *mockDB
		service   *Service
		filter    Filter
		analytics *Analytics
		err       error
	)

	add := func(id string, date time.Time, total float64, category parsing.Category, status Status) {
		db.receipts[id] = &Receipt{ID: id, OwnerID: "alice", Date: date, Total: amount(total), Category: category, Status: status}
	}

	BeforeEach(func() {
		db = newMockDB()
		service = NewService(db, newMockScanner(), newMockStorage())
		filter = Filter{OwnerID: "alice"}

		add("g1", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 100, parsing.CategoryGroceries, StatusProcessed)
		add("g2", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), 50.5, parsing.CategoryGroceries, StatusProcessed)
		add("r1", time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), 20, parsing.CategoryRestaurant, StatusProcessed)
		add("f1", time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), 999, parsing.CategoryRetail, StatusFailed)
	})

	JustBeforeEach(func() {
		analytics, err = service.SpendingAnalytics(filter)
	})

	It("totals processed receipts only", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(analytics.TotalReceipts).To(Equal(3))
		Expect(analytics.TotalSpent).To(Equal(170.5))
	})

	It("breaks spending down by category, largest first", func() {
		Expect(analytics.CategoryBreakdown).To(Equal([]CategorySpend{
			{Category: parsing.CategoryGroceries, TotalSpent: 150.5, ReceiptCount: 2, AverageSpent: 75.25},
			{Category: parsing.CategoryRestaurant, TotalSpent: 20, ReceiptCount: 1, AverageSpent: 20},
		}))
	})

	It("trends spending by month, latest first", func() {
		Expect(analytics.MonthlyTrend).To(Equal([]MonthlySpend{
			{Month: "2024-02", TotalSpent: 70.5, ReceiptCount: 2},
			{Month: "2024-01", TotalSpent: 100, ReceiptCount: 1},
		}))
	})

	When("receipts span more than a year", func() {
		BeforeEach(func() {
			for m := 1; m <= 14; m++ {
				add(fmt.Sprintf("m%d", m), time.Date(2022, time.Month(m), 1, 0, 0, 0, 0, time.UTC), 1, parsing.CategoryOther, StatusProcessed)
			}
		})

		It("keeps the latest twelve months", func() {
			Expect(analytics.MonthlyTrend).To(HaveLen(12))
			Expect(analytics.MonthlyTrend[0].Month).To(Equal("2024-02"))
		})
	})

	When("the filter matches nothing", func() {
		BeforeEach(func() {
			filter.OwnerID = "nobody"
		})

		It("returns empty lists", func() {
			Expect(analytics.TotalReceipts).To(BeZero())
			Expect(analytics.CategoryBreakdown).NotTo(BeNil())
			Expect(analytics.CategoryBreakdown).To(BeEmpty())
			Expect(analytics.MonthlyTrend).To(BeEmpty())
		})
	})

	When("more receipts exist than the default list limit", func() {
		BeforeEach(func() {
			for i := 0; i < DefaultListLimit; i++ {
				add(fmt.Sprintf("gas%d", i), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1, parsing.CategoryGas, StatusProcessed)
			}
		})

		It("counts all of them", func() {
			Expect(analytics.TotalReceipts).To(Equal(DefaultListLimit + 3))
		})
	})
})
