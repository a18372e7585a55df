package parsing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("field extractors", func() {
	Describe("extractStoreName", func() {
		It("skips address and phone lines and strips decoration", func() {
			lines := []string{"123 Main St", "555-123-4567", "** BEST MART **", "Bread 2.50"}
			Expect(extractStoreName(lines)).To(Equal("BEST MART"))
		})

		It("skips labelled phone lines", func() {
			lines := []string{"Tel: 011 2345678", "ODEL"}
			Expect(extractStoreName(lines)).To(Equal("ODEL"))
		})

		It("skips lines that are too short", func() {
			lines := []string{"Hi", "CORNER CAFE"}
			Expect(extractStoreName(lines)).To(Equal("CORNER CAFE"))
		})

		It("only looks at the first five lines", func() {
			lines := []string{"1", "2", "3", "4", "5", "Late Store"}
			Expect(extractStoreName(lines)).To(Equal(UnknownStore))
		})

		It("falls back when nothing survives cleaning", func() {
			Expect(extractStoreName([]string{"@@@@", "%%%"})).To(Equal(UnknownStore))
		})
	})

	Describe("extractDate", func() {
		var (
			now   time.Time
			lines []string
			date  time.Time
		)

		BeforeEach(func() {
			now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		})

		JustBeforeEach(func() {
			date = extractDate(lines, now)
		})

		When("the first field cannot be a month", func() {
			BeforeEach(func() {
				lines = []string{"14/11/2023 11:48:05"}
			})

			It("reads the date day first", func() {
				Expect(date).To(Equal(time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC)))
			})
		})

		When("both fields could be a month", func() {
			BeforeEach(func() {
				lines = []string{"Date: 03/04/2024"}
			})

			It("reads the date month first", func() {
				Expect(date).To(Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
			})
		})

		When("the date is ISO formatted", func() {
			BeforeEach(func() {
				lines = []string{"2024-01-15"}
			})

			It("reads year, month and day", func() {
				Expect(date).To(Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
			})
		})

		When("the year has two digits", func() {
			BeforeEach(func() {
				lines = []string{"31-12-23"}
			})

			It("places it in the 2000s", func() {
				Expect(date).To(Equal(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
			})
		})

		When("the only date is not a real calendar day", func() {
			BeforeEach(func() {
				lines = []string{"30/02/2024"}
			})

			It("uses now", func() {
				Expect(date).To(Equal(now))
			})
		})

		When("several lines carry dates", func() {
			BeforeEach(func() {
				lines = []string{"Printed 2024-02-01", "Sale 01/15/2024"}
			})

			It("uses the earliest line", func() {
				Expect(date).To(Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
			})
		})

		When("there is no date", func() {
			BeforeEach(func() {
				lines = []string{"SHOP", "TOTAL 1.00"}
			})

			It("uses now", func() {
				Expect(date).To(Equal(now))
			})
		})
	})

	Describe("extractPaymentMethod", func() {
		It("prefers digital wallets over cards", func() {
			Expect(extractPaymentMethod([]string{"Paid via Apple Pay", "VISA ****1234"})).To(Equal(PaymentDigital))
		})

		It("prefers cards over cash regardless of line order", func() {
			Expect(extractPaymentMethod([]string{"CASH 20.00", "VISA 12.00"})).To(Equal(PaymentCard))
		})

		It("recognises masked card numbers", func() {
			Expect(extractPaymentMethod([]string{"XXXX1234"})).To(Equal(PaymentCard))
		})

		It("detects cash", func() {
			Expect(extractPaymentMethod([]string{"CASH 20.00", "CHANGE 7.66"})).To(Equal(PaymentCash))
		})

		It("falls back to other", func() {
			Expect(extractPaymentMethod([]string{"SHOP", "TOTAL 5.00"})).To(Equal(PaymentOther))
		})
	})

	Describe("extractSubtotal", func() {
		It("takes the lowest subtotal line", func() {
			Expect(extractSubtotal([]string{"Sub-Total 45.00", "Sub Total 50.00"})).To(HaveValue(Equal(50.0)))
		})

		It("reads unspaced labels", func() {
			Expect(extractSubtotal([]string{"SUBTOTAL 1,250.00"})).To(HaveValue(Equal(1250.0)))
		})

		It("ignores amounts out of range", func() {
			Expect(extractSubtotal([]string{"SUBTOTAL 1,000,000.00"})).To(BeNil())
		})
	})

	Describe("extractTax", func() {
		It("reads VAT lines", func() {
			Expect(extractTax([]string{"VAT 18% 162.00"})).To(HaveValue(Equal(162.0)))
		})

		It("accepts a zero tax", func() {
			Expect(extractTax([]string{"TAX 0.00"})).To(HaveValue(Equal(0.0)))
		})

		It("ignores registration numbers", func() {
			Expect(extractTax([]string{"VAT REG NO 123456789"})).To(BeNil())
		})
	})

	Describe("extractTotal", func() {
		It("ignores change lines in the strong tier", func() {
			lines := []string{"Total 30.00", "Total Change 5.00"}
			Expect(extractTotal(lines)).To(HaveValue(Equal(30.0)))
		})

		It("takes the strong label over lower cash lines", func() {
			lines := []string{"TOTAL 55.00", "CASH 60.00", "CHANGE 5.00"}
			Expect(extractTotal(lines)).To(HaveValue(Equal(55.0)))
		})

		It("reads grand totals", func() {
			lines := []string{"GRAND TOTAL 100.00", "BALANCE DUE 0.00"}
			Expect(extractTotal(lines)).To(HaveValue(Equal(100.0)))
		})

		It("falls back to currency-marked lines", func() {
			Expect(extractTotal([]string{"SHOP", "Amount Rs. 1,250.00"})).To(HaveValue(Equal(1250.0)))
		})

		It("falls back to a bare amount line", func() {
			Expect(extractTotal([]string{"STORE", "1,250.00/="})).To(HaveValue(Equal(1250.0)))
		})

		It("rejects a zero total", func() {
			Expect(extractTotal([]string{"TOTAL 0.00"})).To(BeNil())
		})

		It("returns nil without any amount", func() {
			Expect(extractTotal([]string{"SHOP", "THANKS"})).To(BeNil())
		})
	})
})
