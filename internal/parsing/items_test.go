package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("extractItems", func() {
	var (
		lines []string
		items []LineItem
	)

	JustBeforeEach(func() {
		items = extractItems(lines)
	})

	When("rows have quantity, price and amount columns", func() {
		BeforeEach(func() {
			lines = []string{
				"KEELLS SUPER",
				"NO ITEM QTY PRICE AMOUNT",
				"1 BASMATI RICE 2.000 450.00 900.00",
				"2 SUGAR 1,500 250.00 375.00",
				"SUB TOTAL 1,275.00",
			}
		})

		It("reads the amount column as the price", func() {
			Expect(items).To(Equal([]LineItem{
				{Name: "Basmati Rice", Price: 900, Quantity: 2},
				{Name: "Sugar", Price: 375, Quantity: 1.5},
			}))
		})
	})

	When("a name and its price are on separate lines", func() {
		BeforeEach(func() {
			lines = []string{"CHICKEN BREAST", "12.99", "TOTAL 12.99"}
		})

		It("joins them into one item", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Chicken Breast", Price: 12.99, Quantity: 1}}))
		})
	})

	When("a description wraps over two lines", func() {
		BeforeEach(func() {
			lines = []string{
				"ACME",
				"ITEM PRICE",
				"ORGANIC WHOLE",
				"MILK 1 LITRE",
				"Rs. 450.00",
				"TOTAL 450.00",
			}
		})

		It("keeps the whole name", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Organic Whole Milk 1 Litre", Price: 450, Quantity: 1}}))
		})
	})

	When("lines follow the summary block", func() {
		BeforeEach(func() {
			lines = []string{"Bread 2.50", "TOTAL 2.50", "Gift Card 10.00"}
		})

		It("ignores them", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Bread", Price: 2.5, Quantity: 1}}))
		})
	})

	When("a row names register noise", func() {
		BeforeEach(func() {
			lines = []string{"Cashier Bob 3.00", "Bread 2.50"}
		})

		It("skips it", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Bread", Price: 2.5, Quantity: 1}}))
		})
	})

	When("a price is out of range", func() {
		BeforeEach(func() {
			lines = []string{"Television 55000.00"}
		})

		It("drops the row", func() {
			Expect(items).To(BeEmpty())
		})
	})

	When("the quantity comes first", func() {
		BeforeEach(func() {
			lines = []string{"3 x Apples 4.50"}
		})

		It("reads the quantity", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Apples", Price: 4.5, Quantity: 3}}))
		})
	})

	When("the quantity is glued to an x", func() {
		BeforeEach(func() {
			lines = []string{"2x Bread 3.50"}
		})

		It("reads the quantity instead of keeping it in the name", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Bread", Price: 3.5, Quantity: 2}}))
		})
	})

	When("there is no header and boilerplate sits above the items", func() {
		BeforeEach(func() {
			lines = []string{
				"WALMART",
				"========",
				"Phone 555-123-4567",
				"www.walmart.com",
				"Milk 3.99",
				"Bread 2.50",
				"TOTAL 6.49",
				"Gift Card 10.00",
			}
		})

		It("skips the boilerplate and keeps scanning until the summary", func() {
			Expect(items).To(Equal([]LineItem{
				{Name: "Milk", Price: 3.99, Quantity: 1},
				{Name: "Bread", Price: 2.5, Quantity: 1},
			}))
		})
	})

	When("there is a header and boilerplate follows the items", func() {
		BeforeEach(func() {
			lines = []string{
				"ITEM QTY PRICE",
				"Milk 3.99",
				"==========",
				"Bread 2.50",
			}
		})

		It("closes the table at the boilerplate", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Milk", Price: 3.99, Quantity: 1}}))
		})
	})

	When("the price has a rupee prefix", func() {
		BeforeEach(func() {
			lines = []string{"Dhal Rs. 350.00"}
		})

		It("reads the price", func() {
			Expect(items).To(Equal([]LineItem{{Name: "Dhal", Price: 350, Quantity: 1}}))
		})
	})

	When("the text has no item lines", func() {
		BeforeEach(func() {
			lines = []string{"THANK YOU"}
		})

		It("returns an empty list", func() {
			Expect(items).NotTo(BeNil())
			Expect(items).To(BeEmpty())
		})
	})
})

var _ = Describe("isItemHeader", func() {
	It("accepts column headers", func() {
		Expect(isItemHeader("NO ITEM QTY PRICE AMOUNT")).To(BeTrue())
		Expect(isItemHeader("Description Qty Amt")).To(BeTrue())
	})

	It("rejects rows that carry money", func() {
		Expect(isItemHeader("1 ITEM 2 PRICE 10.00")).To(BeFalse())
	})
})

var _ = Describe("cleanItemName", func() {
	It("strips symbols and title cases", func() {
		Expect(cleanItemName("MILK 2%")).To(Equal("Milk 2"))
		Expect(cleanItemName("  coca-cola   zero ")).To(Equal("Coca Cola Zero"))
	})
})
