package parsing

import (
	"errors"
	"time"
)

// UnknownStore is used when no header line qualifies as a store name.
const UnknownStore = "Unknown Store"

// ErrParseFailure is returned when the text holds no usable signal at all.
var ErrParseFailure = errors.New("failed to parse receipt")

// Category is the spending category derived from the store name
type Category string

const (
	CategoryGroceries  Category = "groceries"
	CategoryRestaurant Category = "restaurant"
	CategoryGas        Category = "gas"
	CategoryPharmacy   Category = "pharmacy"
	CategoryRetail     Category = "retail"
	CategoryOther      Category = "other"
)

// Categories lists every category in the order they are checked.
var Categories = []Category{
	CategoryGroceries,
	CategoryRestaurant,
	CategoryGas,
	CategoryPharmacy,
	CategoryRetail,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PaymentMethod is how the receipt was paid
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
	PaymentOther   PaymentMethod = "other"
)

// LineItem is a single product row on a receipt
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// ParsedReceipt is the structured form of one receipt's OCR text.
// Money fields are nil when they could neither be read nor derived.
type ParsedReceipt struct {
	StoreName     string        `json:"store_name"`
	Date          time.Time     `json:"date"`
	Items         []LineItem    `json:"items"`
	Subtotal      *float64      `json:"subtotal,omitempty"`
	Tax           *float64      `json:"tax,omitempty"`
	Total         *float64      `json:"total,omitempty"`
	Category      Category      `json:"category"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// ItemsSum returns the sum of price times quantity over all items
func (p *ParsedReceipt) ItemsSum() float64 {
	var sum float64
	for _, item := range p.Items {
		sum += item.Price * item.Quantity
	}
	return sum
}
