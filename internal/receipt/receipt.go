package receipt

import (
	"time"

	"github.com/zombor/receipt-tracker/internal/parsing"
)

// Status tracks where a receipt is in the OCR and parse pipeline
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Receipt is a stored receipt: the uploaded file, its OCR text and the
// fields parsed from that text
type Receipt struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"owner_id,omitempty"`
	StoreName     string                `json:"store_name"`
	Date          time.Time             `json:"date"`
	Items         []parsing.LineItem    `json:"items"`
	Subtotal      *float64              `json:"subtotal,omitempty"`
	Tax           *float64              `json:"tax,omitempty"`
	Total         *float64              `json:"total,omitempty"`
	Category      parsing.Category      `json:"category"`
	PaymentMethod parsing.PaymentMethod `json:"payment_method"`
	Filename      string                `json:"filename"`
	ContentType   string                `json:"content_type"`
	OCRText       string                `json:"ocr_text"`
	Status        Status                `json:"status"`
	Error         string                `json:"error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// applyParsed copies the parser's output onto the receipt
func (r *Receipt) applyParsed(p *parsing.ParsedReceipt) {
	r.StoreName = p.StoreName
	r.Date = p.Date
	r.Items = p.Items
	r.Subtotal = p.Subtotal
	r.Tax = p.Tax
	r.Total = p.Total
	r.Category = p.Category
	r.PaymentMethod = p.PaymentMethod
}

// TotalOrZero returns the total, treating a missing total as zero
func (r *Receipt) TotalOrZero() float64 {
	if r.Total == nil {
		return 0
	}
	return *r.Total
}
