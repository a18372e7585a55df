// Package parsing turns raw receipt OCR text into a structured receipt.
//
// The engine is a fixed set of rule tables applied to the text's lines: field
// extractors for store, date, payment method and money summaries, a small
// state machine for the item table, and a reconciliation pass that derives
// missing money values. Parsing is pure apart from reading the clock for the
// date default, so a Parser can be shared between goroutines.
package parsing

import (
	"fmt"
	"time"
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return time.Now()
}

// Parser parses receipt OCR text
type Parser struct {
	clock TimeSource
}

// NewParser creates a Parser that defaults missing dates to the wall clock
func NewParser() *Parser {
	return &Parser{clock: wallClock{}}
}

// NewParserWithClock creates a Parser with a custom time source for testing
func NewParserWithClock(clock TimeSource) *Parser {
	return &Parser{clock: clock}
}

var defaultParser = NewParser()

// Parse parses text with the default Parser
func Parse(text string) (*ParsedReceipt, error) {
	return defaultParser.Parse(text)
}

// Parse extracts a receipt from OCR text. Fields that cannot be found fall
// back to their defaults; only text without a single non-blank line fails.
func (p *Parser) Parse(text string) (*ParsedReceipt, error) {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no text lines", ErrParseFailure)
	}

	r := &ParsedReceipt{
		StoreName:     extractStoreName(lines),
		Date:          extractDate(lines, p.clock.Now()),
		Items:         extractItems(lines),
		Subtotal:      extractSubtotal(lines),
		Tax:           extractTax(lines),
		Total:         extractTotal(lines),
		PaymentMethod: extractPaymentMethod(lines),
	}

	reconcile(r)
	r.Category = categorize(r.StoreName)

	return r, nil
}
