package parsing

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxItemPrice = 50_000

type itemState int

const (
	outsideItems itemState = iota
	insideItems
)

// itemMatcher tries to read one complete item row from a line
type itemMatcher func(line string) (LineItem, bool)

// itemMatchers are tried in order on every line inside the item table.
var itemMatchers = []itemMatcher{
	matchFourColumn,
	matchTwoColumn,
	matchLoose,
	matchQuantityFirst,
}

// itemScanner walks the lines as a two-state machine. pending holds a name
// line that had no price, so the next bare price line can complete it.
// Without a header line only a summary line closes the table; boilerplate
// is skipped.
type itemScanner struct {
	state      itemState
	headerless bool
	pending    string
	items      []LineItem
}

// extractItems returns the item rows in order of appearance. When the text
// has no item table header the whole receipt is treated as the table.
func extractItems(lines []string) []LineItem {
	s := &itemScanner{state: insideItems, headerless: true, items: []LineItem{}}
	for _, line := range lines {
		if isItemHeader(line) {
			s.state = outsideItems
			s.headerless = false
			break
		}
	}

	for _, line := range lines {
		s.step(line)
	}
	return s.items
}

func (s *itemScanner) step(line string) {
	switch {
	case isSummaryLine(line):
		s.leave()
		return
	case isBoilerplate(line):
		if s.headerless {
			s.pending = ""
		} else {
			s.leave()
		}
		return
	case isItemHeader(line):
		s.state = insideItems
		s.pending = ""
		return
	case s.state == outsideItems:
		return
	}

	if m := priceOnlyLine.FindStringSubmatch(line); m != nil {
		if s.pending != "" {
			if price, ok := NormalizeAmount(m[1]); ok {
				s.emit(s.pending, price, 1)
			}
			s.pending = ""
		}
		return
	}

	for _, match := range itemMatchers {
		if item, ok := match(line); ok {
			s.pending = ""
			s.emit(item.Name, item.Price, item.Quantity)
			return
		}
	}

	if isValidItemName(line) {
		if s.pending != "" {
			// wrapped description
			s.pending += " " + line
		} else {
			s.pending = line
		}
		return
	}
	s.pending = ""
}

func (s *itemScanner) emit(name string, price, qty float64) {
	item := LineItem{Name: name, Price: price, Quantity: qty}
	if !validItem(item) {
		return
	}
	item.Name = cleanItemName(name)
	s.items = append(s.items, item)
}

func (s *itemScanner) leave() {
	s.state = outsideItems
	s.pending = ""
}

func matchFourColumn(line string) (LineItem, bool) {
	m := fourColumnItem.FindStringSubmatch(line)
	if m == nil {
		return LineItem{}, false
	}
	qty, ok := parseQuantity(m[2])
	if !ok {
		return LineItem{}, false
	}
	amount, ok := NormalizeAmount(m[4])
	if !ok {
		return LineItem{}, false
	}
	return LineItem{Name: m[1], Price: amount, Quantity: qty}, true
}

func matchTwoColumn(line string) (LineItem, bool) {
	return nameThenPrice(twoColumnItem, line)
}

func matchLoose(line string) (LineItem, bool) {
	return nameThenPrice(looseItem, line)
}

func nameThenPrice(re *regexp.Regexp, line string) (LineItem, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil || leadingQuantity.MatchString(m[1]) {
		return LineItem{}, false
	}
	price, ok := NormalizeAmount(m[2])
	if !ok {
		return LineItem{}, false
	}
	return LineItem{Name: m[1], Price: price, Quantity: 1}, true
}

func matchQuantityFirst(line string) (LineItem, bool) {
	m := quantityFirstItem.FindStringSubmatch(line)
	if m == nil {
		return LineItem{}, false
	}
	qty, ok := parseQuantity(m[1])
	if !ok {
		return LineItem{}, false
	}
	price, ok := NormalizeAmount(m[3])
	if !ok {
		return LineItem{}, false
	}
	return LineItem{Name: m[2], Price: price, Quantity: qty}, true
}

func isItemHeader(line string) bool {
	return itemHeader.MatchString(line) && !decimalMoney.MatchString(line)
}

func isBoilerplate(line string) bool {
	for _, p := range boilerplatePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// isSummaryLine reports whether the line closes the item table, e.g.
// "SUB TOTAL 1,250.00" or "CHANGE 50.00"
func isSummaryLine(line string) bool {
	return summaryLabel.MatchString(line) && decimalMoney.MatchString(line)
}

func validItem(item LineItem) bool {
	return isValidItemName(strings.TrimSpace(item.Name)) &&
		item.Price > 0 && item.Price < maxItemPrice &&
		item.Quantity > 0
}

// isValidItemName rejects totals, payment lines, register noise and
// anything without letters
func isValidItemName(text string) bool {
	if len(text) < 2 {
		return false
	}
	for _, p := range invalidItemNames {
		if p.MatchString(text) {
			return false
		}
	}
	return true
}

// cleanItemName turns "MILK 2%" into "Milk 2". A Caser keeps state, so
// each call gets its own.
func cleanItemName(name string) string {
	name = nonWordChars.ReplaceAllString(name, " ")
	name = strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
	return cases.Title(language.English).String(strings.ToLower(name))
}
