package parsing

import (
	"strconv"
	"strings"
	"time"
)

const (
	storeNameScanLines = 5

	maxSubtotal = 1_000_000
	maxTax      = 100_000
	maxTotal    = 2_000_000
)

// extractStoreName returns the first plausible header line among the first
// few lines, cleaned of punctuation
func extractStoreName(lines []string) string {
	for i := 0; i < len(lines) && i < storeNameScanLines; i++ {
		line := lines[i]
		if leadingDigit.MatchString(line) || looksLikePhone(line) || len(line) <= 2 {
			continue
		}
		name := strings.TrimSpace(whitespaceRun.ReplaceAllString(nonAlphanumeric.ReplaceAllString(line, ""), " "))
		if name != "" {
			return name
		}
	}
	return UnknownStore
}

func looksLikePhone(line string) bool {
	for _, p := range phonePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// extractDate returns the first valid calendar date found in the text, or now
func extractDate(lines []string, now time.Time) time.Time {
	for _, line := range lines {
		for _, dp := range datePatterns {
			for _, m := range dp.re.FindAllStringSubmatch(line, -1) {
				if d, ok := resolveDate(m, dp.isoDate, now.Location()); ok {
					return d
				}
			}
		}
	}
	return now
}

// resolveDate turns a date match into a time. Slash and hyphen dates are
// read month first unless the first field cannot be a month, which covers
// both US receipts and day-first receipts like 14/11/2023.
func resolveDate(m []string, isoDate bool, loc *time.Location) (time.Time, bool) {
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	c, _ := strconv.Atoi(m[3])

	if isoDate {
		return calendarDate(a, b, c, loc)
	}

	year := c
	if len(m[3]) == 2 {
		year += 2000
	}
	if d, ok := calendarDate(year, a, b, loc); ok {
		return d, true
	}
	return calendarDate(year, b, a, loc)
}

// calendarDate builds a date and rejects values time.Date would normalise,
// such as February 30th
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// extractPaymentMethod checks the keyword groups in priority order against
// the whole text
func extractPaymentMethod(lines []string) PaymentMethod {
	for _, rule := range paymentRules {
		for _, line := range lines {
			if rule.pattern.MatchString(line) {
				return rule.method
			}
		}
	}
	return PaymentOther
}

func extractSubtotal(lines []string) *float64 {
	return scanUp(lines, func(line string) bool {
		return subtotalLabel.MatchString(line)
	}, 0, maxSubtotal, true)
}

func extractTax(lines []string) *float64 {
	return scanUp(lines, func(line string) bool {
		return taxLabel.MatchString(line)
	}, 0, maxTax, true)
}

// totalTiers are tried in order; each is a full bottom-up scan and the
// first tier with an acceptable amount wins.
var totalTiers = []func(line string) bool{
	func(line string) bool {
		return strongTotalLabel.MatchString(line) && !changeLabel.MatchString(line)
	},
	func(line string) bool {
		return weakTotalLabel.MatchString(line)
	},
	func(line string) bool {
		return bareAmountLine.MatchString(line)
	},
}

func extractTotal(lines []string) *float64 {
	for _, tier := range totalTiers {
		if total := scanUp(lines, tier, 0, maxTotal, false); total != nil {
			return total
		}
	}
	return nil
}

// scanUp walks the lines from the bottom and returns the amount of the first
// line accepted by match whose value is in range
func scanUp(lines []string, match func(string) bool, min, max float64, minInclusive bool) *float64 {
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !match(line) {
			continue
		}
		amount, ok := NormalizeAmount(line)
		if !ok || !amountInRange(amount, min, max, minInclusive) {
			continue
		}
		return &amount
	}
	return nil
}
