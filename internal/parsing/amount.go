package parsing

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeAmount reads the money value out of a text fragment such as
// "Rs. 3,410.00" or "TOTAL $12.34". Currency markers and thousands separators
// are removed and the rightmost number wins, since summary lines put the
// amount after the label. It reports false when the fragment has no number.
func NormalizeAmount(fragment string) (float64, bool) {
	s := currencyPattern.ReplaceAllString(fragment, " ")
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))

	tokens := amountToken.FindAllString(s, -1)
	if len(tokens) == 0 {
		return 0, false
	}

	last := strings.ReplaceAll(tokens[len(tokens)-1], ",", "")
	value, err := strconv.ParseFloat(last, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

// parseQuantity reads an item quantity column. Receipts that print
// quantities as "2,000" mean two, so a comma is a decimal separator here.
func parseQuantity(s string) (float64, bool) {
	qty, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

// roundCents rounds a derived money value to two decimal places
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func amountInRange(v, min, max float64, minInclusive bool) bool {
	if minInclusive {
		return v >= min && v < max
	}
	return v > min && v < max
}
