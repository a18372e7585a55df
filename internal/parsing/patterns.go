package parsing

import "regexp"

// Pattern tables for the field and item extractors. They are built once at
// package init and only read afterwards.

var (
	currencyPattern = regexp.MustCompile(`(?i)\b(?:rs|lkr)\b\.?|\$`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	// Grouped integers (1,234,567) are tried before plain runs of digits.
	amountToken = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
)

// store name
var (
	leadingDigit = regexp.MustCompile(`^\d`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]\d{4}`),
		regexp.MustCompile(`\b0\d{2}[-\s]?\d{7}\b`),
		regexp.MustCompile(`(?i)^(?:tel|phone|fax|hotline)\b`),
	}
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

// datePattern is one recognised date shape. Non-ISO shapes carry the year
// last and leave the day/month order to resolveDate.
type datePattern struct {
	re      *regexp.Regexp
	isoDate bool
}

var datePatterns = []datePattern{
	{re: regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})\b`)},
	{re: regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4}|\d{2})\b`)},
	{re: regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), isoDate: true},
}

// paymentRule maps a keyword group to a payment method. Rules are checked in
// slice order over the whole text, so the first group with any hit wins.
type paymentRule struct {
	method  PaymentMethod
	pattern *regexp.Regexp
}

var paymentRules = []paymentRule{
	{
		method:  PaymentDigital,
		pattern: regexp.MustCompile(`(?i)\b(?:apple\s*pay|google\s*pay|g\s*pay|samsung\s*pay|paypal|venmo|alipay|wechat\s*pay|frimi|genie|ez\s*cash|m\s*cash|upi|qr\s*pay(?:ment)?|lanka\s*qr|e-?wallet|digital\s*wallet|mobile\s*pay(?:ment)?)\b`),
	},
	{
		method:  PaymentCard,
		pattern: regexp.MustCompile(`(?i)\b(?:visa|master\s*card|amex|american\s*express|discover|maestro|union\s*pay|credit\s*card|debit\s*card|card\s*(?:no|number|type|payment)|card|credit|debit|chip|contactless)\b|(?:\*{4}|x{4})\s*\d{4}`),
	},
	{
		method:  PaymentCash,
		pattern: regexp.MustCompile(`(?i)\b(?:cash|tendered|change\s*due|change)\b`),
	},
}

// money summary labels
var (
	subtotalLabel = regexp.MustCompile(`(?i)\bsub[\s-]?total\b`)
	taxLabel      = regexp.MustCompile(`(?i)\b(?:tax|vat|gst|sscl|nbt)\b`)

	strongTotalLabel = regexp.MustCompile(`(?i)\bgrand\s*total\b|\bnet\s*total\b|\btotal\s*amount\b|\bamount\s*(?:payable|due)\b|^total\b`)
	changeLabel      = regexp.MustCompile(`(?i)\bchange\b|\bbalance\b|\btender(?:ed)?\b|\bcash\s*received\b`)
	weakTotalLabel   = regexp.MustCompile(`(?i)\b(?:rs|lkr)\b|\$|\btotal\b|\bamount\b`)
	bareAmountLine   = regexp.MustCompile(`(?i)^(?:rs\.?|lkr|\$)?\s*\d[\d,]*(?:\.\d+)?\s*(?:/=)?$`)
)

// item table
var (
	itemHeader = regexp.MustCompile(`(?i)\b(?:no|item|items|description|desc|product)\b.*\b(?:qty|quantity|price|amount|amt|rate|value)\b`)

	boilerplatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)thank\s*you`),
		regexp.MustCompile(`(?i)\bhave\s+a\b`),
		regexp.MustCompile(`(?i)visit\s+us`),
		regexp.MustCompile(`(?i)www\.|https?://|\.com\b|\.lk\b`),
		regexp.MustCompile(`(?i)\b(?:phone|tel|fax|hotline)\b\s*:?`),
		regexp.MustCompile(`(?i)\baddress\b`),
		regexp.MustCompile(`^[-=*_.~#\s]{3,}$`),
	}

	summaryLabel = regexp.MustCompile(`(?i)sub\s*-?\s*total|\btotal\b|\btax\b|\bvat\b|\bamount\b|\bchange\b|\bbalance\b`)
	decimalMoney = regexp.MustCompile(`\d[\d,]*\.\d{1,2}\b|\d+\s*/=`)

	// (a) name qty price amount, with an optional leading row number.
	fourColumnItem = regexp.MustCompile(`(?i)^(?:\d{1,3}\s+)?(\d*[a-z].*?)\s+(\d+(?:[.,]\d+)?)\s+(?:rs\.?\s*)?(\d[\d,]*\.\d{2})\s+(?:rs\.?\s*)?(\d[\d,]*\.\d{2})$`)
	// (b) name [Rs.] price
	twoColumnItem = regexp.MustCompile(`(?i)^(\d*[a-z].*?)\s+(?:rs\.?|lkr)?\s*\$?(\d[\d,]*\.\d{2})\s*(?:/=)?$`)
	// (c) name price, price loosely formatted
	looseItem = regexp.MustCompile(`(?i)^(\d*[a-z].*?)\s+\$?(\d{1,4}(?:\.\d{1,2})?)$`)
	// (d) qty name [Rs.] price
	quantityFirstItem = regexp.MustCompile(`(?i)^(\d{1,3})\s*[x@]?\s+(.*?[a-z].*?)\s+(?:rs\.?|lkr)?\s*\$?(\d[\d,]*\.\d{2})\s*(?:/=)?$`)

	// "2x Bread" belongs to (d), not to a name
	leadingQuantity = regexp.MustCompile(`(?i)^\d{1,3}\s*[x@]\s`)

	priceOnlyLine = regexp.MustCompile(`(?i)^(?:rs\.?|lkr|\$)?\s*(\d[\d,]*\.\d{2})\s*(?:/=)?$`)

	invalidItemNames = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:sub\s*-?\s*total|tax|total|amount|change|cash|credit|debit|balance|vat)`),
		regexp.MustCompile(`^\d+$`),
		regexp.MustCompile(`^[^a-zA-Z]+$`),
		regexp.MustCompile(`(?i)cashier|register|transaction|invoice\s*no|bill\s*no|receipt\s*no`),
	}

	nonWordChars = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// categoryRule maps store-name fragments to a spending category. Order matters:
// the first rule with a matching fragment wins.
type categoryRule struct {
	category Category
	keywords []string
}

var categoryRules = []categoryRule{
	{
		category: CategoryGroceries,
		keywords: []string{
			"grocery", "market", "food", "supermarket", "walmart", "target", "kroger",
			"safeway", "whole foods", "aldi", "lidl", "trader joe",
			"keells", "cargills", "food city", "arpico", "laugfs", "glomark", "spar", "sathosa",
		},
	},
	{
		category: CategoryRestaurant,
		keywords: []string{
			"restaurant", "cafe", "coffee", "pizza", "burger", "taco", "mcdonald", "subway",
			"starbucks", "kfc", "domino", "bakery", "hotel", "diner", "kitchen",
		},
	},
	{
		category: CategoryGas,
		keywords: []string{
			"gas", "fuel", "shell", "bp", "exxon", "chevron", "mobil", "ceypetco", "lanka ioc",
			"filling station", "petroleum",
		},
	},
	{
		category: CategoryPharmacy,
		keywords: []string{
			"pharmacy", "cvs", "walgreens", "rite aid", "drugstore", "healthguard", "osu sala",
			"chemist", "pharma",
		},
	},
	{
		category: CategoryRetail,
		keywords: []string{
			"store", "shop", "retail", "amazon", "best buy", "costco", "mall", "fashion",
			"odel", "nolimit", "abans", "singer", "softlogic",
		},
	},
}
