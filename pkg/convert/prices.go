package convert

import (
	"regexp"
	"strings"
)

// priceRegex matches an amount with a currency symbol or code either before
// or after it, e.g. $50, 50$, PHP 1,299.00, 1,299.00 PHP, ₱50.
var priceRegex = regexp.MustCompile(`(?i)(?:(?:[$₱£€¥₹]|PHP|USD|EUR|GBP|JPY|INR)\s*\d+(?:,\d{3})*(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:[$₱£€¥₹]|PHP|USD|EUR|GBP|JPY|INR))`)

// PriceSeparator joins the prices returned by ExtractPrices.
const PriceSeparator = " | "

// ExtractPrices returns every currency amount in text, in order of
// appearance, joined by PriceSeparator. It returns "" when none are found.
func ExtractPrices(text string) string {
	return strings.Join(priceRegex.FindAllString(text, -1), PriceSeparator)
}
