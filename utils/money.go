package utils

import (
	"strconv"
	"strings"
)

var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// FormatMinorUnits formats an amount in minor units (pence, cents) as a string like "£12.50".
// Uses comma as thousands separator and dot for decimals.
func FormatMinorUnits(amount int64, currency string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	symbol, ok := currencySymbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency) + " "
	}

	whole := strconv.FormatInt(amount/100, 10)
	cents := amount % 100

	var b strings.Builder
	// Pre-allocate: digits + separators + symbol + decimals
	b.Grow(len(whole) + len(whole)/3 + len(symbol) + 4)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(symbol)

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}

	b.WriteByte('.')
	if cents < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(cents, 10))

	return b.String()
}
