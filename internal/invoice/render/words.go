package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones = []string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

type scale struct {
	value int64
	name  string
}

var (
	indianScales = []scale{{10_000_000, "Crore"}, {100_000, "Lakh"}, {1_000, "Thousand"}}
	shortScales  = []scale{{1_000_000_000, "Billion"}, {1_000_000, "Million"}, {1_000, "Thousand"}}
)

// AmountToWords spells out the integer part of amount. INR uses Indian
// grouping (crore, lakh) and reads "Rupees ... Only"; every other currency
// uses short-scale grouping and reads "USD ... Only". The fractional part is
// truncated, never rounded, to match previously issued documents.
func AmountToWords(amount decimal.Decimal, currency string) string {
	n := amount.Truncate(0).IntPart()
	if n < 0 {
		n = -n
	}

	if strings.EqualFold(currency, "INR") {
		return "Rupees " + spell(n, indianScales) + " Only"
	}
	return "USD " + spell(n, shortScales) + " Only"
}

func spell(n int64, scales []scale) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string
	for _, s := range scales {
		if n >= s.value {
			// Crore may itself exceed 99, so the multiplier is spelled recursively.
			parts = append(parts, spell(n/s.value, scales)+" "+s.name)
			n %= s.value
		}
	}
	if n > 0 {
		parts = append(parts, belowThousand(n))
	}
	return strings.Join(parts, " ")
}

func belowThousand(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}
	switch {
	case n >= 20:
		w := tens[n/10]
		if n%10 != 0 {
			w += " " + ones[n%10]
		}
		parts = append(parts, w)
	case n > 0:
		parts = append(parts, ones[n])
	}
	return strings.Join(parts, " ")
}
