package currency

import (
	"fmt"
	"math"
	"strings"
)

// Thousands separators by ISO 4217 code. Codes not listed use ",".
var separators = map[string]string{
	"EUR": ".",
	"IDR": ".",
	"BRL": ".",
	"CHF": "'",
}

// Format renders a whole-unit price such as "EUR 1.234".
func Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "EUR"
	}

	rounded := math.Round(amount)
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	sep, ok := separators[code]
	if !ok {
		sep = ","
	}

	result := code + " " + addThousandsSeparator(fmt.Sprintf("%.0f", rounded), sep)
	if negative {
		result = "-" + result
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < n; i += 3 {
		b.WriteString(sep)
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
