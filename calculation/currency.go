package calculation

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the symbol used when a document has none.
const DefaultCurrency = "€"

// FormatCurrency renders amount with two decimals, a decimal comma, space
// grouping and the symbol after the amount: 1234.5 → "1 234,50 €".
func FormatCurrency(amount float64, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrency
	}
	f := money.NewFormatter(2, ",", " ", symbol, "1 $")
	return f.Format(int64(math.Round(amount * 100)))
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseCurrency reads an amount typed by a user. Currency symbols and
// whitespace are dropped and the first comma is taken as the decimal
// separator. Only the leading numeric part is read; anything unparsable
// yields 0 so that a typo never breaks a calculation.
func ParseCurrency(value string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, value)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	num := leadingNumber.FindString(cleaned)
	if num == "" {
		return 0
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
