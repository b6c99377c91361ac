// Package money fixes how amounts travel on the wire: decimal values encoded
// as JSON numbers rather than strings.
package money

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount is a monetary value.
type Amount = decimal.Decimal

// Positive reports whether a is strictly greater than zero.
func Positive(a Amount) bool {
	return a.Sign() > 0
}

// Parse reads a decimal amount such as "150.00".
func Parse(s string) (Amount, error) {
	return decimal.NewFromString(s)
}

// MustParse parses s and panics on malformed input. Intended for tests and
// constants.
func MustParse(s string) Amount {
	return decimal.RequireFromString(s)
}

func FromFloat(f float64) Amount {
	return decimal.NewFromFloat(f)
}
