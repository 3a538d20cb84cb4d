package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finora/pkg/contracts/domain"
)

// amountPrefix matches the longest leading number once every character other
// than digits, '-' and '.' has been stripped.
var amountPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// ParseAmount coerces a cell to a number. Numeric cells pass through; text is
// stripped to digits, '-' and '.', and its longest numeric prefix is parsed.
// Anything unparseable yields zero.
func ParseAmount(v domain.Value) float64 {
	f, _ := ParseAmountOK(v)
	return f
}

// ParseAmountOK is ParseAmount that also reports whether a number was found.
func ParseAmountOK(v domain.Value) (float64, bool) {
	switch v.Kind {
	case domain.KindNumber:
		return v.Number, true
	case domain.KindText:
		return ParseAmountText(v.Text)
	default:
		return 0, false
	}
}

// ParseAmountText applies the amount coercion rules to raw text.
func ParseAmountText(s string) (float64, bool) {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, s)

	m := amountPrefix.FindString(stripped)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatCurrency renders f with two decimal places and en-US thousands
// separators, e.g. 1234567.891 → "1,234,567.89".
func FormatCurrency(f float64) string {
	rounded := decimal.NewFromFloat(f).Round(2).InexactFloat64()
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprintf("%.2f", rounded)
}

// Sum accumulates amounts exactly in decimal and reports them as float64.
type Sum struct {
	total decimal.Decimal
}

// Add adds the coerced amount of v.
func (s *Sum) Add(v domain.Value) {
	s.AddFloat(ParseAmount(v))
}

// AddFloat adds f.
func (s *Sum) AddFloat(f float64) {
	if f == 0 {
		return
	}
	s.total = s.total.Add(decimal.NewFromFloat(f))
}

// Float64 returns the accumulated total.
func (s *Sum) Float64() float64 {
	return s.total.InexactFloat64()
}
