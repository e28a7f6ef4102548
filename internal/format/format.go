// Package format renders amounts and dates for display. The product used to
// format currency two different ways depending on the screen; this is the
// single contract both now share, configured once from app settings.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Formatter renders display strings with the configured currency. Build one
// at the composition root and rebuild it when the admin switches currency.
type Formatter struct {
	code   string
	symbol string
}

// New creates a Formatter for the given currency code and symbol.
func New(code, symbol string) *Formatter {
	return &Formatter{code: code, symbol: symbol}
}

// Code returns the configured ISO currency code.
func (f *Formatter) Code() string { return f.code }

// Symbol returns the configured currency symbol.
func (f *Formatter) Symbol() string { return f.symbol }

// Money renders an amount as "<grouped amount> <symbol>", e.g. "45 600 FCFA".
// Whole amounts drop the decimals, fractional ones keep two.
func (f *Formatter) Money(amount float64) string {
	return groupAmount(amount) + " " + f.symbol
}

// groupAmount formats the number with thin-space thousand grouping, the way
// the fr locale renders it.
func groupAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	var raw string
	if amount == float64(int64(amount)) {
		raw = strconv.FormatInt(int64(amount), 10)
	} else {
		raw = strconv.FormatFloat(amount, 'f', 2, 64)
	}

	intPart := raw
	frac := ""
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		intPart, frac = raw[:i], raw[i:]
		frac = "," + frac[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(' ')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

// Date renders a timestamp the way the product displays dates (fr style).
func Date(t time.Time) string {
	return t.Format("02/01/2006")
}

// ISODate renders the date part only, used in export filenames.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Percent renders a rate with one decimal and a % suffix, with the same
// fr-style comma decimal as Money, e.g. "66,7%".
func Percent(rate float64) string {
	return strings.Replace(fmt.Sprintf("%.1f%%", rate), ".", ",", 1)
}
