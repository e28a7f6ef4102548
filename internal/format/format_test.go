package format_test

import (
	"testing"
	"time"

	"github.com/brickgo/crm-bfa-go/internal/format"
)

func TestMoney_Grouping(t *testing.T) {
	f := format.New("XOF", "FCFA")

	cases := []struct {
		amount float64
		want   string
	}{
		{0, "0 FCFA"},
		{950, "950 FCFA"},
		{45600, "45 600 FCFA"},
		{1234567, "1 234 567 FCFA"},
		{1250.5, "1 250,50 FCFA"},
		{-45600, "-45 600 FCFA"},
	}
	for _, c := range cases {
		if got := f.Money(c.amount); got != c.want {
			t.Errorf("Money(%v) = %q, want %q", c.amount, got, c.want)
		}
	}
}

func TestMoney_SymbolFollowsSettings(t *testing.T) {
	f := format.New("EUR", "€")
	if got := f.Money(1000); got != "1 000 €" {
		t.Errorf("Money(1000) = %q, want %q", got, "1 000 €")
	}
	if f.Code() != "EUR" {
		t.Errorf("Code() = %q, want EUR", f.Code())
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC)
	if got := format.Date(ts); got != "05/03/2026" {
		t.Errorf("Date = %q, want 05/03/2026", got)
	}
	if got := format.ISODate(ts); got != "2026-03-05" {
		t.Errorf("ISODate = %q, want 2026-03-05", got)
	}
}

func TestPercent(t *testing.T) {
	if got := format.Percent(66.666); got != "66,7%" {
		t.Errorf("Percent = %q, want comma decimal 66,7%%", got)
	}
	if got := format.Percent(0); got != "0,0%" {
		t.Errorf("Percent = %q, want 0,0%%", got)
	}
}
