package i18n

import (
	"errors"
	"math"
	"testing"
)

func TestForCountry(t *testing.T) {
	def, err := ForCountry("Chile")
	if err != nil {
		t.Fatalf("ForCountry: %v", err)
	}
	if def.Currency != "CLP" {
		t.Errorf("Currency = %q, want CLP", def.Currency)
	}

	if _, err := ForCountry("argentina"); !errors.Is(err, ErrUnknownLocale) {
		t.Fatalf("err = %v, want ErrUnknownLocale", err)
	}
}

func TestForTagClosestMatch(t *testing.T) {
	cases := []struct {
		tag     string
		country string
	}{
		{"es-CL", "chile"},
		{"es-PE", "peru"},
		{"es", "chile"},
		{"es-419", "chile"},
	}
	for _, tc := range cases {
		def, err := ForTag(tc.tag)
		if err != nil {
			t.Fatalf("ForTag(%q): %v", tc.tag, err)
		}
		if def.Country != tc.country {
			t.Errorf("ForTag(%q) = %q, want %q", tc.tag, def.Country, tc.country)
		}
	}

	if _, err := ForTag("not a tag"); !errors.Is(err, ErrUnknownLocale) {
		t.Fatalf("err = %v, want ErrUnknownLocale", err)
	}
}

func TestPointsRuleApply(t *testing.T) {
	cases := []struct {
		name   string
		rule   PointsRule
		amount float64
		want   int
	}{
		{"chile ceil", Chile.Points, 8000, 64},
		{"chile ceil fraction", Chile.Points, 8001, 65},
		{"chile credit", Chile.CreditPoints, 250500, 251},
		{"peru floor", Peru.Points, 124.9, 99},
		{"zero divisor", PointsRule{}, 5000, 0},
	}
	for _, tc := range cases {
		if got := tc.rule.Apply(tc.amount); got != tc.want {
			t.Errorf("%s: Apply(%v) = %d, want %d", tc.name, tc.amount, got, tc.want)
		}
	}
}

func TestFormatterChile(t *testing.T) {
	f := NewFormatter(Chile)

	cases := []struct {
		amount float64
		want   string
	}{
		{12990, "$12.990"},
		{10000, "$10.000"},
		{999, "$999"},
		{1234567, "$1.234.567"},
		{-4990, "-$4.990"},
	}
	for _, tc := range cases {
		got, err := f.Format(tc.amount)
		if err != nil {
			t.Fatalf("Format(%v): %v", tc.amount, err)
		}
		if got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatterPeru(t *testing.T) {
	f := NewFormatter(Peru)

	cases := []struct {
		amount float64
		want   string
	}{
		{1250.5, "S/ 1,250.50"},
		{1250, "S/ 1,250"},
		{99.99, "S/ 99.99"},
	}
	for _, tc := range cases {
		got, err := f.Format(tc.amount)
		if err != nil {
			t.Fatalf("Format(%v): %v", tc.amount, err)
		}
		if got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatterInvalidAmount(t *testing.T) {
	f := NewFormatter(Chile)
	if _, err := f.Format(math.NaN()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}

	permissive := NewFormatter(Chile, WithPermissiveMode())
	got, err := permissive.Format(math.Inf(1))
	if err != nil {
		t.Fatalf("permissive Format: %v", err)
	}
	if got != "" {
		t.Errorf("permissive Format = %q, want empty", got)
	}
}
