// Package i18n carries the locale definitions used for currency formatting
// and loyalty point derivation. A Definition is selected once per pipeline
// invocation and threaded explicitly; there is no process-wide singleton.
package i18n

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidAmount is returned when a non-finite amount reaches the
// formatter outside permissive mode.
var ErrInvalidAmount = errors.New("i18n: invalid amount")

// ErrUnknownLocale is returned when no definition matches the requested
// country or language tag.
var ErrUnknownLocale = errors.New("i18n: unknown locale")

// Rounding selects how fractional loyalty points are resolved.
type Rounding string

const (
	// RoundCeil rounds points up.
	RoundCeil Rounding = "ceil"
	// RoundFloor rounds points down.
	RoundFloor Rounding = "floor"
)

// PointsRule converts a price into loyalty points. The divisor differs per
// locale and is deliberately configuration, not a constant: the two shipped
// locales disagree on both rate and rounding direction.
type PointsRule struct {
	Divisor  float64
	Rounding Rounding
}

// Apply converts the given amount into points. A zero divisor yields zero.
func (r PointsRule) Apply(amount float64) int {
	if r.Divisor == 0 {
		return 0
	}
	q := amount / r.Divisor
	if r.Rounding == RoundFloor {
		return int(math.Floor(q))
	}
	return int(math.Ceil(q))
}

// Definition is one locale's complete money-rendering contract.
type Definition struct {
	Country           string
	Tag               language.Tag
	Currency          string
	ThousandSeparator string
	DecimalSeparator  string
	Prefix            string
	Digits            int

	// PostFormat applies locale-specific cleanup to the rendered string.
	PostFormat func(string) string

	// Points is the default conversion rule; CreditPoints applies when the
	// product carries a credit-type attribute.
	Points       PointsRule
	CreditPoints PointsRule
}

var (
	// Chile renders CLP with dot thousand grouping and no decimals.
	Chile = Definition{
		Country:           "chile",
		Tag:               language.MustParse("es-CL"),
		Currency:          "CLP",
		ThousandSeparator: ".",
		DecimalSeparator:  ",",
		Prefix:            "$",
		Digits:            0,
		Points:            PointsRule{Divisor: 125, Rounding: RoundCeil},
		CreditPoints:      PointsRule{Divisor: 1000, Rounding: RoundCeil},
	}

	// Peru renders PEN with comma grouping, two decimals, and collapses
	// whole-sol amounts.
	Peru = Definition{
		Country:           "peru",
		Tag:               language.MustParse("es-PE"),
		Currency:          "PEN",
		ThousandSeparator: ",",
		DecimalSeparator:  ".",
		Prefix:            "S/ ",
		Digits:            2,
		PostFormat: func(v string) string {
			v = strings.Replace(v, "/.", "/ ", 1)
			return strings.TrimSuffix(v, ".00")
		},
		Points:       PointsRule{Divisor: 1.25, Rounding: RoundFloor},
		CreditPoints: PointsRule{Divisor: 1000, Rounding: RoundCeil},
	}
)

var definitions = []Definition{Chile, Peru}

var localeMatcher = language.NewMatcher([]language.Tag{Chile.Tag, Peru.Tag})

// ForCountry resolves a definition by its configured country name.
func ForCountry(name string) (Definition, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, def := range definitions {
		if def.Country == name {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownLocale, name)
}

// ForTag resolves a definition by BCP 47 tag, using closest-match semantics
// so "es" or "es-419" still land on a shipped locale.
func ForTag(raw string) (Definition, error) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownLocale, raw)
	}
	_, index, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownLocale, raw)
	}
	return definitions[index], nil
}
