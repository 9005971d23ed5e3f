package services

import (
	"strconv"
	"strings"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/platform/i18n"
)

// creditTypeAttribute flags products sold under the consumer-credit scheme,
// which earns loyalty points at a different rate.
const creditTypeAttribute = "tipo_producto_credito"

// PriceFormatter turns raw price blocks into the canonical PriceSet for one
// locale. It is cheap to construct and safe for concurrent use.
type PriceFormatter struct {
	locale    i18n.Definition
	formatter *i18n.Formatter
}

// NewPriceFormatter builds a formatter bound to the given locale definition.
func NewPriceFormatter(def i18n.Definition, opts ...i18n.FormatterOption) *PriceFormatter {
	return &PriceFormatter{
		locale:    def,
		formatter: i18n.NewFormatter(def, opts...),
	}
}

// Locale exposes the definition this formatter renders for.
func (f *PriceFormatter) Locale() i18n.Definition {
	return f.locale
}

// Normalize maps the legacy price keys onto canonical kinds (master to list,
// sale to offer, ripley to card), renders formatted strings, and derives the
// discount percentage and loyalty points. Malformed or absent values leave
// their canonical fields unset.
func (f *PriceFormatter) Normalize(block domain.RawPriceBlock, attrs []domain.RawAttribute) domain.PriceSet {
	var ps domain.PriceSet
	if v, ok := block.Master.Float(); ok {
		ps.ListPrice = &v
		ps.FormattedListPrice = f.render(v)
	}
	if v, ok := block.Sale.Float(); ok {
		ps.OfferPrice = &v
		ps.FormattedOfferPrice = f.render(v)
	}
	if v, ok := block.Card.Float(); ok {
		ps.CardPrice = &v
		ps.FormattedCardPrice = f.render(v)
	}
	if v, ok := block.Discount.Float(); ok {
		ps.Discount = &v
		ps.FormattedDiscount = f.render(v)
	}
	if pct, ok := block.Discount.PercentageFloat(); ok {
		ps.DiscountPercentage = &pct
	}
	if min, ok := ps.MinPrice(); ok {
		ps.LoyaltyPoints = f.loyaltyPoints(min, attrs)
	}
	return ps
}

// Pair renders a usage-tagged price for merchandising associations.
func (f *PriceFormatter) Pair(price domain.RawPrice, usage string) (domain.FormattedPrice, bool) {
	v, ok := price.Float()
	if !ok {
		return domain.FormattedPrice{}, false
	}
	return domain.FormattedPrice{
		PriceUsage:          usage,
		PriceValue:          &v,
		FormattedPriceValue: f.render(v),
	}, true
}

func (f *PriceFormatter) render(v float64) string {
	s, err := f.formatter.Format(v)
	if err != nil {
		return ""
	}
	return s
}

func (f *PriceFormatter) loyaltyPoints(min float64, attrs []domain.RawAttribute) int {
	rule := f.locale.Points
	for _, attr := range attrs {
		if attr.Identifier == creditTypeAttribute {
			rule = f.locale.CreditPoints
			break
		}
	}
	return rule.Apply(min)
}

// ParsePriceRange splits the "min - max" range string the catalog attaches to
// grouped listings. Both bounds must parse as integers.
func ParsePriceRange(s string) (min, max int, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	max, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return min, max, true
}
