package services

import (
	"encoding/json"
	"testing"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/platform/i18n"
)

func priceBlock(master, sale, card string) domain.RawPriceBlock {
	block := domain.RawPriceBlock{}
	block.Master.Value = json.Number(master)
	block.Sale.Value = json.Number(sale)
	block.Card.Value = json.Number(card)
	return block
}

func TestPriceFormatter_Normalize_MapsKindsAndFormats(t *testing.T) {
	f := NewPriceFormatter(i18n.Chile)

	ps := f.Normalize(priceBlock("12990", "9990", "8990"), nil)

	if ps.ListPrice == nil || *ps.ListPrice != 12990 {
		t.Fatalf("list price = %v", ps.ListPrice)
	}
	if ps.FormattedListPrice != "$12.990" {
		t.Fatalf("formatted list = %q", ps.FormattedListPrice)
	}
	if ps.OfferPrice == nil || *ps.OfferPrice != 9990 {
		t.Fatalf("offer price = %v", ps.OfferPrice)
	}
	if ps.CardPrice == nil || *ps.CardPrice != 8990 {
		t.Fatalf("card price = %v", ps.CardPrice)
	}
	if ps.FormattedCardPrice != "$8.990" {
		t.Fatalf("formatted card = %q", ps.FormattedCardPrice)
	}
}

func TestPriceFormatter_Normalize_SkipsMalformedValues(t *testing.T) {
	f := NewPriceFormatter(i18n.Chile)

	block := domain.RawPriceBlock{}
	block.Master.Value = json.Number("not-a-number")
	block.Sale.Value = json.Number("")

	ps := f.Normalize(block, nil)
	if !ps.Empty() {
		t.Fatalf("price set should be empty: %+v", ps)
	}
	if ps.LoyaltyPoints != 0 {
		t.Fatalf("loyalty points = %d, want 0", ps.LoyaltyPoints)
	}
}

func TestPriceFormatter_LoyaltyPointsUseMinPrice(t *testing.T) {
	f := NewPriceFormatter(i18n.Chile)

	// Card price wins over offer and list; 8000/125 rounds up to 64.
	ps := f.Normalize(priceBlock("10000", "9000", "8000"), nil)
	if ps.LoyaltyPoints != 64 {
		t.Fatalf("loyalty points = %d, want 64", ps.LoyaltyPoints)
	}
}

func TestPriceFormatter_CreditProductsEarnAtCreditRate(t *testing.T) {
	f := NewPriceFormatter(i18n.Chile)

	attrs := []domain.RawAttribute{rawAttr(creditTypeAttribute, "Tipo producto", "descriptive", "credito")}
	ps := f.Normalize(priceBlock("", "250500", ""), attrs)
	// ceil(250500/1000) = 251 under the credit rule.
	if ps.LoyaltyPoints != 251 {
		t.Fatalf("loyalty points = %d, want 251", ps.LoyaltyPoints)
	}
}

func TestPriceFormatter_DiscountPercentage(t *testing.T) {
	f := NewPriceFormatter(i18n.Chile)

	block := priceBlock("10000", "7500", "")
	block.Discount.Value = json.Number("2500")
	block.Discount.Percentage = json.Number("25")

	ps := f.Normalize(block, nil)
	if ps.Discount == nil || *ps.Discount != 2500 {
		t.Fatalf("discount = %v", ps.Discount)
	}
	if ps.DiscountPercentage == nil || *ps.DiscountPercentage != 25 {
		t.Fatalf("discount percentage = %v", ps.DiscountPercentage)
	}
}

func TestPriceFormatter_PeruFormatting(t *testing.T) {
	f := NewPriceFormatter(i18n.Peru)

	ps := f.Normalize(priceBlock("1250.50", "", ""), nil)
	if ps.FormattedListPrice != "S/ 1,250.50" {
		t.Fatalf("formatted list = %q", ps.FormattedListPrice)
	}

	ps = f.Normalize(priceBlock("1250", "", ""), nil)
	if ps.FormattedListPrice != "S/ 1,250" {
		t.Fatalf("whole amounts drop decimals: %q", ps.FormattedListPrice)
	}
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max int
		ok       bool
	}{
		{"9990 - 19990", 9990, 19990, true},
		{"9990-19990", 9990, 19990, true},
		{"9990", 0, 0, false},
		{"a - b", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		min, max, ok := ParsePriceRange(tt.in)
		if ok != tt.ok || min != tt.min || max != tt.max {
			t.Fatalf("ParsePriceRange(%q) = %d, %d, %v", tt.in, min, max, ok)
		}
	}
}
