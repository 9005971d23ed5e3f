package services

import (
	"sort"
	"strings"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/platform/textutil"
)

// Shipping marker attribute names the catalog uses as delivery flags.
const (
	markerStorePickup    = "RETIRO EN TIENDA"
	markerHomeDelivery   = "DESPACHO A DOMICILIO"
	markerNearbyPickup   = "Retiro Cercano"
	markerRemotePickup   = "RETIRO REMOTO"
	markerCashOnDelivery = "PAGO CONTRA ENTREGA"
)

// Shipping method codes carried on SKUs and the parent price/stock block.
const (
	methodHomeDelivery   = "DESP_DOMICILIO"
	methodStorePickup    = "RET_TIENDA"
	methodNearbyPickup   = "RET_CERCANO"
	methodCityBox        = "RETIRO_CITY_BOX"
	methodCashOnDelivery = "PAGO_CONTRA_ENTREGA"
)

// hiddenAttributeNames are internal markers that never reach the storefront
// attribute lists. They are still scanned for shipping and seller data first.
var hiddenAttributeNames = map[string]struct{}{
	"IsMiraklProduct":          {},
	markerStorePickup:          {},
	markerHomeDelivery:         {},
	markerNearbyPickup:         {},
	markerCashOnDelivery:       {},
	markerRemotePickup:         {},
	"OFFER_STATE":              {},
	"Seller":                   {},
	"SellerID":                 {},
	"imgIcon_GEN_ATTR_SOLOCAR": {},
	"Foto Principal":           {},
}

// restOrderMarker is the placeholder slot in the preferred order that absorbs
// every identifier not named explicitly.
const restOrderMarker = "...rest"

var preferredAttributeOrder = []string{"color", restOrderMarker, "Seller"}

// AttributeGroups is the output of GroupAttributes: the visible descriptive
// list and the defining attributes that drive variant selection.
type AttributeGroups struct {
	Descriptive []domain.DescriptiveAttribute
	Defining    []domain.DefiningAttribute
}

// GroupAttributes classifies raw attributes by usage, drops hidden internal
// markers and unknown usages, annotates defining values with slugs, and
// orders the defining list by the preferred identifier order with an
// alphabetical tie-break. The color_fantasia attribute is surfaced under the
// display name "Color".
func GroupAttributes(raw []domain.RawAttribute) AttributeGroups {
	var groups AttributeGroups
	for _, attr := range raw {
		if _, hidden := hiddenAttributeNames[attr.Name]; hidden {
			continue
		}
		name := attr.Name
		if attr.Identifier == "color_fantasia" {
			name = "Color"
		}
		switch domain.ParseAttributeUsage(attr.Usage) {
		case domain.UsageDescriptive:
			var value string
			if len(attr.Values) > 0 {
				value = attr.Values[0].Values
			}
			groups.Descriptive = append(groups.Descriptive, domain.DescriptiveAttribute{
				ID:          attr.UniqueID,
				Identifier:  attr.Identifier,
				Name:        name,
				Usage:       string(domain.UsageDescriptive),
				Displayable: attr.Displayable.Or(true),
				Value:       value,
			})
		case domain.UsageDefining:
			values := make([]domain.AttributeValue, 0, len(attr.Values))
			for _, v := range attr.Values {
				values = append(values, domain.AttributeValue{
					UniqueID:   v.UniqueID,
					Identifier: v.Identifier,
					Values:     v.Values,
					Slug:       textutil.Slugify(v.Values),
				})
			}
			groups.Defining = append(groups.Defining, domain.DefiningAttribute{
				ID:          attr.UniqueID,
				Identifier:  attr.Identifier,
				Name:        name,
				Usage:       string(domain.UsageDefining),
				Displayable: attr.Displayable.Or(true),
				Values:      values,
			})
		}
	}
	sortDefining(groups.Defining)
	return groups
}

func sortDefining(attrs []domain.DefiningAttribute) {
	sort.SliceStable(attrs, func(i, j int) bool {
		ri, rj := orderRank(attrs[i].Identifier), orderRank(attrs[j].Identifier)
		if ri != rj {
			return ri < rj
		}
		return attrs[i].Identifier < attrs[j].Identifier
	})
}

// orderRank places explicitly named identifiers at their configured slot and
// everything else at the rest marker's slot.
func orderRank(identifier string) int {
	rest := len(preferredAttributeOrder)
	for i, name := range preferredAttributeOrder {
		if name == restOrderMarker {
			rest = i
			continue
		}
		if strings.EqualFold(name, identifier) {
			if i > rest {
				return rest + i
			}
			return i
		}
	}
	return rest
}

// ShippingFromAttributes merges delivery flags found among the raw attribute
// names into base. Flags are only ever switched on here; absence of a marker
// never clears a flag already set (marketplace products imply home delivery
// before attributes are consulted).
func ShippingFromAttributes(raw []domain.RawAttribute, base domain.ShippingFlags) domain.ShippingFlags {
	for _, attr := range raw {
		switch attr.Name {
		case markerHomeDelivery:
			base.HomeDelivery = true
		case markerStorePickup:
			base.StorePickup = true
		case markerNearbyPickup, markerRemotePickup:
			base.NearbyPickup = true
		case markerCashOnDelivery:
			base.CashOnDelivery = true
		}
	}
	return refineNearbyPickup(base)
}

// ShippingFromMethods derives delivery flags from the method code list
// carried on SKUs and the parent price/stock block.
func ShippingFromMethods(methods []string) domain.ShippingFlags {
	var flags domain.ShippingFlags
	for _, m := range methods {
		switch strings.TrimSpace(m) {
		case methodHomeDelivery:
			flags.HomeDelivery = true
		case methodStorePickup:
			flags.StorePickup = true
		case methodNearbyPickup, methodCityBox:
			flags.NearbyPickup = true
		case methodCashOnDelivery:
			flags.CashOnDelivery = true
		}
	}
	return refineNearbyPickup(flags)
}

// MergeShipping ORs two flag sets and re-applies the nearby pickup rule.
func MergeShipping(a, b domain.ShippingFlags) domain.ShippingFlags {
	merged := domain.ShippingFlags{
		HomeDelivery:   a.HomeDelivery || b.HomeDelivery,
		StorePickup:    a.StorePickup || b.StorePickup,
		NearbyPickup:   a.NearbyPickup || b.NearbyPickup,
		CashOnDelivery: a.CashOnDelivery || b.CashOnDelivery,
	}
	return refineNearbyPickup(merged)
}

// Nearby pickup is a refinement of home delivery; it cannot be offered alone.
func refineNearbyPickup(f domain.ShippingFlags) domain.ShippingFlags {
	if !f.HomeDelivery {
		f.NearbyPickup = false
	}
	return f
}

// sellerIDFromAttributes extracts the marketplace seller identifier when the
// catalog record carries one.
func sellerIDFromAttributes(raw []domain.RawAttribute) string {
	for _, attr := range raw {
		if attr.Name != "SellerID" {
			continue
		}
		if len(attr.Values) > 0 {
			return strings.TrimSpace(attr.Values[0].Values)
		}
	}
	return ""
}

// hasMarketplaceMarker reports whether the attribute list flags the product
// as a marketplace listing.
func hasMarketplaceMarker(raw []domain.RawAttribute) bool {
	for _, attr := range raw {
		if attr.Name == "IsMiraklProduct" {
			return true
		}
	}
	return false
}
