package domain

// Reasons accumulates named availability flags during one normalization pass.
// Keys are stable reason identifiers; entries are only ever added, never
// cleared, so every stage can observe what earlier stages recorded.
type Reasons map[string]bool

// Reason keys recorded by the normalization pipeline.
const (
	ReasonNoVariations        = "noVariations"
	ReasonNotBuyable          = "notBuyable"
	ReasonNoPricesFromContent = "noPricesFromContent"
	ReasonChildrenZero        = "childrenZero"
	ReasonQuantityZero        = "quantityZero"
	ReasonSKUCountZero        = "numberOfSKUsZero"
)

// Set marks the given reason. A nil receiver is not supported; construct the
// map through NewReasons or a literal before use.
func (r Reasons) Set(key string) {
	r[key] = true
}

// Any reports whether at least one reason is set.
func (r Reasons) Any() bool {
	for _, v := range r {
		if v {
			return true
		}
	}
	return false
}

// NewReasons returns an empty, ready-to-use reason map.
func NewReasons() Reasons {
	return make(Reasons)
}
