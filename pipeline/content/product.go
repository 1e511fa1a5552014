// Package content defines the domain models shared across the content
// generation pipeline: normalized products, generated questions, content
// blocks, and rendered pages.
package content

import "strings"

// SkinType identifies a skin type a product is formulated for.
type SkinType string

// Supported skin types.
const (
	SkinOily        SkinType = "Oily"
	SkinDry         SkinType = "Dry"
	SkinCombination SkinType = "Combination"
	SkinSensitive   SkinType = "Sensitive"
	SkinNormal      SkinType = "Normal"
)

// SkinTypes returns every supported skin type in declaration order.
func SkinTypes() []SkinType {
	return []SkinType{SkinOily, SkinDry, SkinCombination, SkinSensitive, SkinNormal}
}

// ParseSkinType matches a raw string against the supported skin types,
// ignoring case and surrounding whitespace.
//
// The boolean reports whether a match was found. Unrecognized values are
// dropped by callers rather than guessed at.
func ParseSkinType(raw string) (SkinType, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, st := range SkinTypes() {
		if strings.ToLower(string(st)) == needle {
			return st, true
		}
	}
	return "", false
}

// Product is the normalized internal representation of a skincare
// product. It is produced by the parsing step and consumed by every
// downstream content generator.
//
// Zero values are meaningful: an empty Concentration or SideEffects means
// the source data did not provide one.
type Product struct {
	// Name is the display name of the product.
	Name string `json:"name"`

	// Concentration describes the active concentration, e.g. "10% Vitamin C".
	Concentration string `json:"concentration,omitempty"`

	// SkinTypes lists the skin types the product is formulated for.
	SkinTypes []SkinType `json:"skin_types"`

	// KeyIngredients lists the featured active ingredients.
	KeyIngredients []string `json:"key_ingredients"`

	// Benefits lists the claimed benefits, e.g. "Brightening".
	Benefits []string `json:"benefits"`

	// UsageInstructions is the free-text application guidance.
	UsageInstructions string `json:"usage_instructions"`

	// SideEffects is the free-text side effect disclosure, if any.
	SideEffects string `json:"side_effects,omitempty"`

	// Price is the numeric price in Currency units.
	Price float64 `json:"price"`

	// Currency is the ISO currency code. Defaults to INR when the source
	// does not specify one.
	Currency string `json:"currency"`

	// ProductID is an optional external identifier.
	ProductID string `json:"product_id,omitempty"`

	// Category is the product category. Defaults to "skincare".
	Category string `json:"category"`
}

// SkinTypeNames returns the product's skin types as plain strings,
// preserving order. Convenient for joining into display text.
func (p Product) SkinTypeNames() []string {
	names := make([]string, len(p.SkinTypes))
	for i, st := range p.SkinTypes {
		names[i] = string(st)
	}
	return names
}

// HasIngredient reports whether the product lists an ingredient whose
// name contains the given substring, ignoring case.
func (p Product) HasIngredient(name string) bool {
	needle := strings.ToLower(name)
	for _, ing := range p.KeyIngredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}

// HasSkinType reports whether the product is formulated for the given
// skin type.
func (p Product) HasSkinType(st SkinType) bool {
	for _, have := range p.SkinTypes {
		if have == st {
			return true
		}
	}
	return false
}

// HasBenefit reports whether the product claims the given benefit,
// compared case-insensitively against the full benefit string.
func (p Product) HasBenefit(benefit string) bool {
	needle := strings.ToLower(benefit)
	for _, b := range p.Benefits {
		if strings.ToLower(b) == needle {
			return true
		}
	}
	return false
}
