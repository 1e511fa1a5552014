// Package block derives reusable content fragments from normalized
// product data.
//
// Each Generator produces one typed content.ContentBlock (benefits,
// usage, safety, ingredients, pricing, comparison) that page templates
// assemble into complete pages. Generators are pure functions of their
// product input: the same product always yields the same block, which
// keeps pipeline runs reproducible.
//
// Generators are registered in a Registry, a plain lookup table keyed by
// block type. Page agents walk the block types their template requires
// and generate each one, so adding a new block type means writing one
// Generator and registering it.
package block

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Block type identifiers. Templates declare the block types they consume
// using these values.
const (
	TypeBenefits    = "benefits-block"
	TypeUsage       = "usage-block"
	TypeSafety      = "safety-block"
	TypeIngredients = "ingredients-block"
	TypePricing     = "pricing-block"
	TypeComparison  = "comparison-block"
)

// ErrUnknownType is returned when a registry lookup misses.
var ErrUnknownType = errors.New("unknown block type")

// Generator derives one content block from a normalized product.
//
// Implementations must be safe for concurrent use; the stock generators
// are stateless values.
type Generator interface {
	// Type returns the block type identifier, e.g. "benefits-block".
	Type() string

	// Generate derives the block from the product.
	Generate(p content.Product) (content.ContentBlock, error)
}

// Registry is a lookup table of generators keyed by block type.
type Registry map[string]Generator

// NewRegistry builds a registry from the given generators. A later
// generator with a duplicate type replaces the earlier one.
func NewRegistry(gens ...Generator) Registry {
	r := make(Registry, len(gens))
	for _, g := range gens {
		if g == nil {
			continue
		}
		r[g.Type()] = g
	}
	return r
}

// Defaults returns a registry holding the five single-product
// generators: benefits, usage, safety, ingredients, and pricing.
//
// The comparison generator is excluded because it needs a second
// product; callers construct it per run with NewComparison.
func Defaults() Registry {
	return NewRegistry(Benefits{}, Usage{}, Safety{}, Ingredients{}, Pricing{})
}

// Get returns the generator registered for the block type.
func (r Registry) Get(typ string) (Generator, bool) {
	g, ok := r[typ]
	return g, ok
}

// Types returns the registered block types in sorted order.
func (r Registry) Types() []string {
	types := make([]string, 0, len(r))
	for typ := range r {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Generate looks up the generator for typ and runs it against the
// product. Returns ErrUnknownType when no generator is registered.
func (r Registry) Generate(typ string, p content.Product) (content.ContentBlock, error) {
	g, ok := r[typ]
	if !ok {
		return content.ContentBlock{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return g.Generate(p)
}
