// Package template assembles content blocks into complete, export-ready
// pages.
//
// A Template declares the block types it needs and renders an Input
// (product, optional question set and comparison product, generated
// blocks) into a content.GeneratedPage. Templates never derive content
// themselves; everything they place on a page comes from the blocks,
// which keeps page structure and content logic independently testable.
package template

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Template identifiers, recorded on rendered pages.
const (
	IDFAQ         = "faq-template"
	IDProductPage = "product-page-template"
	IDComparison  = "comparison-template"
)

// Registry lookup and validation failures.
var (
	ErrUnknownTemplate = errors.New("unknown template")
	ErrMissingBlock    = errors.New("missing required block")
)

// Template renders one page type from generated content blocks.
type Template interface {
	// Type returns the page type this template produces.
	Type() content.PageType

	// RequiredBlocks lists the block types the template consumes.
	RequiredBlocks() []string

	// Render assembles the page. Missing optional inputs degrade the
	// page rather than failing it; only a structurally unusable input
	// returns an error.
	Render(in Input) (content.GeneratedPage, error)
}

// Input carries everything a template may consume. Templates ignore the
// fields they have no use for.
type Input struct {
	// Product is the product the page is about.
	Product content.Product

	// Other is the product compared against, set for comparison pages.
	Other *content.Product

	// Questions is the generated question set, set for FAQ pages.
	Questions *content.QuestionSet

	// Blocks maps block type to its generated block.
	Blocks map[string]content.ContentBlock
}

// Registry is a lookup table of templates keyed by page type.
type Registry map[content.PageType]Template

// NewRegistry builds a registry from the given templates. A later
// template with a duplicate page type replaces the earlier one.
func NewRegistry(tpls ...Template) Registry {
	r := make(Registry, len(tpls))
	for _, tpl := range tpls {
		if tpl == nil {
			continue
		}
		r[tpl.Type()] = tpl
	}
	return r
}

// Defaults returns a registry holding the three stock templates: FAQ,
// product page, and comparison.
func Defaults() Registry {
	return NewRegistry(FAQ{}, ProductPage{}, Comparison{})
}

// Get returns the template registered for the page type.
func (r Registry) Get(pt content.PageType) (Template, bool) {
	tpl, ok := r[pt]
	return tpl, ok
}

// Types returns the registered page types in sorted order.
func (r Registry) Types() []content.PageType {
	types := make([]content.PageType, 0, len(r))
	for pt := range r {
		types = append(types, pt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Render looks up the template for the page type, verifies its required
// blocks are all present, and renders the page.
func (r Registry) Render(pt content.PageType, in Input) (content.GeneratedPage, error) {
	tpl, ok := r[pt]
	if !ok {
		return content.GeneratedPage{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, pt)
	}
	if missing := MissingBlocks(tpl, in.Blocks); len(missing) > 0 {
		return content.GeneratedPage{}, fmt.Errorf("%w: %s", ErrMissingBlock, strings.Join(missing, ", "))
	}
	return tpl.Render(in)
}

// MissingBlocks returns the template's required block types that are
// absent from blocks, in declaration order.
func MissingBlocks(tpl Template, blocks map[string]content.ContentBlock) []string {
	var missing []string
	for _, typ := range tpl.RequiredBlocks() {
		if _, ok := blocks[typ]; !ok {
			missing = append(missing, typ)
		}
	}
	return missing
}

// blockValue returns a content value from the named block, or def when
// the block or key is absent.
func blockValue(blocks map[string]content.ContentBlock, typ, key string, def interface{}) interface{} {
	blk, ok := blocks[typ]
	if !ok {
		return def
	}
	return blk.Get(key, def)
}

// blockString is blockValue for string values.
func blockString(blocks map[string]content.ContentBlock, typ, key string) string {
	if blk, ok := blocks[typ]; ok {
		return blk.GetString(key, "")
	}
	return ""
}

// blockStrings is blockValue for string-list values.
func blockStrings(blocks map[string]content.ContentBlock, typ, key string) []string {
	if blk, ok := blocks[typ]; ok {
		if s := blk.GetStrings(key); s != nil {
			return s
		}
	}
	return []string{}
}

// blockTypes returns the block types present in blocks, sorted.
func blockTypes(blocks map[string]content.ContentBlock) []string {
	types := make([]string, 0, len(blocks))
	for typ := range blocks {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// titleWords capitalizes the first letter of each space-separated word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
