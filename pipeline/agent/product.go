package agent

import (
	"context"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
	"github.com/kasparro/contentpipe-go/pipeline/template"
)

// ProductPage assembles the e-commerce product page.
//
// It generates the standard content blocks and renders them through the
// product page template. The finished page lands in the run context
// under "product_page".
type ProductPage struct {
	Base

	blocks block.Registry
}

// NewProductPage returns the product page agent ("product-page-agent").
func NewProductPage() *ProductPage {
	return &ProductPage{
		Base:   NewBase("product-page-agent", "Product Page Generator Agent", "data-parser-agent"),
		blocks: block.Defaults(),
	}
}

// Validate accepts a content.Product with a name.
func (p *ProductPage) Validate(input interface{}) bool {
	prod, ok := input.(content.Product)
	return ok && prod.Name != ""
}

// Execute renders the product page for the given product.
func (p *ProductPage) Execute(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
	product, ok := input.(content.Product)
	if !ok {
		return nil, invalidInput(p.ID(), "expected a content.Product input")
	}

	page, err := template.ProductPage{}.Render(template.Input{
		Product: product,
		Blocks:  processBlocks(p.ID(), p.blocks, product, rc),
	})
	if err != nil {
		return nil, err
	}

	rc.Set("product_page", page)
	rc.Log(p.ID(), "generated_product_page", map[string]interface{}{
		"product_name":       product.Name,
		"blocks_used":        page.BlocksUsed,
		"sections_generated": countSections(page),
	})

	return page, nil
}

// processBlocks runs every generator in the registry against the
// product. A generator failure is logged as a block_error and the block
// is skipped; page templates decide whether the missing block is fatal.
func processBlocks(agentID string, reg block.Registry, p content.Product, rc *pipeline.Context) map[string]content.ContentBlock {
	blocks := make(map[string]content.ContentBlock, len(reg))
	for _, typ := range reg.Types() {
		blk, err := reg.Generate(typ, p)
		if err != nil {
			rc.Log(agentID, "block_error", map[string]interface{}{
				"block_id": typ,
				"error":    err.Error(),
			})
			continue
		}
		blocks[typ] = blk
		rc.Log(agentID, "processed_block", map[string]interface{}{
			"block_id": typ,
			"success":  true,
		})
	}
	return blocks
}

// countSections counts the populated top-level sections of a rendered
// product page.
func countSections(page content.GeneratedPage) int {
	sections := []string{
		"hero",
		"key_features",
		"benefits_section",
		"ingredients_section",
		"usage_section",
		"safety_section",
		"pricing_section",
	}

	count := 0
	for _, name := range sections {
		switch section := page.Content[name].(type) {
		case map[string]interface{}:
			if len(section) > 0 {
				count++
			}
		case []map[string]interface{}:
			if len(section) > 0 {
				count++
			}
		default:
			if section != nil {
				count++
			}
		}
	}
	return count
}
