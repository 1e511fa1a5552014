package agent

import (
	"context"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
	"github.com/kasparro/contentpipe-go/pipeline/template"
)

// ComparisonProductKey is the run context key holding the product to
// compare against. Callers may seed it before a run; when absent the
// agent falls back to a fictional rival and stores it under this key.
const ComparisonProductKey = "comparison_product"

// Comparison assembles the head-to-head comparison page.
//
// The second product comes from the run context under
// ComparisonProductKey, so batch runs can pair real competitors. The
// finished page lands in the run context under "comparison_page".
type Comparison struct {
	Base
}

// NewComparison returns the comparison page agent
// ("comparison-page-agent").
func NewComparison() *Comparison {
	return &Comparison{
		Base: NewBase("comparison-page-agent", "Comparison Page Generator Agent", "data-parser-agent"),
	}
}

// Validate accepts a content.Product with a name.
func (c *Comparison) Validate(input interface{}) bool {
	p, ok := input.(content.Product)
	return ok && p.Name != ""
}

// Execute renders the comparison page for the product against the
// context's comparison product, or a fictional rival when none is set.
func (c *Comparison) Execute(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
	productA, ok := input.(content.Product)
	if !ok {
		return nil, invalidInput(c.ID(), "expected a content.Product input")
	}

	productB, ok := rc.GetOr(ComparisonProductKey, nil).(content.Product)
	if !ok {
		productB = fictionalRival()
		rc.Set(ComparisonProductKey, productB)
	}

	blk, err := block.NewComparison(productB).Generate(productA)
	if err != nil {
		return nil, err
	}

	page, err := template.Comparison{}.Render(template.Input{
		Product: productA,
		Other:   &productB,
		Blocks:  map[string]content.ContentBlock{block.TypeComparison: blk},
	})
	if err != nil {
		return nil, err
	}

	rc.Set("comparison_page", page)
	rc.Log(c.ID(), "generated_comparison_page", map[string]interface{}{
		"product_a": productA.Name,
		"product_b": productB.Name,
	})

	return page, nil
}

// fictionalRival is the stand-in competitor used when the run context
// carries no comparison product.
func fictionalRival() content.Product {
	return content.Product{
		ProductID:         "PROD-FICTIONAL-001",
		Name:              "RadiantGlow Niacinamide Serum",
		Concentration:     "5% Niacinamide",
		SkinTypes:         []content.SkinType{content.SkinOily, content.SkinSensitive, content.SkinNormal},
		KeyIngredients:    []string{"Niacinamide", "Zinc PCA", "Hyaluronic Acid"},
		Benefits:          []string{"Pore minimizing", "Oil control", "Brightening"},
		UsageInstructions: "Apply 3-4 drops morning and evening on cleansed skin",
		SideEffects:       "May cause slight redness in first-time users",
		Price:             599,
		Currency:          "INR",
		Category:          "skincare",
	}
}
