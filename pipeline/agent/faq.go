package agent

import (
	"context"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
	"github.com/kasparro/contentpipe-go/pipeline/template"
)

// FAQPage assembles the FAQ page for a product.
//
// It generates the standard content blocks, pulls the question set the
// question generator left in the run context, and renders both through
// the FAQ template. The finished page lands in the run context under
// "faq_page".
type FAQPage struct {
	Base

	blocks block.Registry
}

// NewFAQPage returns the FAQ page agent ("faq-page-agent").
func NewFAQPage() *FAQPage {
	return &FAQPage{
		Base:   NewBase("faq-page-agent", "FAQ Page Generator Agent", "question-generator-agent"),
		blocks: block.Defaults(),
	}
}

// Validate accepts a content.Product with a name.
func (f *FAQPage) Validate(input interface{}) bool {
	p, ok := input.(content.Product)
	return ok && p.Name != ""
}

// Execute renders the FAQ page from the product and the question set
// stored in the run context. A missing question set yields a page with
// no FAQ entries rather than an error.
func (f *FAQPage) Execute(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
	product, ok := input.(content.Product)
	if !ok {
		return nil, invalidInput(f.ID(), "expected a content.Product input")
	}

	questions, _ := rc.GetOr("question_set", nil).(*content.QuestionSet)

	page, err := template.FAQ{}.Render(template.Input{
		Product:   product,
		Questions: questions,
		Blocks:    processBlocks(f.ID(), f.blocks, product, rc),
	})
	if err != nil {
		return nil, err
	}

	rc.Set("faq_page", page)
	rc.Log(f.ID(), "generated_faq_page", map[string]interface{}{
		"product_name":    product.Name,
		"total_questions": page.Content["total_questions"],
	})

	return page, nil
}
