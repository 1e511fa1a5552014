package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// QuestionGenerator produces the categorized questions users ask about
// a product.
//
// Each category carries a few question templates. Templates that
// reference a specific ingredient, skin type, or benefit are kept only
// when the product actually has it, so the set stays truthful to the
// data. Every question gets a preliminary answer from the product
// fields; the FAQ page agent later replaces these with richer answers
// drawn from the content blocks.
//
// The result is stored in the run context under "question_set", with
// the flat question list additionally under "questions".
type QuestionGenerator struct {
	Base
}

// NewQuestionGenerator returns the question generation agent
// ("question-generator-agent").
func NewQuestionGenerator() *QuestionGenerator {
	return &QuestionGenerator{
		Base: NewBase("question-generator-agent", "Question Generator Agent", "data-parser-agent"),
	}
}

// questionTemplates holds the question candidates per category.
// {product_name} and friends are filled from the product.
var questionTemplates = map[content.QuestionCategory][]string{
	content.CategoryInformational: {
		"What is {product_name}?",
		"What does {product_name} do?",
		"What makes {product_name} unique?",
		"Is {product_name} suitable for daily use?",
	},
	content.CategorySafety: {
		"Is {product_name} safe to use?",
		"Are there any side effects of using {product_name}?",
		"Can I use {product_name} if I have sensitive skin?",
		"Should I do a patch test before using {product_name}?",
	},
	content.CategoryUsage: {
		"How do I use {product_name}?",
		"When should I apply {product_name}?",
		"How much {product_name} should I use?",
		"Can I use {product_name} with other products?",
	},
	content.CategoryPurchase: {
		"What is the price of {product_name}?",
		"Is {product_name} worth the price?",
		"Where can I buy {product_name}?",
		"Are there any discounts available for {product_name}?",
	},
	content.CategoryComparison: {
		"How does {product_name} compare to other serums?",
		"Is {product_name} better than other Vitamin C serums?",
	},
	content.CategoryIngredients: {
		"What are the key ingredients in {product_name}?",
		"What is the concentration of Vitamin C in {product_name}?",
		"Does {product_name} contain Hyaluronic Acid?",
	},
	content.CategoryEffectiveness: {
		"How long does it take to see results from {product_name}?",
		"Does {product_name} really work for brightening?",
		"Can {product_name} help with dark spots?",
	},
	content.CategorySuitability: {
		"Is {product_name} suitable for oily skin?",
		"Can I use {product_name} if I have combination skin?",
		"Who should use {product_name}?",
	},
}

// questionSourceFields names the product fields each category's
// questions are grounded on.
var questionSourceFields = map[content.QuestionCategory][]string{
	content.CategoryInformational: {"name", "benefits", "key_ingredients"},
	content.CategorySafety:        {"side_effects", "skin_types"},
	content.CategoryUsage:         {"usage_instructions"},
	content.CategoryPurchase:      {"price", "currency"},
	content.CategoryComparison:    {"name", "key_ingredients", "benefits", "price"},
	content.CategoryIngredients:   {"key_ingredients", "concentration"},
	content.CategoryEffectiveness: {"benefits"},
	content.CategorySuitability:   {"skin_types", "side_effects"},
}

// questionRanks orders categories by importance; a question's priority
// is its category rank plus its index within the category, lower being
// more important.
var questionRanks = map[content.QuestionCategory]int{
	content.CategoryUsage:         1,
	content.CategoryInformational: 2,
	content.CategorySafety:        3,
	content.CategoryEffectiveness: 4,
	content.CategoryIngredients:   5,
	content.CategorySuitability:   6,
	content.CategoryPurchase:      7,
	content.CategoryComparison:    8,
}

// Validate accepts a content.Product with a name.
func (g *QuestionGenerator) Validate(input interface{}) bool {
	p, ok := input.(content.Product)
	return ok && p.Name != ""
}

// Execute generates the categorized question set for the product.
func (g *QuestionGenerator) Execute(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
	product, ok := input.(content.Product)
	if !ok {
		return nil, invalidInput(g.ID(), "expected a content.Product input")
	}

	qs := &content.QuestionSet{ProductName: product.Name}
	id := 1
	for _, category := range content.QuestionCategories() {
		for i, tpl := range relevantTemplates(product, category) {
			qs.Add(content.Question{
				ID:           fmt.Sprintf("Q%d", id),
				Text:         fillTemplate(tpl, product),
				Category:     category,
				Answer:       preliminaryAnswer(product, category),
				SourceFields: questionSourceFields[category],
				Priority:     categoryRank(category) + i,
			})
			id++
		}
	}

	rc.Set("question_set", qs)
	rc.Set("questions", qs.Questions)
	rc.Log(g.ID(), "generated_questions", map[string]interface{}{
		"total_questions": len(qs.Questions),
		"categories":      categoryNames(qs.Questions),
	})

	return qs, nil
}

// relevantTemplates filters a category's templates to those the
// product's data supports, capped at three per category.
func relevantTemplates(p content.Product, category content.QuestionCategory) []string {
	relevant := []string{}
	for _, tpl := range questionTemplates[category] {
		if templateApplies(tpl, p) {
			relevant = append(relevant, tpl)
		}
	}
	if len(relevant) > 3 {
		relevant = relevant[:3]
	}
	return relevant
}

// templateApplies reports whether a template's subject matches the
// product. Templates naming an ingredient, skin type, or benefit the
// product lacks are dropped; generic templates always apply.
func templateApplies(tpl string, p content.Product) bool {
	t := strings.ToLower(tpl)
	switch {
	case strings.Contains(t, "vitamin c"):
		return p.HasIngredient("vitamin c")
	case strings.Contains(t, "hyaluronic"):
		return p.HasIngredient("hyaluronic")
	case strings.Contains(t, "oily"):
		return p.HasSkinType(content.SkinOily)
	case strings.Contains(t, "combination"):
		return p.HasSkinType(content.SkinCombination)
	case strings.Contains(t, "brightening"), strings.Contains(t, "dark spots"):
		return p.HasBenefit("brightening") || p.HasBenefit("fades dark spots")
	}
	return true
}

// fillTemplate substitutes the product placeholders into a template.
func fillTemplate(tpl string, p content.Product) string {
	concentration := p.Concentration
	if concentration == "" {
		concentration = "specified concentration"
	}
	benefits := "various benefits"
	if len(p.Benefits) > 0 {
		benefits = strings.Join(p.Benefits, ", ")
	}
	ingredients := "key ingredients"
	if len(p.KeyIngredients) > 0 {
		ingredients = strings.Join(p.KeyIngredients, ", ")
	}

	return strings.NewReplacer(
		"{product_name}", p.Name,
		"{concentration}", concentration,
		"{benefits}", benefits,
		"{ingredients}", ingredients,
	).Replace(tpl)
}

// preliminaryAnswer derives a first-pass answer from the product
// fields alone.
func preliminaryAnswer(p content.Product, category content.QuestionCategory) string {
	switch category {
	case content.CategoryInformational:
		return fmt.Sprintf("%s is a skincare product featuring %s for %s.",
			p.Name, strings.Join(p.KeyIngredients, ", "), strings.ToLower(strings.Join(p.Benefits, ", ")))

	case content.CategorySafety:
		if p.SideEffects != "" {
			return fmt.Sprintf("%s. Always perform a patch test before first use.", p.SideEffects)
		}
		return "This product is generally safe for use. Perform a patch test before first use."

	case content.CategoryUsage:
		if p.UsageInstructions != "" {
			return p.UsageInstructions
		}
		return "Please refer to the product label for usage instructions."

	case content.CategoryPurchase:
		return fmt.Sprintf("%s is priced at ₹%s.", p.Name, strconv.FormatFloat(p.Price, 'f', -1, 64))

	case content.CategoryIngredients:
		return fmt.Sprintf("Key ingredients include %s.", strings.Join(p.KeyIngredients, ", "))

	case content.CategoryEffectiveness:
		return fmt.Sprintf("%s helps with %s.", p.Name, strings.ToLower(strings.Join(p.Benefits, ", ")))

	case content.CategorySuitability:
		return fmt.Sprintf("%s is formulated for %s skin types.", p.Name, strings.Join(p.SkinTypeNames(), ", "))

	case content.CategoryComparison:
		return "For detailed comparisons, please see our comparison page."
	}

	return fmt.Sprintf("Please refer to the product information for %s.", p.Name)
}

func categoryRank(category content.QuestionCategory) int {
	if rank, ok := questionRanks[category]; ok {
		return rank
	}
	return 5
}

// categoryNames lists the distinct categories present, in first-seen
// order.
func categoryNames(questions []content.Question) []string {
	seen := make(map[string]bool, len(questions))
	names := []string{}
	for _, q := range questions {
		c := string(q.Category)
		if !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	return names
}
