package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// FAQ renders a frequently-asked-questions page: numbered Q&A entries
// with answers synthesized from the content blocks, category groupings,
// and quick navigation links.
type FAQ struct{}

// Type returns content.PageFAQ.
func (FAQ) Type() content.PageType { return content.PageFAQ }

// RequiredBlocks lists the five product blocks the answers draw from.
func (FAQ) RequiredBlocks() []string {
	return []string{
		block.TypeBenefits,
		block.TypeUsage,
		block.TypeSafety,
		block.TypeIngredients,
		block.TypePricing,
	}
}

// Display labels for category navigation links.
var categoryLabels = map[content.QuestionCategory]string{
	content.CategoryInformational: "General Information",
	content.CategoryUsage:         "How to Use",
	content.CategorySafety:        "Safety & Precautions",
	content.CategoryPurchase:      "Pricing & Purchase",
	content.CategoryComparison:    "Comparisons",
	content.CategoryIngredients:   "Ingredients",
	content.CategoryEffectiveness: "Results & Effectiveness",
	content.CategorySuitability:   "Skin Type Suitability",
}

// Render assembles the FAQ page. A nil question set renders an empty
// page skeleton rather than failing.
func (f FAQ) Render(in Input) (content.GeneratedPage, error) {
	productName := in.Product.Name

	var questions []content.Question
	if in.Questions != nil {
		questions = in.Questions.Questions
	}

	entries := buildFAQEntries(questions, in.Blocks, productName)
	categorized := categorizeFAQs(entries)

	pageTitle := fmt.Sprintf("Frequently Asked Questions - %s", productName)
	pageContent := map[string]interface{}{
		"page_title":       pageTitle,
		"product_name":     productName,
		"total_questions":  len(entries),
		"faq_entries":      entries,
		"faqs_by_category": categorized,
		"quick_links":      quickLinks(categorized),
		"related_info": map[string]interface{}{
			"usage_summary":  blockString(in.Blocks, block.TypeUsage, "quick_guide"),
			"safety_summary": blockString(in.Blocks, block.TypeSafety, "safety_summary"),
		},
	}

	return content.GeneratedPage{
		Type:         content.PageFAQ,
		Title:        pageTitle,
		Content:      pageContent,
		TemplateUsed: IDFAQ,
		BlocksUsed:   blockTypes(in.Blocks),
		GeneratedAt:  time.Now(),
	}, nil
}

func buildFAQEntries(questions []content.Question, blocks map[string]content.ContentBlock, productName string) []map[string]interface{} {
	entries := make([]map[string]interface{}, 0, len(questions))
	for i, q := range questions {
		entries = append(entries, map[string]interface{}{
			"id":       fmt.Sprintf("faq-%d", i+1),
			"question": q.Text,
			"answer":   answerFor(q, blocks, productName),
			"category": string(q.Category),
			"priority": q.Priority,
		})
	}
	return entries
}

// answerFor synthesizes an answer from the block content matching the
// question's category, falling back to the question's preliminary
// answer.
func answerFor(q content.Question, blocks map[string]content.ContentBlock, productName string) string {
	switch q.Category {
	case content.CategoryUsage:
		if guide := blockString(blocks, block.TypeUsage, "quick_guide"); guide != "" {
			return guide
		}
		return blockString(blocks, block.TypeUsage, "usage_text")

	case content.CategorySafety:
		if summary := blockString(blocks, block.TypeSafety, "safety_summary"); summary != "" {
			return summary
		}
		return blockString(blocks, block.TypeSafety, "side_effects_text")

	case content.CategoryIngredients:
		summary := blockString(blocks, block.TypeIngredients, "ingredients_summary")
		if summary == "" {
			if ingredients := blockStrings(blocks, block.TypeIngredients, "ingredients_list"); len(ingredients) > 0 {
				summary = fmt.Sprintf("%s contains %s.", productName, strings.Join(ingredients, ", "))
			}
		}
		return summary

	case content.CategoryInformational:
		return blockString(blocks, block.TypeBenefits, "benefits_summary")

	case content.CategoryPurchase:
		price := blockString(blocks, block.TypePricing, "formatted_price")
		valueProp := blockString(blocks, block.TypePricing, "value_proposition")
		return fmt.Sprintf("%s is priced at %s. %s", productName, price, valueProp)

	case content.CategoryEffectiveness:
		if benefits := blockStrings(blocks, block.TypeBenefits, "benefits_list"); len(benefits) > 0 {
			return fmt.Sprintf("%s helps with %s.", productName, strings.ToLower(strings.Join(benefits, ", ")))
		}
		return fmt.Sprintf("%s is formulated for effective results.", productName)

	case content.CategorySuitability:
		if suitable := blockStrings(blocks, block.TypeSafety, "suitable_for"); len(suitable) > 0 {
			return fmt.Sprintf("%s is suitable for %s skin types.", productName, strings.ToLower(strings.Join(suitable, ", ")))
		}
		return "Please refer to the product label for skin type recommendations."

	case content.CategoryComparison:
		return "For detailed comparisons, please see our comparison page."
	}

	if q.Answer != "" {
		return q.Answer
	}
	return fmt.Sprintf("Please refer to the product information for %s.", productName)
}

// categorizeFAQs groups entries by their category value.
func categorizeFAQs(entries []map[string]interface{}) map[string][]map[string]interface{} {
	categorized := make(map[string][]map[string]interface{})
	for _, entry := range entries {
		category, _ := entry["category"].(string)
		categorized[category] = append(categorized[category], entry)
	}
	return categorized
}

// quickLinks builds navigation links for the categories that have
// questions, in canonical category order.
func quickLinks(categorized map[string][]map[string]interface{}) []map[string]interface{} {
	links := []map[string]interface{}{}
	for _, cat := range content.QuestionCategories() {
		faqs, ok := categorized[string(cat)]
		if !ok {
			continue
		}
		label, ok := categoryLabels[cat]
		if !ok {
			label = titleWords(string(cat))
		}
		links = append(links, map[string]interface{}{
			"category": string(cat),
			"label":    label,
			"count":    len(faqs),
		})
	}
	return links
}
