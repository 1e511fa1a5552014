package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Comparison renders a two-product comparison page from the comparison
// block: overview cards, a side-by-side table, detailed sections,
// winner highlights, and choose-A/choose-B guidance.
type Comparison struct{}

// Type returns content.PageComparison.
func (Comparison) Type() content.PageType { return content.PageComparison }

// RequiredBlocks lists the single comparison block.
func (Comparison) RequiredBlocks() []string {
	return []string{block.TypeComparison}
}

// Render assembles the comparison page. Unlike the other templates it
// cannot degrade: without the comparison block there is nothing to
// render, so a missing block is an error.
func (c Comparison) Render(in Input) (content.GeneratedPage, error) {
	comparisonBlock, ok := in.Blocks[block.TypeComparison]
	if !ok {
		return content.GeneratedPage{}, fmt.Errorf("%w: %s", ErrMissingBlock, block.TypeComparison)
	}

	comp := comparisonBlock.Content
	productA := asMap(comp["product_a"])
	productB := asMap(comp["product_b"])
	nameA := asString(productA["name"])
	nameB := asString(productB["name"])
	winners := asStringMap(comp["category_winners"])

	pageTitle := fmt.Sprintf("%s vs %s - Comparison", nameA, nameB)
	pageContent := map[string]interface{}{
		"page_title":       pageTitle,
		"meta_description": fmt.Sprintf("Compare %s vs %s. See ingredients, benefits, prices, and find the best choice for your skin.", nameA, nameB),
		"header": map[string]interface{}{
			"title":    "Product Comparison",
			"subtitle": fmt.Sprintf("Compare %s and %s to find the best fit for your skincare routine", nameA, nameB),
			"products": []string{nameA, nameB},
		},
		"quick_overview": map[string]interface{}{
			"product_a": quickOverview(productA),
			"product_b": quickOverview(productB),
		},
		"comparison_table": comparisonTable(productA, productB, winners),
		"detailed_comparisons": map[string]interface{}{
			"ingredients": ingredientSection(asMap(comp["ingredient_comparison"]), nameA, nameB),
			"benefits":    benefitsSection(asMap(comp["benefits_comparison"]), nameA, nameB),
			"price":       priceSection(asMap(comp["price_comparison"])),
			"suitability": comp["suitability_comparison"],
		},
		"winners": map[string]interface{}{
			"by_category": winners,
			"summary":     winnerSummary(winners, nameA, nameB),
		},
		"recommendation": map[string]interface{}{
			"summary":             comp["comparison_summary"],
			"choose_product_a_if": chooseReasons(productA, productB),
			"choose_product_b_if": chooseReasons(productB, productA),
		},
		"product_details": map[string]interface{}{
			"product_a": productA,
			"product_b": productB,
		},
	}

	return content.GeneratedPage{
		Type:         content.PageComparison,
		Title:        pageTitle,
		Content:      pageContent,
		TemplateUsed: IDComparison,
		BlocksUsed:   blockTypes(in.Blocks),
		GeneratedAt:  time.Now(),
	}, nil
}

// quickOverview builds the at-a-glance card for one product summary.
func quickOverview(product map[string]interface{}) map[string]interface{} {
	ingredients := asStrings(product["key_ingredients"])
	if len(ingredients) > 3 {
		ingredients = ingredients[:3]
	}

	topBenefit := "N/A"
	if benefits := asStrings(product["benefits"]); len(benefits) > 0 {
		topBenefit = benefits[0]
	}

	return map[string]interface{}{
		"name":            product["name"],
		"price":           rupees(asFloat(product["price"])),
		"key_ingredients": ingredients,
		"top_benefit":     topBenefit,
		"skin_types":      asStrings(product["skin_types"]),
	}
}

// comparisonTable builds the side-by-side attribute rows.
func comparisonTable(productA, productB map[string]interface{}, winners map[string]string) []map[string]interface{} {
	concA := asString(productA["concentration"])
	if concA == "" {
		concA = "Not specified"
	}
	concB := asString(productB["concentration"])
	if concB == "" {
		concB = "Not specified"
	}

	winner := func(category string) string {
		if w, ok := winners[category]; ok {
			return w
		}
		return "tie"
	}

	return []map[string]interface{}{
		{
			"attribute":       "Price",
			"product_a_value": rupees(asFloat(productA["price"])),
			"product_b_value": rupees(asFloat(productB["price"])),
			"winner":          winner("price"),
			"highlight":       true,
		},
		{
			"attribute":       "Concentration",
			"product_a_value": concA,
			"product_b_value": concB,
			"winner":          "tie",
			"highlight":       false,
		},
		{
			"attribute":       "Key Ingredients",
			"product_a_value": strings.Join(asStrings(productA["key_ingredients"]), ", "),
			"product_b_value": strings.Join(asStrings(productB["key_ingredients"]), ", "),
			"winner":          winner("ingredients"),
			"highlight":       false,
		},
		{
			"attribute":       "Benefits",
			"product_a_value": strings.Join(asStrings(productA["benefits"]), ", "),
			"product_b_value": strings.Join(asStrings(productB["benefits"]), ", "),
			"winner":          winner("benefits"),
			"highlight":       false,
		},
		{
			"attribute":       "Suitable Skin Types",
			"product_a_value": strings.Join(asStrings(productA["skin_types"]), ", "),
			"product_b_value": strings.Join(asStrings(productB["skin_types"]), ", "),
			"winner":          winner("versatility"),
			"highlight":       false,
		},
	}
}

func ingredientSection(overlap map[string]interface{}, nameA, nameB string) map[string]interface{} {
	common := asStrings(overlap["common_ingredients"])
	description := "No common ingredients"
	if len(common) > 0 {
		description = fmt.Sprintf("Both products contain %s", strings.Join(common, ", "))
	}

	return map[string]interface{}{
		"title": "Ingredient Comparison",
		"common_ingredients": map[string]interface{}{
			"label":       "Shared Ingredients",
			"items":       common,
			"description": description,
		},
		"unique_to_a": map[string]interface{}{
			"label": fmt.Sprintf("Only in %s", nameA),
			"items": asStrings(overlap["unique_to_a"]),
		},
		"unique_to_b": map[string]interface{}{
			"label": fmt.Sprintf("Only in %s", nameB),
			"items": asStrings(overlap["unique_to_b"]),
		},
		"similarity_score": fmt.Sprintf("%.0f%%", asFloat(overlap["similarity_score"])),
	}
}

func benefitsSection(overlap map[string]interface{}, nameA, nameB string) map[string]interface{} {
	return map[string]interface{}{
		"title": "Benefits Comparison",
		"product_a_benefits": map[string]interface{}{
			"product_name": nameA,
			"benefits":     overlap["product_a_benefits"],
		},
		"product_b_benefits": map[string]interface{}{
			"product_name": nameB,
			"benefits":     overlap["product_b_benefits"],
		},
		"common_benefits": overlap["common_benefits"],
		"unique_to_a":     overlap["unique_to_a"],
		"unique_to_b":     overlap["unique_to_b"],
	}
}

func priceSection(prices map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"title":           "Price Comparison",
		"product_a_price": prices["product_a_price"],
		"product_b_price": prices["product_b_price"],
		"difference": map[string]interface{}{
			"amount":     prices["price_difference"],
			"percentage": fmt.Sprintf("%.1f%%", asFloat(prices["price_difference_percent"])),
		},
		"more_affordable":  prices["more_affordable"],
		"value_assessment": prices["value_assessment"],
	}
}

// winnerSummary tallies category wins per product, in the fixed category
// order price, benefits, ingredients, versatility.
func winnerSummary(winners map[string]string, nameA, nameB string) map[string]interface{} {
	winsA, winsB, ties := []string{}, []string{}, []string{}
	for _, category := range []string{"price", "benefits", "ingredients", "versatility"} {
		switch winners[category] {
		case nameA:
			winsA = append(winsA, category)
		case nameB:
			winsB = append(winsB, category)
		case "tie":
			ties = append(ties, category)
		}
	}

	return map[string]interface{}{
		"product_a_wins": map[string]interface{}{
			"count":      len(winsA),
			"categories": winsA,
		},
		"product_b_wins": map[string]interface{}{
			"count":      len(winsB),
			"categories": winsB,
		},
		"ties": map[string]interface{}{
			"count":      len(ties),
			"categories": ties,
		},
	}
}

// chooseReasons builds the reasons to prefer product over other.
func chooseReasons(product, other map[string]interface{}) []string {
	reasons := []string{}

	if asFloat(product["price"]) < asFloat(other["price"]) {
		reasons = append(reasons, "You're looking for a more budget-friendly option")
	}

	if unique := uniqueLower(asStrings(product["key_ingredients"]), asStrings(other["key_ingredients"])); len(unique) > 0 {
		reasons = append(reasons, fmt.Sprintf("You want products with %s", strings.Join(unique, ", ")))
	}

	if unique := uniqueLower(asStrings(product["benefits"]), asStrings(other["benefits"])); len(unique) > 0 {
		reasons = append(reasons, fmt.Sprintf("Your primary concern is %s", strings.Join(unique, " or ")))
	}

	if unique := uniqueItems(asStrings(product["skin_types"]), asStrings(other["skin_types"])); len(unique) > 0 {
		reasons = append(reasons, fmt.Sprintf("You have %s skin", strings.ToLower(strings.Join(unique, " or "))))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("You prefer %s's formulation", asString(product["name"])))
	}

	return reasons
}

// uniqueLower returns the lowercased items not present in others
// (compared lowercased), preserving first-seen order.
func uniqueLower(items, others []string) []string {
	inOthers := make(map[string]bool, len(others))
	for _, o := range others {
		inOthers[strings.ToLower(o)] = true
	}

	seen := make(map[string]bool, len(items))
	unique := []string{}
	for _, item := range items {
		l := strings.ToLower(item)
		if !inOthers[l] && !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	return unique
}

// uniqueItems returns the items not present in others, case-sensitive,
// preserving first-seen order.
func uniqueItems(items, others []string) []string {
	inOthers := make(map[string]bool, len(others))
	for _, o := range others {
		inOthers[o] = true
	}

	seen := make(map[string]bool, len(items))
	unique := []string{}
	for _, item := range items {
		if !inOthers[item] && !seen[item] {
			seen[item] = true
			unique = append(unique, item)
		}
	}
	return unique
}

// rupees formats an amount with the rupee sign, trimming a trailing
// ".0" on whole amounts.
func rupees(amount float64) string {
	return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asStrings(v interface{}) []string {
	s, _ := v.([]string)
	return s
}

func asStringMap(v interface{}) map[string]string {
	m, _ := v.(map[string]string)
	return m
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
