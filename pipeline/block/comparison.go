package block

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Comparison generates a two-product comparison: feature rows with
// per-row winners, ingredient and benefit overlaps, price analysis,
// suitability recommendations, category winners, and a verdict.
//
// Construct it with the product to compare against; Generate receives
// the primary product.
type Comparison struct {
	Other content.Product
}

// NewComparison returns a comparison generator that compares products
// against other.
func NewComparison(other content.Product) Comparison {
	return Comparison{Other: other}
}

// Type returns "comparison-block".
func (Comparison) Type() string { return TypeComparison }

// Generate derives the comparison block for p versus the configured
// other product.
func (c Comparison) Generate(p content.Product) (content.ContentBlock, error) {
	a, b := p, c.Other

	return content.ContentBlock{
		Type: TypeComparison,
		Content: map[string]interface{}{
			"product_a":              productSummary(a),
			"product_b":              productSummary(b),
			"feature_comparison":     compareFeatures(a, b),
			"ingredient_comparison":  compareIngredients(a, b),
			"price_comparison":       comparePrices(a, b),
			"benefits_comparison":    compareBenefits(a, b),
			"suitability_comparison": compareSuitability(a, b),
			"category_winners":       categoryWinners(a, b),
			"comparison_summary":     comparisonSummary(a, b),
		},
		Metadata: map[string]interface{}{
			"block_name":        "Product Comparison Generator",
			"products_compared": []string{a.Name, b.Name},
		},
	}, nil
}

func productSummary(p content.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":            p.Name,
		"key_ingredients": p.KeyIngredients,
		"benefits":        p.Benefits,
		"price":           p.Price,
		"currency":        p.Currency,
		"skin_types":      p.SkinTypeNames(),
		"concentration":   p.Concentration,
	}
}

func compareFeatures(a, b content.Product) []map[string]interface{} {
	moreWins := func(countA, countB int) string {
		switch {
		case countA == countB:
			return "tie"
		case countA > countB:
			return a.Name
		default:
			return b.Name
		}
	}

	concA, concB := a.Concentration, b.Concentration
	if concA == "" {
		concA = "Not specified"
	}
	if concB == "" {
		concB = "Not specified"
	}

	return []map[string]interface{}{
		{
			"feature":   "Concentration",
			"product_a": concA,
			"product_b": concB,
			"winner":    compareConcentration(a.Concentration, b.Concentration),
		},
		{
			"feature":   "Key Ingredients",
			"product_a": fmt.Sprintf("%d ingredients", len(a.KeyIngredients)),
			"product_b": fmt.Sprintf("%d ingredients", len(b.KeyIngredients)),
			"winner":    moreWins(len(a.KeyIngredients), len(b.KeyIngredients)),
		},
		{
			"feature":   "Benefits",
			"product_a": fmt.Sprintf("%d benefits", len(a.Benefits)),
			"product_b": fmt.Sprintf("%d benefits", len(b.Benefits)),
			"winner":    moreWins(len(a.Benefits), len(b.Benefits)),
		},
		{
			"feature":   "Skin Type Versatility",
			"product_a": fmt.Sprintf("Suitable for %d skin types", len(a.SkinTypes)),
			"product_b": fmt.Sprintf("Suitable for %d skin types", len(b.SkinTypes)),
			"winner":    moreWins(len(a.SkinTypes), len(b.SkinTypes)),
		},
	}
}

// compareConcentration prefers the higher percentage when both products
// state one; a stated concentration beats an unstated one.
func compareConcentration(concA, concB string) string {
	if concA == "" && concB == "" {
		return "tie"
	}
	if concA == "" {
		return "Product B"
	}
	if concB == "" {
		return "Product A"
	}

	percentA := extractPercent(concA)
	percentB := extractPercent(concB)
	switch {
	case percentA == percentB:
		return "tie"
	case percentA > percentB:
		return "Product A"
	default:
		return "Product B"
	}
}

func extractPercent(concentration string) float64 {
	m := percentRe.FindStringSubmatch(concentration)
	if m == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(m[1], 64)
	return v
}

func compareIngredients(a, b content.Product) map[string]interface{} {
	listA := loweredSet(a.KeyIngredients)
	listB := loweredSet(b.KeyIngredients)
	common, uniqueA, uniqueB := splitOverlap(listA, listB)

	union := len(uniqueA) + len(common) + len(uniqueB)
	similarity := 0.0
	if union > 0 {
		similarity = float64(len(common)) / float64(union) * 100
	}

	return map[string]interface{}{
		"common_ingredients": common,
		"unique_to_a":        uniqueA,
		"unique_to_b":        uniqueB,
		"similarity_score":   similarity,
	}
}

func comparePrices(a, b content.Product) map[string]interface{} {
	diff := a.Price - b.Price
	diffPercent := 0.0
	if b.Price > 0 {
		diffPercent = diff / b.Price * 100
	}

	moreAffordable := "Same price"
	switch {
	case a.Price < b.Price:
		moreAffordable = a.Name
	case b.Price < a.Price:
		moreAffordable = b.Name
	}

	return map[string]interface{}{
		"product_a_price":          map[string]interface{}{"amount": a.Price, "currency": a.Currency},
		"product_b_price":          map[string]interface{}{"amount": b.Price, "currency": b.Currency},
		"price_difference":         math.Abs(diff),
		"price_difference_percent": math.Abs(diffPercent),
		"more_affordable":          moreAffordable,
		"value_assessment":         assessValue(a, b),
	}
}

// assessValue scores each product as claims per price unit.
func assessValue(a, b content.Product) string {
	score := func(p content.Product) float64 {
		denominator := p.Price
		if denominator <= 0 {
			denominator = 1
		}
		return float64(len(p.Benefits)+len(p.KeyIngredients)) / denominator
	}

	valueA, valueB := score(a), score(b)
	switch {
	case math.Abs(valueA-valueB) < 0.001:
		return "Both products offer similar value"
	case valueA > valueB:
		return fmt.Sprintf("%s offers better value for money", a.Name)
	default:
		return fmt.Sprintf("%s offers better value for money", b.Name)
	}
}

func compareBenefits(a, b content.Product) map[string]interface{} {
	common, uniqueA, uniqueB := splitOverlap(loweredSet(a.Benefits), loweredSet(b.Benefits))

	return map[string]interface{}{
		"product_a_benefits": a.Benefits,
		"product_b_benefits": b.Benefits,
		"common_benefits":    common,
		"unique_to_a":        uniqueA,
		"unique_to_b":        uniqueB,
	}
}

func compareSuitability(a, b content.Product) map[string]interface{} {
	typesA, typesB := a.SkinTypeNames(), b.SkinTypeNames()
	common, uniqueA, uniqueB := splitOverlap(typesA, typesB)

	recommendation := ""
	if len(uniqueA) == 0 && len(uniqueB) == 0 {
		recommendation = fmt.Sprintf("Both products are suitable for the same skin types: %s", strings.Join(typesA, ", "))
	} else {
		var recs []string
		if len(uniqueA) > 0 {
			recs = append(recs, fmt.Sprintf("Choose %s if you have %s skin", a.Name, strings.Join(uniqueA, " or ")))
		}
		if len(uniqueB) > 0 {
			recs = append(recs, fmt.Sprintf("Choose %s if you have %s skin", b.Name, strings.Join(uniqueB, " or ")))
		}
		recommendation = strings.Join(recs, ". ")
	}

	return map[string]interface{}{
		"product_a_suitable_for": typesA,
		"product_b_suitable_for": typesB,
		"common_skin_types":      common,
		"recommendation":         recommendation,
	}
}

func categoryWinners(a, b content.Product) map[string]string {
	winners := make(map[string]string, 4)

	// Lower price wins; more of everything else wins.
	switch {
	case a.Price < b.Price:
		winners["price"] = a.Name
	case b.Price < a.Price:
		winners["price"] = b.Name
	default:
		winners["price"] = "tie"
	}

	moreWins := func(countA, countB int) string {
		switch {
		case countA > countB:
			return a.Name
		case countB > countA:
			return b.Name
		default:
			return "tie"
		}
	}
	winners["benefits"] = moreWins(len(a.Benefits), len(b.Benefits))
	winners["ingredients"] = moreWins(len(a.KeyIngredients), len(b.KeyIngredients))
	winners["versatility"] = moreWins(len(a.SkinTypes), len(b.SkinTypes))

	return winners
}

func comparisonSummary(a, b content.Product) string {
	winners := categoryWinners(a, b)

	winsA, winsB := 0, 0
	for _, winner := range winners {
		switch winner {
		case a.Name:
			winsA++
		case b.Name:
			winsB++
		}
	}

	switch {
	case winsA > winsB:
		return fmt.Sprintf("%s edges ahead in this comparison, winning %d out of %d categories. However, your choice should depend on your specific skin needs and budget.", a.Name, winsA, len(winners))
	case winsB > winsA:
		return fmt.Sprintf("%s edges ahead in this comparison, winning %d out of %d categories. However, your choice should depend on your specific skin needs and budget.", b.Name, winsB, len(winners))
	default:
		return "Both products are evenly matched. Your choice should depend on your specific skin type, concerns, and budget preferences."
	}
}

// loweredSet lowercases and deduplicates, preserving first-seen order.
func loweredSet(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := []string{}
	for _, item := range items {
		l := strings.ToLower(item)
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// splitOverlap partitions two deduplicated lists into their shared items
// and the items unique to each side, keeping input order.
func splitOverlap(listA, listB []string) (common, uniqueA, uniqueB []string) {
	inB := make(map[string]bool, len(listB))
	for _, item := range listB {
		inB[item] = true
	}
	inA := make(map[string]bool, len(listA))
	for _, item := range listA {
		inA[item] = true
	}

	common, uniqueA, uniqueB = []string{}, []string{}, []string{}
	for _, item := range listA {
		if inB[item] {
			common = append(common, item)
		} else {
			uniqueA = append(uniqueA, item)
		}
	}
	for _, item := range listB {
		if !inA[item] {
			uniqueB = append(uniqueB, item)
		}
	}
	return common, uniqueA, uniqueB
}
