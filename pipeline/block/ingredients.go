package block

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Ingredients enriches a product's ingredient list from a small built-in
// knowledge base: full names, categories, benefit claims, and
// descriptions, plus hero-ingredient and concentration analysis.
type Ingredients struct{}

// Type returns "ingredients-block".
func (Ingredients) Type() string { return TypeIngredients }

type ingredientInfo struct {
	fullName    string
	category    string
	benefits    []string
	description string
}

// Known actives, keyed by lowercase ingredient name. Unknown ingredients
// get a generic "active" entry.
var ingredientKB = map[string]ingredientInfo{
	"vitamin c": {
		fullName:    "Vitamin C (L-Ascorbic Acid)",
		category:    "antioxidant",
		benefits:    []string{"Brightening", "Antioxidant protection", "Collagen synthesis"},
		description: "A powerful antioxidant that helps brighten skin and protect against environmental damage.",
	},
	"hyaluronic acid": {
		fullName:    "Hyaluronic Acid",
		category:    "humectant",
		benefits:    []string{"Hydration", "Plumping", "Moisture retention"},
		description: "A moisture-binding ingredient that can hold up to 1000x its weight in water.",
	},
	"niacinamide": {
		fullName:    "Niacinamide (Vitamin B3)",
		category:    "vitamin",
		benefits:    []string{"Pore minimizing", "Oil control", "Barrier repair"},
		description: "A versatile vitamin that helps improve skin texture and tone.",
	},
	"retinol": {
		fullName:    "Retinol (Vitamin A)",
		category:    "retinoid",
		benefits:    []string{"Anti-aging", "Cell turnover", "Wrinkle reduction"},
		description: "A gold-standard anti-aging ingredient that promotes cell renewal.",
	},
	"salicylic acid": {
		fullName:    "Salicylic Acid (BHA)",
		category:    "exfoliant",
		benefits:    []string{"Pore cleansing", "Acne treatment", "Exfoliation"},
		description: "An oil-soluble acid that penetrates pores to clear congestion.",
	},
}

var percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// Generate derives the ingredients block.
func (Ingredients) Generate(p content.Product) (content.ContentBlock, error) {
	ingredients := p.KeyIngredients

	return content.ContentBlock{
		Type: TypeIngredients,
		Content: map[string]interface{}{
			"ingredients_list":      ingredients,
			"ingredients_detailed":  detailedIngredients(ingredients),
			"hero_ingredient":       heroIngredient(ingredients, p.Concentration),
			"ingredient_categories": categorizeIngredients(ingredients),
			"concentration_info":    concentrationInfo(p.Concentration),
			"combined_benefits":     combinedBenefits(ingredients),
			"ingredients_summary":   ingredientsSummary(ingredients, p.Name),
		},
		Metadata: map[string]interface{}{
			"block_name":        "Ingredients Information Generator",
			"ingredients_count": len(ingredients),
			"has_concentration": p.Concentration != "",
		},
	}, nil
}

func detailedIngredients(ingredients []string) []map[string]interface{} {
	detailed := make([]map[string]interface{}, 0, len(ingredients))
	for _, ing := range ingredients {
		if info, ok := ingredientKB[strings.ToLower(ing)]; ok {
			detailed = append(detailed, map[string]interface{}{
				"name":        ing,
				"full_name":   info.fullName,
				"category":    info.category,
				"benefits":    info.benefits,
				"description": info.description,
			})
			continue
		}
		detailed = append(detailed, map[string]interface{}{
			"name":        ing,
			"full_name":   ing,
			"category":    "active",
			"benefits":    []string{"Skin improvement"},
			"description": fmt.Sprintf("%s is an active ingredient that helps improve skin health.", ing),
		})
	}
	return detailed
}

// heroIngredient picks the star ingredient: the one named in the
// concentration string when there is one, otherwise the first listed.
func heroIngredient(ingredients []string, concentration string) map[string]interface{} {
	if len(ingredients) == 0 {
		return map[string]interface{}{}
	}

	hero := ingredients[0]
	heroConcentration := ""
	if concentration != "" {
		concLower := strings.ToLower(concentration)
		for _, ing := range ingredients {
			if strings.Contains(concLower, strings.ToLower(ing)) {
				hero = ing
				heroConcentration = concentration
				break
			}
		}
	}

	description := fmt.Sprintf("%s is the star ingredient in this formulation.", hero)
	benefits := []string{"Skin improvement"}
	if info, ok := ingredientKB[strings.ToLower(hero)]; ok {
		description = info.description
		benefits = info.benefits
	}

	out := map[string]interface{}{
		"name":        hero,
		"description": description,
		"benefits":    benefits,
	}
	if heroConcentration != "" {
		out["concentration"] = heroConcentration
	} else {
		out["concentration"] = nil
	}
	return out
}

func categorizeIngredients(ingredients []string) map[string][]string {
	categories := make(map[string][]string)
	for _, ing := range ingredients {
		category := "active"
		if info, ok := ingredientKB[strings.ToLower(ing)]; ok {
			category = info.category
		}
		categories[category] = append(categories[category], ing)
	}
	return categories
}

func concentrationInfo(concentration string) map[string]interface{} {
	if concentration == "" {
		return map[string]interface{}{}
	}

	info := map[string]interface{}{
		"raw":         concentration,
		"percentage":  nil,
		"description": fmt.Sprintf("Formulated with %s for optimal effectiveness", concentration),
	}
	if m := percentRe.FindStringSubmatch(concentration); m != nil {
		info["percentage"] = m[1]
	}
	return info
}

// combinedBenefits merges the benefit claims of every known ingredient,
// deduplicated and in first-seen order.
func combinedBenefits(ingredients []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, ing := range ingredients {
		info, ok := ingredientKB[strings.ToLower(ing)]
		if !ok {
			continue
		}
		for _, b := range info.benefits {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out
}

func ingredientsSummary(ingredients []string, productName string) string {
	if len(ingredients) == 0 {
		return ""
	}
	if len(ingredients) == 1 {
		return fmt.Sprintf("%s features %s as its key active ingredient.", productName, ingredients[0])
	}
	head := strings.Join(ingredients[:len(ingredients)-1], ", ")
	return fmt.Sprintf("%s combines the power of %s and %s.", productName, head, ingredients[len(ingredients)-1])
}
