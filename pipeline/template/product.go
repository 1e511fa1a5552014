package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// ProductPage renders a product description page: hero section, key
// feature highlights, benefit/ingredient/usage/safety/pricing sections,
// and JSON-LD structured data.
type ProductPage struct{}

// Type returns content.PageProduct.
func (ProductPage) Type() content.PageType { return content.PageProduct }

// RequiredBlocks lists the five product blocks the sections draw from.
func (ProductPage) RequiredBlocks() []string {
	return []string{
		block.TypeBenefits,
		block.TypeUsage,
		block.TypeSafety,
		block.TypeIngredients,
		block.TypePricing,
	}
}

// Render assembles the product page.
func (p ProductPage) Render(in Input) (content.GeneratedPage, error) {
	productName := in.Product.Name
	blocks := in.Blocks

	pageContent := map[string]interface{}{
		"page_title":       productName,
		"meta_description": metaDescription(blocks, productName),
		"hero": map[string]interface{}{
			"product_name": productName,
			"headline":     blockString(blocks, block.TypeBenefits, "benefits_headline"),
			"tagline":      blockString(blocks, block.TypeBenefits, "benefits_summary"),
			"price":        blockValue(blocks, block.TypePricing, "price_display", nil),
			"cta":          blockValue(blocks, block.TypePricing, "cta_text", nil),
		},
		"key_features": keyFeatures(blocks),
		"benefits_section": map[string]interface{}{
			"title":           "Benefits",
			"primary_benefit": blockString(blocks, block.TypeBenefits, "primary_benefit"),
			"benefits_list":   blockValue(blocks, block.TypeBenefits, "benefits_detailed", []interface{}{}),
			"summary":         blockString(blocks, block.TypeBenefits, "benefits_summary"),
		},
		"ingredients_section": map[string]interface{}{
			"title":            "Key Ingredients",
			"hero_ingredient":  blockValue(blocks, block.TypeIngredients, "hero_ingredient", nil),
			"ingredients_list": blockValue(blocks, block.TypeIngredients, "ingredients_detailed", []interface{}{}),
			"concentration":    blockValue(blocks, block.TypeIngredients, "concentration_info", nil),
		},
		"usage_section": map[string]interface{}{
			"title":       "How to Use",
			"quick_guide": blockString(blocks, block.TypeUsage, "quick_guide"),
			"steps":       blockValue(blocks, block.TypeUsage, "usage_steps", []interface{}{}),
			"timing":      blockString(blocks, block.TypeUsage, "timing"),
			"dosage":      blockString(blocks, block.TypeUsage, "dosage"),
		},
		"safety_section": map[string]interface{}{
			"title":        "Safety Information",
			"suitable_for": blockStrings(blocks, block.TypeSafety, "suitable_for"),
			"warnings":     blockValue(blocks, block.TypeSafety, "warnings", []interface{}{}),
			"precautions":  blockStrings(blocks, block.TypeSafety, "precautions"),
			"patch_test":   blockValue(blocks, block.TypeSafety, "patch_test", nil),
		},
		"pricing_section": map[string]interface{}{
			"title":             "Pricing",
			"price":             blockString(blocks, block.TypePricing, "formatted_price"),
			"value_proposition": blockString(blocks, block.TypePricing, "value_proposition"),
			"price_tier":        blockString(blocks, block.TypePricing, "price_tier"),
			"cta_buttons":       blockValue(blocks, block.TypePricing, "cta_text", nil),
		},
		"structured_data": structuredData(blocks, in.Product),
	}

	return content.GeneratedPage{
		Type:         content.PageProduct,
		Title:        productName,
		Content:      pageContent,
		TemplateUsed: IDProductPage,
		BlocksUsed:   blockTypes(blocks),
		GeneratedAt:  time.Now(),
	}, nil
}

// metaDescription builds search-engine copy from the top two benefits
// and the price.
func metaDescription(blocks map[string]content.ContentBlock, productName string) string {
	benefits := blockStrings(blocks, block.TypeBenefits, "benefits_list")
	price := blockString(blocks, block.TypePricing, "formatted_price")

	benefitsText := "skincare"
	if len(benefits) > 0 {
		top := benefits
		if len(top) > 2 {
			top = top[:2]
		}
		benefitsText = strings.ToLower(strings.Join(top, ", "))
	}

	return fmt.Sprintf("Shop %s for %s. %s. Free shipping available.", productName, benefitsText, price)
}

// keyFeatures builds the icon highlights shown under the hero: stated
// concentration, suitable skin types, the key benefit, and application
// timing, each included only when the data exists.
func keyFeatures(blocks map[string]content.ContentBlock) []map[string]interface{} {
	features := []map[string]interface{}{}

	if concInfo, ok := blockValue(blocks, block.TypeIngredients, "concentration_info", nil).(map[string]interface{}); ok {
		if pct, ok := concInfo["percentage"].(string); ok && pct != "" {
			features = append(features, map[string]interface{}{
				"icon":  "formula",
				"label": "Concentration",
				"value": concInfo["raw"],
			})
		}
	}

	if suitableFor := blockStrings(blocks, block.TypeSafety, "suitable_for"); len(suitableFor) > 0 {
		features = append(features, map[string]interface{}{
			"icon":  "skin",
			"label": "Suitable For",
			"value": strings.Join(suitableFor, ", "),
		})
	}

	if primary := blockString(blocks, block.TypeBenefits, "primary_benefit"); primary != "" {
		features = append(features, map[string]interface{}{
			"icon":  "star",
			"label": "Key Benefit",
			"value": primary,
		})
	}

	if timing := blockString(blocks, block.TypeUsage, "timing"); timing != "" {
		features = append(features, map[string]interface{}{
			"icon":  "clock",
			"label": "Best Used",
			"value": titleWords(strings.Replace(timing, "in the ", "", 1)),
		})
	}

	return features
}

// structuredData emits schema.org Product JSON-LD for search engines.
func structuredData(blocks map[string]content.ContentBlock, product content.Product) map[string]interface{} {
	return map[string]interface{}{
		"@context":    "https://schema.org/",
		"@type":       "Product",
		"name":        product.Name,
		"description": blockString(blocks, block.TypeBenefits, "benefits_summary"),
		"offers": map[string]interface{}{
			"@type":         "Offer",
			"price":         blockValue(blocks, block.TypePricing, "price", 0.0),
			"priceCurrency": blockString(blocks, block.TypePricing, "currency"),
			"availability":  "https://schema.org/InStock",
		},
	}
}
