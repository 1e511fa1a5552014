package block

import (
	"fmt"
	"math"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Pricing turns a numeric price into display formats, a value
// proposition, a price tier, purchase CTAs, and per-use context.
type Pricing struct{}

// Type returns "pricing-block".
func (Pricing) Type() string { return TypePricing }

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Rough conversion rates to INR used only for tier bucketing. Tiers are
// coarse enough that rate drift does not matter.
var inrRates = map[string]float64{
	"INR": 1,
	"USD": 83,
	"EUR": 90,
	"GBP": 105,
}

var tierDescriptions = map[string]string{
	"budget":    "An excellent entry point for skincare enthusiasts",
	"mid-range": "Great value for quality skincare",
	"premium":   "Investment-worthy skincare with proven ingredients",
	"luxury":    "High-end formulation for discerning skincare lovers",
}

// Generate derives the pricing block.
func (Pricing) Generate(p content.Product) (content.ContentBlock, error) {
	tier := priceTier(p.Price, p.Currency)

	return content.ContentBlock{
		Type: TypePricing,
		Content: map[string]interface{}{
			"price":             p.Price,
			"currency":          p.Currency,
			"currency_symbol":   currencySymbol(p.Currency),
			"formatted_price":   formatPrice(p.Price, p.Currency),
			"price_display":     displayPrice(p.Price, p.Currency),
			"value_proposition": valueProposition(p),
			"price_tier":        tier,
			"cta_text":          ctaText(p.Price, p.Currency),
			"price_context":     priceContext(p.Price, tier),
		},
		Metadata: map[string]interface{}{
			"block_name": "Pricing Information Generator",
			"price_tier": tier,
		},
	}, nil
}

func currencySymbol(currency string) string {
	if symbol, ok := currencySymbols[currency]; ok {
		return symbol
	}
	return currency
}

// formatPrice renders the price with its currency symbol, dropping the
// decimals on whole amounts.
func formatPrice(price float64, currency string) string {
	symbol := currencySymbol(currency)
	if price == math.Trunc(price) {
		return fmt.Sprintf("%s%d", symbol, int64(price))
	}
	return fmt.Sprintf("%s%.2f", symbol, price)
}

func displayPrice(price float64, currency string) map[string]interface{} {
	decimals := 0
	if price != math.Trunc(price) {
		decimals = 2
	}
	return map[string]interface{}{
		"symbol":         currencySymbol(currency),
		"amount":         price,
		"formatted":      formatPrice(price, currency),
		"decimal_places": decimals,
	}
}

func valueProposition(p content.Product) string {
	switch {
	case p.Price < 500:
		return fmt.Sprintf("Affordable skincare with %d key benefits", len(p.Benefits))
	case p.Price < 1000:
		return fmt.Sprintf("Premium quality at a reasonable price with %d active ingredients", len(p.KeyIngredients))
	case p.Price < 2000:
		return fmt.Sprintf("Professional-grade formula with %d powerful ingredients", len(p.KeyIngredients))
	default:
		return fmt.Sprintf("Luxury skincare experience with %d transformative benefits", len(p.Benefits))
	}
}

// priceTier buckets the price after normalizing to INR.
func priceTier(price float64, currency string) string {
	normalized := price
	if currency != "INR" {
		rate, ok := inrRates[currency]
		if !ok {
			rate = 1
		}
		normalized = price * rate
	}

	switch {
	case normalized < 300:
		return "budget"
	case normalized < 700:
		return "mid-range"
	case normalized < 1500:
		return "premium"
	default:
		return "luxury"
	}
}

func ctaText(price float64, currency string) map[string]interface{} {
	formatted := formatPrice(price, currency)
	return map[string]interface{}{
		"primary":   fmt.Sprintf("Buy Now - %s", formatted),
		"secondary": "Add to Cart",
		"urgency":   fmt.Sprintf("Get yours for just %s", formatted),
	}
}

func priceContext(price float64, tier string) map[string]interface{} {
	description, ok := tierDescriptions[tier]
	if !ok {
		description = "Quality skincare option"
	}
	return map[string]interface{}{
		"tier":             tier,
		"tier_description": description,
		"per_use_estimate": perUseEstimate(price),
	}
}

// perUseEstimate assumes a bottle lasts about sixty applications.
func perUseEstimate(price float64) string {
	perUse := price / 60
	if perUse < 10 {
		return fmt.Sprintf("Less than ₹%d per use", int(perUse+1))
	}
	return fmt.Sprintf("About ₹%d per use", int(perUse))
}
