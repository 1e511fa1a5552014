package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Parser normalizes a raw product data map into a content.Product.
//
// Source data arrives with inconsistent field names ("Product Name",
// "product_name", "How to Use"), prices as strings with currency
// symbols, and list fields as comma-separated strings. The parser maps
// every recognized spelling onto the canonical model, leaving the rest
// of the pipeline to work with one shape.
//
// The parsed product is stored in the run context under "product" and
// the untouched input under "raw_data".
type Parser struct {
	Base
}

// NewParser returns the data parsing agent ("data-parser-agent").
func NewParser() *Parser {
	return &Parser{Base: NewBase("data-parser-agent", "Data Parser Agent")}
}

// fieldAliases maps recognized source field spellings (lowercased,
// trimmed) to canonical field names.
var fieldAliases = map[string]string{
	"product name":       "name",
	"product_name":       "name",
	"productname":        "name",
	"name":               "name",
	"concentration":      "concentration",
	"skin type":          "skin_types",
	"skin_type":          "skin_types",
	"skintype":           "skin_types",
	"key ingredients":    "key_ingredients",
	"key_ingredients":    "key_ingredients",
	"keyingredients":     "key_ingredients",
	"ingredients":        "key_ingredients",
	"benefits":           "benefits",
	"how to use":         "usage_instructions",
	"how_to_use":         "usage_instructions",
	"usage":              "usage_instructions",
	"usage_instructions": "usage_instructions",
	"side effects":       "side_effects",
	"side_effects":       "side_effects",
	"sideeffects":        "side_effects",
	"price":              "price",
	"currency":           "currency",
	"product id":         "product_id",
	"product_id":         "product_id",
	"productid":          "product_id",
	"category":           "category",
}

// Validate accepts a non-empty map carrying at least a name-like key.
func (p *Parser) Validate(input interface{}) bool {
	raw, ok := input.(map[string]interface{})
	if !ok || len(raw) == 0 {
		return false
	}
	for key := range raw {
		switch strings.ReplaceAll(strings.ToLower(key), " ", "_") {
		case "name", "product_name", "productname":
			return true
		}
	}
	return false
}

// Execute parses the raw map into a content.Product.
func (p *Parser) Execute(ctx context.Context, input interface{}, rc *pipeline.Context) (interface{}, error) {
	raw, ok := input.(map[string]interface{})
	if !ok {
		return nil, invalidInput(p.ID(), "expected a raw product data map")
	}

	data := normalizeFields(raw)
	product := content.Product{
		Name:              parseName(data),
		Concentration:     parseText(data, "concentration"),
		SkinTypes:         parseSkinTypes(data),
		KeyIngredients:    parseList(data, "key_ingredients"),
		Benefits:          parseList(data, "benefits"),
		UsageInstructions: parseText(data, "usage_instructions"),
		SideEffects:       parseText(data, "side_effects"),
		Price:             parsePrice(data),
		Currency:          parseCurrency(data),
		ProductID:         parseText(data, "product_id"),
		Category:          parseCategory(data),
	}

	rc.Set("product", product)
	rc.Set("raw_data", raw)
	rc.Log(p.ID(), "parsed_product", map[string]interface{}{
		"product_name":  product.Name,
		"fields_parsed": fieldsParsed(product),
	})

	return product, nil
}

// normalizeFields lowercases and trims field names, replacing
// recognized spellings with their canonical names. Unrecognized fields
// are kept under their lowercased name.
func normalizeFields(raw map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		k := strings.ToLower(strings.TrimSpace(key))
		if canonical, ok := fieldAliases[k]; ok {
			k = canonical
		}
		data[k] = value
	}
	return data
}

func parseName(data map[string]interface{}) string {
	v, ok := data["name"]
	if !ok {
		return "Unknown Product"
	}
	return strings.TrimSpace(stringValue(v))
}

func parseText(data map[string]interface{}, key string) string {
	return strings.TrimSpace(stringValue(data[key]))
}

func parseCategory(data map[string]interface{}) string {
	if category := parseText(data, "category"); category != "" {
		return category
	}
	return "skincare"
}

func parseSkinTypes(data map[string]interface{}) []content.SkinType {
	types := []content.SkinType{}
	for _, raw := range parseList(data, "skin_types") {
		if st, ok := content.ParseSkinType(raw); ok {
			types = append(types, st)
		}
	}
	return types
}

// parseList reads a list field given either as a slice or as a
// comma-separated string. Entries are trimmed; empty ones are dropped.
func parseList(data map[string]interface{}, key string) []string {
	out := []string{}
	appendItem := func(item string) {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}

	switch v := data[key].(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			appendItem(part)
		}
	case []string:
		for _, item := range v {
			appendItem(item)
		}
	case []interface{}:
		for _, item := range v {
			appendItem(stringValue(item))
		}
	}
	return out
}

// parsePrice reads a numeric or string price. String prices may carry
// currency symbols and thousands separators; an unparseable price is 0.
func parsePrice(data map[string]interface{}) float64 {
	switch v := data["price"].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		cleaned := strings.NewReplacer("₹", "", "$", "", "€", "", ",", "").Replace(v)
		price, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		if err != nil {
			return 0
		}
		return price
	}
	return 0
}

// parseCurrency returns the declared currency code, or infers one from
// the symbol in the price string. INR is the default.
func parseCurrency(data map[string]interface{}) string {
	if c := strings.TrimSpace(stringValue(data["currency"])); c != "" {
		return strings.ToUpper(c)
	}

	price := stringValue(data["price"])
	switch {
	case strings.Contains(price, "₹"):
		return "INR"
	case strings.Contains(price, "$"):
		return "USD"
	case strings.Contains(price, "€"):
		return "EUR"
	}
	return "INR"
}

// stringValue renders a raw field value as a string. Nil renders as
// empty rather than "<nil>".
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// fieldsParsed counts the populated product fields, for the parse log.
func fieldsParsed(p content.Product) int {
	populated := []bool{
		p.Name != "",
		p.Concentration != "",
		len(p.SkinTypes) > 0,
		len(p.KeyIngredients) > 0,
		len(p.Benefits) > 0,
		p.UsageInstructions != "",
		p.SideEffects != "",
		p.Price != 0,
		p.Currency != "",
		p.ProductID != "",
		p.Category != "",
	}

	n := 0
	for _, ok := range populated {
		if ok {
			n++
		}
	}
	return n
}
