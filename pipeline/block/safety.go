package block

import (
	"fmt"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Safety turns side-effect disclosures and ingredient data into warnings,
// precautions, patch-test guidance, contraindications, and a safety
// summary.
type Safety struct{}

// Type returns "safety-block".
func (Safety) Type() string { return TypeSafety }

// Side-effect keywords mapped to display warnings. Ordered so warning
// output is deterministic.
var warningKeywords = []struct {
	keyword  string
	warning  string
	severity string
}{
	{"tingling", "Tingling Sensation", "mild"},
	{"redness", "Skin Redness", "mild"},
	{"irritation", "Skin Irritation", "moderate"},
	{"burning", "Burning Sensation", "moderate"},
	{"sensitivity", "Increased Sensitivity", "mild"},
	{"dryness", "Skin Dryness", "mild"},
	{"peeling", "Skin Peeling", "moderate"},
}

// Generate derives the safety block.
func (Safety) Generate(p content.Product) (content.ContentBlock, error) {
	sideEffectsText := p.SideEffects
	if sideEffectsText == "" {
		sideEffectsText = "No known side effects"
	}

	return content.ContentBlock{
		Type: TypeSafety,
		Content: map[string]interface{}{
			"side_effects_text": sideEffectsText,
			"warnings":          parseWarnings(p.SideEffects),
			"suitable_for":      p.SkinTypeNames(),
			"precautions":       precautions(p),
			"patch_test":        patchTest(p.SideEffects),
			"safety_summary":    safetySummary(p),
			"contraindications": contraindications(p),
		},
		Metadata: map[string]interface{}{
			"block_name":       "Safety Information Generator",
			"has_side_effects": p.SideEffects != "",
			"severity":         assessSeverity(p.SideEffects),
		},
	}, nil
}

func parseWarnings(sideEffects string) []map[string]interface{} {
	warnings := []map[string]interface{}{}
	if sideEffects == "" {
		return warnings
	}

	lower := strings.ToLower(sideEffects)
	for _, w := range warningKeywords {
		if strings.Contains(lower, w.keyword) {
			warnings = append(warnings, map[string]interface{}{
				"warning":     w.warning,
				"severity":    w.severity,
				"description": fmt.Sprintf("May cause %s in some users", w.keyword),
			})
		}
	}

	if strings.Contains(lower, "sensitive") {
		warnings = append(warnings, map[string]interface{}{
			"warning":     "Sensitive Skin Advisory",
			"severity":    "mild",
			"description": "Users with sensitive skin should proceed with caution",
		})
	}

	return warnings
}

func precautions(p content.Product) []string {
	out := []string{
		"Perform a patch test before first use",
		"Avoid contact with eyes",
		"Keep out of reach of children",
	}

	if listsIngredient(p.KeyIngredients, "vitamin c") {
		out = append(out,
			"Store in a cool, dark place to maintain potency",
			"Use sunscreen during the day as Vitamin C can increase sun sensitivity")
	}
	if listsIngredient(p.KeyIngredients, "retinol") {
		out = append(out,
			"Avoid use during pregnancy",
			"Do not combine with other retinoids")
	}
	if p.SideEffects != "" && strings.Contains(strings.ToLower(p.SideEffects), "sensitive") {
		out = append(out, "Start with less frequent application if you have sensitive skin")
	}

	return out
}

func patchTest(sideEffects string) map[string]interface{} {
	urgency := "recommended"
	if sideEffects != "" {
		lower := strings.ToLower(sideEffects)
		for _, word := range []string{"irritation", "burning", "sensitivity"} {
			if strings.Contains(lower, word) {
				urgency = "strongly recommended"
				break
			}
		}
	}

	return map[string]interface{}{
		"recommendation": fmt.Sprintf("Patch test is %s", urgency),
		"instructions":   "Apply a small amount to inner arm and wait 24 hours before full use",
		"urgency":        urgency,
	}
}

func safetySummary(p content.Product) string {
	skinTypeText := "all skin types"
	if len(p.SkinTypes) > 0 {
		skinTypeText = strings.Join(p.SkinTypeNames(), ", ")
	}

	if p.SideEffects == "" {
		return fmt.Sprintf("This product is generally safe for %s. As with any skincare product, a patch test is recommended before first use.", skinTypeText)
	}
	return fmt.Sprintf("This product is formulated for %s. %s. We recommend a patch test before full application.", skinTypeText, p.SideEffects)
}

func contraindications(p content.Product) []string {
	out := []string{}

	if listsIngredient(p.KeyIngredients, "retinol") {
		out = append(out, "Not recommended during pregnancy or breastfeeding")
	}
	for _, acid := range []string{"salicylic acid", "glycolic acid", "lactic acid"} {
		if listsIngredient(p.KeyIngredients, acid) {
			out = append(out, "Avoid if you have very sensitive or compromised skin barrier")
			break
		}
	}

	return out
}

// assessSeverity grades the disclosure as none, mild, or moderate.
// Severe findings cap at moderate; anything worse belongs in front of a
// dermatologist, not a product page.
func assessSeverity(sideEffects string) string {
	if sideEffects == "" {
		return "none"
	}

	lower := strings.ToLower(sideEffects)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("burning", "severe", "allergic", "reaction"):
		return "moderate"
	case containsAny("irritation", "peeling", "redness"):
		return "moderate"
	case containsAny("tingling", "mild", "slight"):
		return "mild"
	}
	return "mild"
}

// listsIngredient reports whether the ingredient list contains name as an
// exact entry, compared case-insensitively.
func listsIngredient(ingredients []string, name string) bool {
	for _, ing := range ingredients {
		if strings.ToLower(ing) == name {
			return true
		}
	}
	return false
}
