package block

import (
	"fmt"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Benefits turns a product's benefit claims into display formats: a
// bullet list, a primary/secondary split, a summary sentence, a
// marketing headline, and per-benefit detail copy.
type Benefits struct{}

// Type returns "benefits-block".
func (Benefits) Type() string { return TypeBenefits }

// Canned descriptions for well-known benefit claims. Unknown claims fall
// back to a generic sentence built from the claim itself.
var benefitDescriptions = map[string]string{
	"brightening":      "Enhances skin radiance and gives you a natural glow",
	"fades dark spots": "Helps reduce the appearance of dark spots and uneven skin tone",
	"hydrating":        "Provides deep moisture to keep skin supple",
	"anti-aging":       "Helps reduce fine lines and wrinkles",
	"smoothing":        "Creates a smoother, more even skin texture",
}

// Generate derives the benefits block.
func (Benefits) Generate(p content.Product) (content.ContentBlock, error) {
	benefits := p.Benefits

	primary := ""
	if len(benefits) > 0 {
		primary = benefits[0]
	}
	secondary := []string{}
	if len(benefits) > 1 {
		secondary = benefits[1:]
	}

	return content.ContentBlock{
		Type: TypeBenefits,
		Content: map[string]interface{}{
			"benefits_list":      benefits,
			"primary_benefit":    primary,
			"secondary_benefits": secondary,
			"benefits_summary":   benefitsSummary(benefits, p.Name),
			"benefits_headline":  benefitsHeadline(benefits),
			"benefits_detailed":  detailedBenefits(benefits),
		},
		Metadata: map[string]interface{}{
			"block_name":     "Product Benefits Generator",
			"benefits_count": len(benefits),
		},
	}, nil
}

func benefitsSummary(benefits []string, productName string) string {
	if len(benefits) == 0 {
		return ""
	}
	if len(benefits) == 1 {
		return fmt.Sprintf("%s helps with %s.", productName, strings.ToLower(benefits[0]))
	}

	lower := make([]string, len(benefits))
	for i, b := range benefits {
		lower[i] = strings.ToLower(b)
	}
	head := strings.Join(lower[:len(lower)-1], ", ")
	return fmt.Sprintf("%s provides %s and %s.", productName, head, lower[len(lower)-1])
}

func benefitsHeadline(benefits []string) string {
	if len(benefits) == 0 {
		return "Discover the Benefits"
	}
	return fmt.Sprintf("Achieve %s and More", benefits[0])
}

func detailedBenefits(benefits []string) []map[string]interface{} {
	detailed := make([]map[string]interface{}, 0, len(benefits))
	for _, benefit := range benefits {
		description, ok := benefitDescriptions[strings.ToLower(benefit)]
		if !ok {
			description = fmt.Sprintf("Helps improve overall skin health through %s", strings.ToLower(benefit))
		}
		detailed = append(detailed, map[string]interface{}{
			"benefit":     benefit,
			"description": description,
		})
	}
	return detailed
}
