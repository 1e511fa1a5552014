package block

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Usage parses free-text application guidance into structured formats:
// numbered steps, a quick-reference guide, and extracted timing, method,
// and dosage fields.
type Usage struct{}

// Type returns "usage-block".
func (Usage) Type() string { return TypeUsage }

// Dosage phrasings in order of specificity. The ranged form must come
// before the single-count form so "2–3 drops" is not truncated to
// "3 drops".
var dosagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+[-–]\d+\s+drops?`),
	regexp.MustCompile(`\d+\s+drops?`),
	regexp.MustCompile(`pea[- ]sized\s+amount`),
	regexp.MustCompile(`small\s+amount`),
}

// Generate derives the usage block.
func (Usage) Generate(p content.Product) (content.ContentBlock, error) {
	usage := p.UsageInstructions
	timing := extractTiming(usage)
	dosage := extractDosage(usage)

	return content.ContentBlock{
		Type: TypeUsage,
		Content: map[string]interface{}{
			"usage_text":         usage,
			"usage_steps":        usageSteps(usage, dosage, timing),
			"quick_guide":        quickGuide(p.Name, dosage, timing),
			"timing":             timing,
			"application_method": applicationMethod(usage),
			"dosage":             dosage,
		},
		Metadata: map[string]interface{}{
			"block_name": "Usage Instructions Generator",
			"has_timing": timing != "",
			"has_dosage": dosage != "",
		},
	}, nil
}

// usageSteps builds numbered steps from whatever structure the free text
// yields: dosage first, then timing, then any "before X" sequencing
// clause.
func usageSteps(usage, dosage, timing string) []map[string]interface{} {
	steps := []map[string]interface{}{}
	n := 1

	if dosage != "" {
		steps = append(steps, map[string]interface{}{
			"step":        n,
			"instruction": fmt.Sprintf("Take %s", dosage),
			"type":        "dosage",
		})
		n++
	}

	if timing != "" {
		steps = append(steps, map[string]interface{}{
			"step":        n,
			"instruction": fmt.Sprintf("Apply %s", timing),
			"type":        "timing",
		})
		n++
	}

	if parts := strings.Split(strings.ToLower(usage), "before"); len(parts) > 1 {
		steps = append(steps, map[string]interface{}{
			"step":        n,
			"instruction": fmt.Sprintf("Follow with %s", strings.TrimSpace(parts[1])),
			"type":        "sequence",
		})
	}

	return steps
}

func quickGuide(productName, dosage, timing string) string {
	if dosage == "" {
		dosage = "appropriate amount"
	}
	if timing == "" {
		timing = "as directed"
	}
	return fmt.Sprintf("Apply %s of %s %s.", dosage, productName, timing)
}

func extractTiming(usage string) string {
	lower := strings.ToLower(usage)
	for _, keyword := range []string{"morning", "evening", "night", "daily", "twice daily"} {
		if !strings.Contains(lower, keyword) {
			continue
		}
		switch keyword {
		case "morning", "evening", "night":
			return "in the " + keyword
		}
		return keyword
	}
	return ""
}

func applicationMethod(usage string) string {
	lower := strings.ToLower(usage)
	for _, method := range []string{"apply", "massage", "pat", "spread", "dab"} {
		if strings.Contains(lower, method) {
			return strings.ToUpper(method[:1]) + method[1:]
		}
	}
	return "Apply"
}

func extractDosage(usage string) string {
	lower := strings.ToLower(usage)
	for _, pattern := range dosagePatterns {
		if match := pattern.FindString(lower); match != "" {
			return match
		}
	}
	return ""
}
