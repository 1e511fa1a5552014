package block

import (
	"reflect"
	"strings"
	"testing"
)

func TestSafety_Generate(t *testing.T) {
	t.Run("sample product", func(t *testing.T) {
		blk, err := Safety{}.Generate(sampleProduct())
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if got := blk.GetString("side_effects_text", ""); got != "Mild tingling for sensitive skin" {
			t.Errorf("side_effects_text = %q", got)
		}

		warnings := contentRows(t, blk, "warnings")
		if len(warnings) != 2 {
			t.Fatalf("len(warnings) = %d, want 2: %v", len(warnings), warnings)
		}
		if got := warnings[0]["warning"]; got != "Tingling Sensation" {
			t.Errorf("warnings[0] = %v, want Tingling Sensation", got)
		}
		if got := warnings[1]["warning"]; got != "Sensitive Skin Advisory" {
			t.Errorf("warnings[1] = %v, want Sensitive Skin Advisory", got)
		}

		if got := contentStrings(t, blk, "suitable_for"); !reflect.DeepEqual(got, []string{"Oily", "Combination"}) {
			t.Errorf("suitable_for = %v", got)
		}

		precautions := contentStrings(t, blk, "precautions")
		want := []string{
			"Perform a patch test before first use",
			"Avoid contact with eyes",
			"Keep out of reach of children",
			"Store in a cool, dark place to maintain potency",
			"Use sunscreen during the day as Vitamin C can increase sun sensitivity",
			"Start with less frequent application if you have sensitive skin",
		}
		if !reflect.DeepEqual(precautions, want) {
			t.Errorf("precautions = %v, want %v", precautions, want)
		}

		patchTest := contentMap(t, blk, "patch_test")
		if got := patchTest["urgency"]; got != "recommended" {
			t.Errorf("patch_test.urgency = %v, want recommended", got)
		}

		wantSummary := "This product is formulated for Oily, Combination. Mild tingling for sensitive skin. We recommend a patch test before full application."
		if got := blk.GetString("safety_summary", ""); got != wantSummary {
			t.Errorf("safety_summary = %q, want %q", got, wantSummary)
		}

		if got := blk.Metadata["severity"]; got != "mild" {
			t.Errorf("metadata severity = %v, want mild", got)
		}
	})

	t.Run("no side effects", func(t *testing.T) {
		p := sampleProduct()
		p.SideEffects = ""
		p.KeyIngredients = []string{"Squalane"}

		blk, err := Safety{}.Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if got := blk.GetString("side_effects_text", ""); got != "No known side effects" {
			t.Errorf("side_effects_text = %q", got)
		}
		if warnings := contentRows(t, blk, "warnings"); len(warnings) != 0 {
			t.Errorf("warnings = %v, want empty", warnings)
		}
		if got := len(contentStrings(t, blk, "precautions")); got != 3 {
			t.Errorf("len(precautions) = %d, want the 3 universal ones", got)
		}
		if !strings.HasPrefix(blk.GetString("safety_summary", ""), "This product is generally safe for Oily, Combination.") {
			t.Errorf("safety_summary = %q", blk.GetString("safety_summary", ""))
		}
		if got := blk.Metadata["severity"]; got != "none" {
			t.Errorf("metadata severity = %v, want none", got)
		}
		if got := blk.Metadata["has_side_effects"]; got != false {
			t.Errorf("metadata has_side_effects = %v, want false", got)
		}
	})

	t.Run("no skin types covers all", func(t *testing.T) {
		p := sampleProduct()
		p.SkinTypes = nil
		p.SideEffects = ""

		blk, err := Safety{}.Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if !strings.Contains(blk.GetString("safety_summary", ""), "all skin types") {
			t.Errorf("safety_summary = %q, want mention of all skin types", blk.GetString("safety_summary", ""))
		}
	})

	t.Run("harsh retinol product", func(t *testing.T) {
		p := sampleProduct()
		p.KeyIngredients = []string{"Retinol", "Salicylic Acid"}
		p.SideEffects = "May cause irritation, burning and peeling"

		blk, err := Safety{}.Generate(p)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		warnings := contentRows(t, blk, "warnings")
		var names []string
		for _, w := range warnings {
			names = append(names, w["warning"].(string))
		}
		wantNames := []string{"Skin Irritation", "Burning Sensation", "Skin Peeling"}
		if !reflect.DeepEqual(names, wantNames) {
			t.Errorf("warning names = %v, want %v", names, wantNames)
		}

		patchTest := contentMap(t, blk, "patch_test")
		if got := patchTest["urgency"]; got != "strongly recommended" {
			t.Errorf("patch_test.urgency = %v, want strongly recommended", got)
		}

		contraindications := contentStrings(t, blk, "contraindications")
		wantContra := []string{
			"Not recommended during pregnancy or breastfeeding",
			"Avoid if you have very sensitive or compromised skin barrier",
		}
		if !reflect.DeepEqual(contraindications, wantContra) {
			t.Errorf("contraindications = %v, want %v", contraindications, wantContra)
		}

		precautions := contentStrings(t, blk, "precautions")
		found := false
		for _, pr := range precautions {
			if pr == "Do not combine with other retinoids" {
				found = true
			}
		}
		if !found {
			t.Errorf("precautions missing retinoid warning: %v", precautions)
		}

		// Burning grades severe but the block caps at moderate.
		if got := blk.Metadata["severity"]; got != "moderate" {
			t.Errorf("metadata severity = %v, want moderate", got)
		}
	})
}
