package agent

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// Compile-time interface checks.
var (
	_ pipeline.Agent            = (*Parser)(nil)
	_ pipeline.StatusTracker    = (*Parser)(nil)
	_ pipeline.DependencyLister = (*Parser)(nil)
)

// rawProductData returns the sample source data the pipeline ships
// with, field names and formatting as they arrive from upstream.
func rawProductData() map[string]interface{} {
	return map[string]interface{}{
		"Product Name":    "GlowBoost Vitamin C Serum",
		"Concentration":   "10% Vitamin C",
		"Skin Type":       "Oily, Combination",
		"Key Ingredients": "Vitamin C, Hyaluronic Acid",
		"Benefits":        "Brightening, Fades dark spots",
		"How to Use":      "Apply 2–3 drops in the morning before sunscreen",
		"Side Effects":    "Mild tingling for sensitive skin",
		"Price":           "₹699",
	}
}

func TestParser_Identity(t *testing.T) {
	p := NewParser()

	if p.ID() != "data-parser-agent" {
		t.Errorf("ID() = %q, want %q", p.ID(), "data-parser-agent")
	}
	if p.Name() != "Data Parser Agent" {
		t.Errorf("Name() = %q, want %q", p.Name(), "Data Parser Agent")
	}
	if len(p.Dependencies()) != 0 {
		t.Errorf("Dependencies() = %v, want none", p.Dependencies())
	}
	if p.Status() != pipeline.AgentIdle {
		t.Errorf("Status() = %q, want %q", p.Status(), pipeline.AgentIdle)
	}
}

func TestParser_Validate(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name  string
		input interface{}
		want  bool
	}{
		{"sample data", rawProductData(), true},
		{"lowercase name key", map[string]interface{}{"name": "Serum"}, true},
		{"underscore name key", map[string]interface{}{"product_name": "Serum"}, true},
		{"no name key", map[string]interface{}{"price": "₹699"}, false},
		{"empty map", map[string]interface{}{}, false},
		{"not a map", "GlowBoost", false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Validate(tt.input); got != tt.want {
				t.Errorf("Validate(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParser_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("parses the sample product", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		result, err := p.Execute(ctx, rawProductData(), rc)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		product, ok := result.(content.Product)
		if !ok {
			t.Fatalf("Execute() result = %T, want content.Product", result)
		}

		if product.Name != "GlowBoost Vitamin C Serum" {
			t.Errorf("Name = %q, want %q", product.Name, "GlowBoost Vitamin C Serum")
		}
		if product.Concentration != "10% Vitamin C" {
			t.Errorf("Concentration = %q, want %q", product.Concentration, "10% Vitamin C")
		}
		wantSkin := []content.SkinType{content.SkinOily, content.SkinCombination}
		if !reflect.DeepEqual(product.SkinTypes, wantSkin) {
			t.Errorf("SkinTypes = %v, want %v", product.SkinTypes, wantSkin)
		}
		wantIngredients := []string{"Vitamin C", "Hyaluronic Acid"}
		if !reflect.DeepEqual(product.KeyIngredients, wantIngredients) {
			t.Errorf("KeyIngredients = %v, want %v", product.KeyIngredients, wantIngredients)
		}
		wantBenefits := []string{"Brightening", "Fades dark spots"}
		if !reflect.DeepEqual(product.Benefits, wantBenefits) {
			t.Errorf("Benefits = %v, want %v", product.Benefits, wantBenefits)
		}
		if product.UsageInstructions != "Apply 2–3 drops in the morning before sunscreen" {
			t.Errorf("UsageInstructions = %q", product.UsageInstructions)
		}
		if product.SideEffects != "Mild tingling for sensitive skin" {
			t.Errorf("SideEffects = %q", product.SideEffects)
		}
		if product.Price != 699 {
			t.Errorf("Price = %v, want 699", product.Price)
		}
		if product.Currency != "INR" {
			t.Errorf("Currency = %q, want INR", product.Currency)
		}
		if product.Category != "skincare" {
			t.Errorf("Category = %q, want skincare", product.Category)
		}
	})

	t.Run("stores product and raw data in the run context", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()
		raw := rawProductData()

		if _, err := p.Execute(ctx, raw, rc); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		stored, ok := rc.Get("product")
		if !ok {
			t.Fatal("context missing product")
		}
		if _, ok := stored.(content.Product); !ok {
			t.Errorf("context product = %T, want content.Product", stored)
		}

		rawStored, ok := rc.Get("raw_data")
		if !ok {
			t.Fatal("context missing raw_data")
		}
		if !reflect.DeepEqual(rawStored, raw) {
			t.Errorf("context raw_data = %v, want original input", rawStored)
		}
	})

	t.Run("logs the parse", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		if _, err := p.Execute(ctx, rawProductData(), rc); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		entries := rc.LogEntries()
		if len(entries) != 1 {
			t.Fatalf("got %d log entries, want 1", len(entries))
		}
		entry := entries[0]
		if entry.Actor != "data-parser-agent" {
			t.Errorf("log actor = %q, want data-parser-agent", entry.Actor)
		}
		if entry.Action != "parsed_product" {
			t.Errorf("log action = %q, want parsed_product", entry.Action)
		}
		if entry.Detail["product_name"] != "GlowBoost Vitamin C Serum" {
			t.Errorf("log product_name = %v", entry.Detail["product_name"])
		}
		if entry.Detail["fields_parsed"] != 10 {
			t.Errorf("log fields_parsed = %v, want 10", entry.Detail["fields_parsed"])
		}
	})

	t.Run("accepts aliased field names", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		result, err := p.Execute(ctx, map[string]interface{}{
			"product_name":       "Night Repair Cream",
			"skin_type":          "Dry, Sensitive",
			"ingredients":        "Retinol, Squalane",
			"usage_instructions": "Apply nightly on cleansed skin",
			"side_effects":       "Possible dryness in first week",
			"product_id":         "PROD-0042",
		}, rc)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		product := result.(content.Product)
		if product.Name != "Night Repair Cream" {
			t.Errorf("Name = %q", product.Name)
		}
		wantSkin := []content.SkinType{content.SkinDry, content.SkinSensitive}
		if !reflect.DeepEqual(product.SkinTypes, wantSkin) {
			t.Errorf("SkinTypes = %v, want %v", product.SkinTypes, wantSkin)
		}
		if !reflect.DeepEqual(product.KeyIngredients, []string{"Retinol", "Squalane"}) {
			t.Errorf("KeyIngredients = %v", product.KeyIngredients)
		}
		if product.UsageInstructions != "Apply nightly on cleansed skin" {
			t.Errorf("UsageInstructions = %q", product.UsageInstructions)
		}
		if product.SideEffects != "Possible dryness in first week" {
			t.Errorf("SideEffects = %q", product.SideEffects)
		}
		if product.ProductID != "PROD-0042" {
			t.Errorf("ProductID = %q, want PROD-0042", product.ProductID)
		}
	})

	t.Run("accepts list fields as slices", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		result, err := p.Execute(ctx, map[string]interface{}{
			"name":            "Mist",
			"key ingredients": []string{"Rose Water", " Glycerin "},
			"benefits":        []interface{}{"Hydration", "", "Soothing"},
		}, rc)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		product := result.(content.Product)
		if !reflect.DeepEqual(product.KeyIngredients, []string{"Rose Water", "Glycerin"}) {
			t.Errorf("KeyIngredients = %v", product.KeyIngredients)
		}
		if !reflect.DeepEqual(product.Benefits, []string{"Hydration", "Soothing"}) {
			t.Errorf("Benefits = %v", product.Benefits)
		}
	})

	t.Run("drops unrecognized skin types", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		result, err := p.Execute(ctx, map[string]interface{}{
			"name":      "Serum",
			"skin type": "Oily, Reptilian, normal",
		}, rc)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		product := result.(content.Product)
		wantSkin := []content.SkinType{content.SkinOily, content.SkinNormal}
		if !reflect.DeepEqual(product.SkinTypes, wantSkin) {
			t.Errorf("SkinTypes = %v, want %v", product.SkinTypes, wantSkin)
		}
	})

	t.Run("fills defaults for missing fields", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		result, err := p.Execute(ctx, map[string]interface{}{"name": "Bare Serum"}, rc)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		product := result.(content.Product)
		if product.Category != "skincare" {
			t.Errorf("Category = %q, want skincare", product.Category)
		}
		if product.Currency != "INR" {
			t.Errorf("Currency = %q, want INR", product.Currency)
		}
		if product.Price != 0 {
			t.Errorf("Price = %v, want 0", product.Price)
		}
	})

	t.Run("names the product Unknown Product when no name arrives", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		result, err := p.Execute(ctx, map[string]interface{}{"price": 250}, rc)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		product := result.(content.Product)
		if product.Name != "Unknown Product" {
			t.Errorf("Name = %q, want Unknown Product", product.Name)
		}
	})

	t.Run("returns an invalid input error for non-map input", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		_, err := p.Execute(ctx, "not a map", rc)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, pipeline.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}

		var stepErr *pipeline.StepError
		if !errors.As(err, &stepErr) {
			t.Fatalf("error type = %T, want *pipeline.StepError", err)
		}
		if stepErr.AgentID != "data-parser-agent" {
			t.Errorf("AgentID = %q, want data-parser-agent", stepErr.AgentID)
		}
		if stepErr.Code != pipeline.CodeInvalidInput {
			t.Errorf("Code = %q, want %q", stepErr.Code, pipeline.CodeInvalidInput)
		}
	})
}

func TestParser_Prices(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		data         map[string]interface{}
		wantPrice    float64
		wantCurrency string
	}{
		{
			name:         "rupee string",
			data:         map[string]interface{}{"name": "A", "price": "₹699"},
			wantPrice:    699,
			wantCurrency: "INR",
		},
		{
			name:         "dollar string",
			data:         map[string]interface{}{"name": "A", "price": "$24.99"},
			wantPrice:    24.99,
			wantCurrency: "USD",
		},
		{
			name:         "euro string",
			data:         map[string]interface{}{"name": "A", "price": "€30"},
			wantPrice:    30,
			wantCurrency: "EUR",
		},
		{
			name:         "thousands separator",
			data:         map[string]interface{}{"name": "A", "price": "₹1,299"},
			wantPrice:    1299,
			wantCurrency: "INR",
		},
		{
			name:         "numeric price",
			data:         map[string]interface{}{"name": "A", "price": 699.5},
			wantPrice:    699.5,
			wantCurrency: "INR",
		},
		{
			name:         "integer price",
			data:         map[string]interface{}{"name": "A", "price": 500},
			wantPrice:    500,
			wantCurrency: "INR",
		},
		{
			name:         "unparseable price",
			data:         map[string]interface{}{"name": "A", "price": "free"},
			wantPrice:    0,
			wantCurrency: "INR",
		},
		{
			name:         "declared currency wins",
			data:         map[string]interface{}{"name": "A", "price": "₹699", "currency": "usd"},
			wantPrice:    699,
			wantCurrency: "USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			rc := pipeline.NewContext()

			result, err := p.Execute(ctx, tt.data, rc)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			product := result.(content.Product)
			if product.Price != tt.wantPrice {
				t.Errorf("Price = %v, want %v", product.Price, tt.wantPrice)
			}
			if product.Currency != tt.wantCurrency {
				t.Errorf("Currency = %q, want %q", product.Currency, tt.wantCurrency)
			}
		})
	}
}

// TestParser_InPipeline exercises the parser through the full agent
// lifecycle the engine drives.
func TestParser_InPipeline(t *testing.T) {
	p := NewParser()
	rc := pipeline.NewContext()

	result, err := pipeline.RunAgent(context.Background(), p, rawProductData(), rc)
	if err != nil {
		t.Fatalf("RunAgent() error = %v", err)
	}
	if _, ok := result.(content.Product); !ok {
		t.Fatalf("result = %T, want content.Product", result)
	}
	if p.Status() != pipeline.AgentCompleted {
		t.Errorf("Status() = %q, want %q", p.Status(), pipeline.AgentCompleted)
	}

	t.Run("validation failure surfaces as step error", func(t *testing.T) {
		p := NewParser()
		rc := pipeline.NewContext()

		_, err := pipeline.RunAgent(context.Background(), p, "not a map", rc)
		if !errors.Is(err, pipeline.ErrInvalidInput) {
			t.Fatalf("error = %v, want ErrInvalidInput", err)
		}
		if p.Status() != pipeline.AgentFailed {
			t.Errorf("Status() = %q, want %q", p.Status(), pipeline.AgentFailed)
		}
	})
}
