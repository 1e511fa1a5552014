package template

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kasparro/contentpipe-go/pipeline/block"
	"github.com/kasparro/contentpipe-go/pipeline/content"
)

// sampleProduct returns the serum used throughout the template tests.
func sampleProduct() content.Product {
	return content.Product{
		Name:              "GlowBoost Vitamin C Serum",
		Concentration:     "10% Vitamin C",
		SkinTypes:         []content.SkinType{content.SkinOily, content.SkinCombination},
		KeyIngredients:    []string{"Vitamin C", "Hyaluronic Acid"},
		Benefits:          []string{"Brightening", "Fades dark spots"},
		UsageInstructions: "Apply 2–3 drops in the morning before sunscreen",
		SideEffects:       "Mild tingling for sensitive skin",
		Price:             699,
		Currency:          "INR",
		Category:          "skincare",
	}
}

// rivalProduct returns the second serum used by the comparison tests.
func rivalProduct() content.Product {
	return content.Product{
		Name:              "RadiantGlow Niacinamide Serum",
		Concentration:     "5% Niacinamide",
		SkinTypes:         []content.SkinType{content.SkinOily, content.SkinSensitive, content.SkinNormal},
		KeyIngredients:    []string{"Niacinamide", "Zinc PCA", "Hyaluronic Acid"},
		Benefits:          []string{"Pore minimizing", "Oil control", "Brightening"},
		UsageInstructions: "Apply 3-4 drops morning and evening on cleansed skin",
		SideEffects:       "May cause slight redness in first-time users",
		Price:             599,
		Currency:          "INR",
		Category:          "skincare",
	}
}

// productBlocks generates the five stock blocks for a product.
func productBlocks(t *testing.T, p content.Product) map[string]content.ContentBlock {
	t.Helper()
	blocks := make(map[string]content.ContentBlock)
	for typ, gen := range block.Defaults() {
		blk, err := gen.Generate(p)
		if err != nil {
			t.Fatalf("Generate(%s) error = %v", typ, err)
		}
		blocks[typ] = blk
	}
	return blocks
}

// pageMap extracts a nested map value from a page's content.
func pageMap(t *testing.T, page content.GeneratedPage, key string) map[string]interface{} {
	t.Helper()
	m, ok := page.Content[key].(map[string]interface{})
	if !ok {
		t.Fatalf("content[%q] = %T, want map[string]interface{}", key, page.Content[key])
	}
	return m
}

// innerMap extracts a nested map value from an already-extracted map.
func innerMap(t *testing.T, m map[string]interface{}, key string) map[string]interface{} {
	t.Helper()
	inner, ok := m[key].(map[string]interface{})
	if !ok {
		t.Fatalf("value[%q] = %T, want map[string]interface{}", key, m[key])
	}
	return inner
}

func TestRegistry(t *testing.T) {
	t.Run("defaults cover the three page types", func(t *testing.T) {
		reg := Defaults()

		want := []content.PageType{content.PageComparison, content.PageFAQ, content.PageProduct}
		if got := reg.Types(); !reflect.DeepEqual(got, want) {
			t.Errorf("Types() = %v, want %v", got, want)
		}
	})

	t.Run("get returns the registered template", func(t *testing.T) {
		reg := Defaults()

		tpl, ok := reg.Get(content.PageFAQ)
		if !ok {
			t.Fatal("Get(PageFAQ) not found")
		}
		if tpl.Type() != content.PageFAQ {
			t.Errorf("template type = %q, want %q", tpl.Type(), content.PageFAQ)
		}

		if _, ok := reg.Get(content.PageType("landing")); ok {
			t.Error("Get should miss for unregistered page type")
		}
	})

	t.Run("render rejects unknown page types", func(t *testing.T) {
		_, err := Defaults().Render(content.PageType("landing"), Input{Product: sampleProduct()})
		if !errors.Is(err, ErrUnknownTemplate) {
			t.Errorf("Render() error = %v, want ErrUnknownTemplate", err)
		}
	})

	t.Run("render reports missing blocks in declaration order", func(t *testing.T) {
		blocks := productBlocks(t, sampleProduct())
		delete(blocks, block.TypeUsage)
		delete(blocks, block.TypePricing)

		_, err := Defaults().Render(content.PageProduct, Input{Product: sampleProduct(), Blocks: blocks})
		if !errors.Is(err, ErrMissingBlock) {
			t.Fatalf("Render() error = %v, want ErrMissingBlock", err)
		}
		if want := "usage-block, pricing-block"; !strings.Contains(err.Error(), want) {
			t.Errorf("Render() error = %q, want mention of %q", err, want)
		}
	})

	t.Run("render succeeds with all required blocks", func(t *testing.T) {
		page, err := Defaults().Render(content.PageProduct, Input{
			Product: sampleProduct(),
			Blocks:  productBlocks(t, sampleProduct()),
		})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if page.Type != content.PageProduct {
			t.Errorf("page type = %q, want %q", page.Type, content.PageProduct)
		}
	})

	t.Run("new registry skips nil and keeps last duplicate", func(t *testing.T) {
		reg := NewRegistry(nil, FAQ{}, Comparison{}, FAQ{})

		if len(reg) != 2 {
			t.Fatalf("len(registry) = %d, want 2", len(reg))
		}
		if _, ok := reg.Get(content.PageFAQ); !ok {
			t.Error("faq template missing after duplicate registration")
		}
	})
}

func TestMissingBlocks(t *testing.T) {
	blocks := productBlocks(t, sampleProduct())
	delete(blocks, block.TypeBenefits)
	delete(blocks, block.TypeIngredients)

	missing := MissingBlocks(ProductPage{}, blocks)
	want := []string{block.TypeBenefits, block.TypeIngredients}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("MissingBlocks() = %v, want %v", missing, want)
	}

	if missing := MissingBlocks(ProductPage{}, productBlocks(t, sampleProduct())); missing != nil {
		t.Errorf("MissingBlocks() with full set = %v, want nil", missing)
	}
}
