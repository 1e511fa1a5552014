package content

import (
	"encoding/json"
	"sort"
)

// QuestionCategory classifies a generated user question.
type QuestionCategory string

// Question categories. Declaration order is the generation order: question
// ids (Q1..Qn) are assigned by iterating categories in this sequence.
const (
	CategoryInformational QuestionCategory = "informational"
	CategorySafety        QuestionCategory = "safety"
	CategoryUsage         QuestionCategory = "usage"
	CategoryPurchase      QuestionCategory = "purchase"
	CategoryComparison    QuestionCategory = "comparison"
	CategoryIngredients   QuestionCategory = "ingredients"
	CategoryEffectiveness QuestionCategory = "effectiveness"
	CategorySuitability   QuestionCategory = "suitability"
)

// QuestionCategories returns every category in declaration order.
func QuestionCategories() []QuestionCategory {
	return []QuestionCategory{
		CategoryInformational,
		CategorySafety,
		CategoryUsage,
		CategoryPurchase,
		CategoryComparison,
		CategoryIngredients,
		CategoryEffectiveness,
		CategorySuitability,
	}
}

// Question is a generated user question about a product, together with a
// preliminary answer and the product fields that informed it.
type Question struct {
	// ID is the question identifier, assigned sequentially (Q1, Q2, ...).
	ID string `json:"question_id"`

	// Text is the question itself.
	Text string `json:"question"`

	// Category classifies the question.
	Category QuestionCategory `json:"category"`

	// Answer is a preliminary answer derived from product fields. Page
	// templates may replace it with richer block-derived copy.
	Answer string `json:"answer,omitempty"`

	// SourceFields names the product fields that informed this question.
	SourceFields []string `json:"source_fields"`

	// Priority orders questions for display. Lower is more important.
	Priority int `json:"priority"`
}

// QuestionSet is the collection of questions generated for one product.
type QuestionSet struct {
	ProductName string
	Questions   []Question
}

// Add appends a question to the set.
func (qs *QuestionSet) Add(q Question) {
	qs.Questions = append(qs.Questions, q)
}

// ByCategory returns the questions in the given category, preserving
// insertion order.
func (qs *QuestionSet) ByCategory(cat QuestionCategory) []Question {
	var out []Question
	for _, q := range qs.Questions {
		if q.Category == cat {
			out = append(out, q)
		}
	}
	return out
}

// Top returns the n highest-priority questions (lower Priority value means
// higher priority). Ties keep insertion order. The receiver is not
// modified; if n exceeds the set size the whole sorted set is returned.
func (qs *QuestionSet) Top(n int) []Question {
	sorted := make([]Question, len(qs.Questions))
	copy(sorted, qs.Questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}

// MarshalJSON renders the set grouped by category, the shape consumed by
// the questions export:
//
//	{
//	  "product_name": "GlowBoost Vitamin C Serum",
//	  "total_questions": 14,
//	  "questions_by_category": {
//	    "usage": [ {...}, ... ],
//	    ...
//	  }
//	}
//
// Categories with no questions are omitted.
func (qs *QuestionSet) MarshalJSON() ([]byte, error) {
	grouped := make(map[QuestionCategory][]Question)
	for _, cat := range QuestionCategories() {
		if questions := qs.ByCategory(cat); len(questions) > 0 {
			grouped[cat] = questions
		}
	}

	return json.Marshal(struct {
		ProductName    string                          `json:"product_name"`
		TotalQuestions int                             `json:"total_questions"`
		ByCategory     map[QuestionCategory][]Question `json:"questions_by_category"`
	}{
		ProductName:    qs.ProductName,
		TotalQuestions: len(qs.Questions),
		ByCategory:     grouped,
	})
}
