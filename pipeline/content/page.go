package content

import "time"

// ContentBlock is the output of one content logic block: a reusable
// fragment of structured page content.
//
// Blocks decouple content derivation from page assembly. A generator
// produces a block once; any template that declares the block type can
// then read its Content keys.
type ContentBlock struct {
	// Type identifies the generator that produced the block,
	// e.g. "benefits-block".
	Type string `json:"block_type"`

	// Content holds the block's structured payload. Keys are defined by
	// the producing generator and read by page templates.
	Content map[string]interface{} `json:"content"`

	// Metadata carries generator bookkeeping (counts, flags, severity).
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Dependencies lists block types this block builds on. Advisory.
	Dependencies []string `json:"dependencies,omitempty"`
}

// Get returns a value from the block's content map, or def when the key
// is absent. Safe on a zero-value block.
func (b ContentBlock) Get(key string, def interface{}) interface{} {
	if b.Content == nil {
		return def
	}
	if v, ok := b.Content[key]; ok {
		return v
	}
	return def
}

// GetString returns a string content value, or def when the key is absent
// or holds a non-string.
func (b ContentBlock) GetString(key, def string) string {
	if s, ok := b.Get(key, def).(string); ok {
		return s
	}
	return def
}

// GetStrings returns a string-slice content value, or nil when the key is
// absent or holds another type.
func (b ContentBlock) GetStrings(key string) []string {
	if s, ok := b.Get(key, nil).([]string); ok {
		return s
	}
	return nil
}

// PageType identifies the kind of page a template produces.
type PageType string

// Supported page types.
const (
	PageFAQ        PageType = "faq"
	PageProduct    PageType = "product_page"
	PageComparison PageType = "comparison"
)

// GeneratedPage is a fully rendered page ready for JSON export.
type GeneratedPage struct {
	// Type is the kind of page.
	Type PageType `json:"page_type"`

	// Title is the page title, also present inside Content.
	Title string `json:"title"`

	// Content is the full structured page body. Its shape is defined by
	// the template that rendered it.
	Content map[string]interface{} `json:"content"`

	// TemplateUsed records the id of the rendering template.
	TemplateUsed string `json:"template_used"`

	// BlocksUsed records the block types available during rendering.
	BlocksUsed []string `json:"blocks_used"`

	// GeneratedAt is the render timestamp.
	GeneratedAt time.Time `json:"generated_at"`
}
