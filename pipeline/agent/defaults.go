package agent

import "github.com/kasparro/contentpipe-go/pipeline"

// Defaults returns the five stock agents in registration order: parser,
// question generator, FAQ page, product page, and comparison page.
//
// Registering them with an orchestrator satisfies every agent id the
// built-in pipeline references.
func Defaults() []pipeline.Agent {
	return []pipeline.Agent{
		NewParser(),
		NewQuestionGenerator(),
		NewFAQPage(),
		NewProductPage(),
		NewComparison(),
	}
}
