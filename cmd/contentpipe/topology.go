package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kasparro/contentpipe-go/pipeline"
)

// topologyFile is the YAML shape of a custom pipeline definition.
//
// Example:
//
//	id: faq-only
//	name: FAQ Only Pipeline
//	steps:
//	  - id: parse-data
//	    agent: data-parser-agent
//	    name: Parse Product Data
//	    input: raw_input
//	    output: product
//	  - id: generate-questions
//	    agent: question-generator-agent
//	    depends_on: [parse-data]
//	    input: product
//	    output: question_set
//	  - id: generate-faq
//	    agent: faq-page-agent
//	    depends_on: [generate-questions]
//	    input: product
//	    output: faq_page
type topologyFile struct {
	ID    string         `yaml:"id"`
	Name  string         `yaml:"name"`
	Steps []topologyStep `yaml:"steps"`
}

type topologyStep struct {
	ID          string   `yaml:"id"`
	Agent       string   `yaml:"agent"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	DependsOn   []string `yaml:"depends_on"`
	Input       string   `yaml:"input"`
	Output      string   `yaml:"output"`
}

// loadTopology reads a YAML topology file and builds a validated
// pipeline from it. Agent ids are checked against the orchestrator's
// registry so a typo fails before the run starts.
func loadTopology(path string, orch *pipeline.Orchestrator) (*pipeline.Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology file: %w", err)
	}

	var tf topologyFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse topology file %s: %w", path, err)
	}

	return buildTopology(tf, orch)
}

func buildTopology(tf topologyFile, orch *pipeline.Orchestrator) (*pipeline.Pipeline, error) {
	if tf.ID == "" {
		return nil, fmt.Errorf("topology is missing an id")
	}
	if len(tf.Steps) == 0 {
		return nil, fmt.Errorf("topology %s has no steps", tf.ID)
	}

	name := tf.Name
	if name == "" {
		name = tf.ID
	}

	p := pipeline.NewPipeline(tf.ID, name)
	for _, ts := range tf.Steps {
		if ts.ID == "" {
			return nil, fmt.Errorf("topology %s: step without an id", tf.ID)
		}
		if ts.Agent == "" {
			return nil, fmt.Errorf("step %s has no agent", ts.ID)
		}
		if _, ok := orch.Agent(ts.Agent); !ok {
			return nil, fmt.Errorf("step %s references unknown agent %q (registered: %s)",
				ts.ID, ts.Agent, strings.Join(orch.AgentIDs(), ", "))
		}

		stepName := ts.Name
		if stepName == "" {
			stepName = ts.ID
		}
		step := pipeline.NewStep(ts.ID, stepName, ts.Agent)
		step.Description = ts.Description
		step.DependsOn = ts.DependsOn
		step.InputKey = ts.Input
		step.OutputKey = ts.Output

		if err := p.AddStep(step); err != nil {
			return nil, fmt.Errorf("add step %s: %w", ts.ID, err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid topology %s: %w", tf.ID, err)
	}
	return p, nil
}
