package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kasparro/contentpipe-go/pipeline"
	"github.com/kasparro/contentpipe-go/pipeline/agent"
	"github.com/kasparro/contentpipe-go/pipeline/emit"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <topology.yaml>",
		Short: "Validate a pipeline topology file",
		Long: `Check a topology file without running anything: every step must name
a registered agent, dependencies must resolve, and the dependency
graph must be acyclic.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func runValidate(path string) error {
	orch := pipeline.New(pipeline.WithEmitter(emit.NewNullEmitter()))
	for _, a := range agent.Defaults() {
		orch.RegisterAgent(a)
	}

	p, err := loadTopology(path, orch)
	if err != nil {
		return err
	}

	for _, w := range dependencyWarnings(p, orch) {
		printWarning(w)
	}

	printSuccess(fmt.Sprintf("%s: %d steps, agents resolved, no cycles", p.Name, p.Len()))
	return nil
}

// dependencyWarnings cross-checks step wiring against the dependencies
// agents declare through pipeline.DependencyLister. A step whose agent
// expects another agent to run first should have that agent somewhere
// among its transitive dependencies. Advisory only: a topology may feed
// the expected data through InputKey from another source.
func dependencyWarnings(p *pipeline.Pipeline, orch *pipeline.Orchestrator) []string {
	var warnings []string
	for _, step := range p.Steps() {
		a, ok := orch.Agent(step.AgentID)
		if !ok {
			continue
		}
		lister, ok := a.(pipeline.DependencyLister)
		if !ok {
			continue
		}

		upstream := upstreamAgents(p, step)
		for _, want := range lister.Dependencies() {
			if !upstream[want] {
				warnings = append(warnings, fmt.Sprintf(
					"step %s: agent %s expects %s to run first, but no upstream step uses it",
					step.ID, step.AgentID, want))
			}
		}
	}
	return warnings
}

// upstreamAgents returns the agent ids used by the step's transitive
// dependencies.
func upstreamAgents(p *pipeline.Pipeline, step *pipeline.Step) map[string]bool {
	agents := make(map[string]bool)
	visited := make(map[string]bool)
	queue := append([]string(nil), step.DependsOn...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		dep, ok := p.Step(id)
		if !ok {
			continue
		}
		agents[dep.AgentID] = true
		queue = append(queue, dep.DependsOn...)
	}
	return agents
}
