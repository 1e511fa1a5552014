package pipeline

// InputResolver decides what input value a step's agent receives.
//
// The default resolver reads the step's InputKey from the run context;
// custom resolvers can synthesize input from multiple keys, external
// lookups, or per-step rules.
type InputResolver interface {
	// Resolve returns the input value for the step. An error fails the
	// step without invoking its agent.
	Resolve(step *Step, rc *Context) (interface{}, error)
}

// ContextKeyResolver is the default InputResolver: it returns the run
// context value stored under the step's InputKey, or nil when the step
// declares no input key or the key is absent.
type ContextKeyResolver struct{}

// Resolve implements InputResolver.
func (ContextKeyResolver) Resolve(step *Step, rc *Context) (interface{}, error) {
	if step.InputKey == "" {
		return nil, nil
	}
	return rc.GetOr(step.InputKey, nil), nil
}
