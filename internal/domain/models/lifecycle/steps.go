package lifecycle

// StepState is the derived position of a pipeline step relative to the
// workflow's current step. It is never persisted.
type StepState string

const (
	StepComplete StepState = "complete"
	StepCurrent  StepState = "current"
	StepUpcoming StepState = "upcoming"
)

// StepDefinition is one stage of a fixed ordered review pipeline, as
// declared by a workflow template.
type StepDefinition struct {
	Number      int    `json:"number" yaml:"number"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DerivedStep pairs a step definition with its state for one workflow.
type DerivedStep struct {
	Number int       `json:"number"`
	Name   string    `json:"name"`
	State  StepState `json:"state"`
}

// DeriveSteps computes the per-step state for a workflow from its current
// step: steps below it are complete, the step at it is current, the rest are
// upcoming. Pure projection - no side effects, no persistence.
func DeriveSteps(w *DocumentWorkflow, defs []StepDefinition) []DerivedStep {
	steps := make([]DerivedStep, 0, len(defs))
	for _, def := range defs {
		state := StepUpcoming
		switch {
		case def.Number < w.CurrentStep:
			state = StepComplete
		case def.Number == w.CurrentStep:
			state = StepCurrent
		}
		// A completed workflow has walked past its last step.
		if w.Status == WorkflowCompleted {
			state = StepComplete
		}
		steps = append(steps, DerivedStep{Number: def.Number, Name: def.Name, State: state})
	}
	return steps
}
