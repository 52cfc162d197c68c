package lifecycle

import "testing"

func TestDeriveSteps(t *testing.T) {
	defs := []StepDefinition{
		{Number: 1, Name: "Upload"},
		{Number: 2, Name: "Review"},
		{Number: 3, Name: "Approve"},
	}

	tests := []struct {
		name string
		w    *DocumentWorkflow
		want []StepState
	}{
		{
			name: "at first step",
			w:    &DocumentWorkflow{CurrentStep: 1, Status: WorkflowInProgress},
			want: []StepState{StepCurrent, StepUpcoming, StepUpcoming},
		},
		{
			name: "mid pipeline",
			w:    &DocumentWorkflow{CurrentStep: 2, Status: WorkflowInProgress},
			want: []StepState{StepComplete, StepCurrent, StepUpcoming},
		},
		{
			name: "at last step",
			w:    &DocumentWorkflow{CurrentStep: 3, Status: WorkflowInProgress},
			want: []StepState{StepComplete, StepComplete, StepCurrent},
		},
		{
			name: "completed workflow marks everything complete",
			w:    &DocumentWorkflow{CurrentStep: 3, Status: WorkflowCompleted},
			want: []StepState{StepComplete, StepComplete, StepComplete},
		},
		{
			name: "rejected workflow keeps its position",
			w:    &DocumentWorkflow{CurrentStep: 2, Status: WorkflowRejected},
			want: []StepState{StepComplete, StepCurrent, StepUpcoming},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSteps(tt.w, defs)
			if len(got) != len(tt.want) {
				t.Fatalf("DeriveSteps() len = %d, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].State != want {
					t.Errorf("steps[%d].State = %s, want %s", i, got[i].State, want)
				}
				if got[i].Number != defs[i].Number || got[i].Name != defs[i].Name {
					t.Errorf("steps[%d] = %+v, definition not carried over", i, got[i])
				}
			}
		})
	}
}

func TestWorkflowStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status WorkflowStatus
		want   bool
	}{
		{WorkflowNotStarted, false},
		{WorkflowInProgress, false},
		{WorkflowCompleted, true},
		{WorkflowRejected, true},
		{WorkflowTimedOut, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
