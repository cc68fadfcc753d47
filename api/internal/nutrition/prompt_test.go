package nutrition

import (
	"strings"
	"testing"
)

func TestBuildPromptDeterministic(t *testing.T) {
	for _, g := range Goals {
		a := BuildPrompt(g, "grilled, no oil")
		b := BuildPrompt(g, "grilled, no oil")
		if a != b {
			t.Fatalf("goal %q: prompt differs between calls", g)
		}
	}
}

func TestBuildPromptWeightLossHomemade(t *testing.T) {
	p := BuildPrompt(GoalWeightLoss, "homemade")
	for _, want := range []string{"Weight Loss", "homemade"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
	if !strings.HasPrefix(p, SystemPrompt) {
		t.Error("prompt must start with the system template")
	}
	if !strings.HasSuffix(p, "User notes: homemade | Goal: Weight Loss") {
		t.Errorf("unexpected user message: %q", p[len(SystemPrompt):])
	}
}

func TestBuildPromptUserMessage(t *testing.T) {
	tests := []struct {
		name  string
		goal  Goal
		notes string
		want  string
	}{
		{"nothing", GoalGeneralInfo, "", noNotes},
		{"blank notes", GoalGeneralInfo, "  \n ", noNotes},
		{"empty goal", "", "", noNotes},
		{"notes only", GoalGeneralInfo, "restaurant serving", "User notes: restaurant serving"},
		{"goal only", GoalMuscleGain, "", "User notes: Goal: Muscle Gain"},
		{"both", GoalMaintenance, "pasta", "User notes: pasta | Goal: Maintenance"},
		{"verbatim", GoalGeneralInfo, `<b>"x"</b> & y`, `User notes: <b>"x"</b> & y`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(tt.goal, tt.notes)
			if got != SystemPrompt+"\n\n"+tt.want {
				t.Errorf("got user message %q, want %q", strings.TrimPrefix(got, SystemPrompt+"\n\n"), tt.want)
			}
		})
	}
}

func TestParseGoal(t *testing.T) {
	tests := map[string]Goal{
		"":             GoalGeneralInfo,
		"General Info": GoalGeneralInfo,
		"GeneralInfo":  GoalGeneralInfo,
		"weight loss":  GoalWeightLoss,
		"WeightLoss":   GoalWeightLoss,
		"weight_loss":  GoalWeightLoss,
		"muscle-gain":  GoalMuscleGain,
		" MAINTENANCE": GoalMaintenance,
	}
	for in, want := range tests {
		got, err := ParseGoal(in)
		if err != nil {
			t.Errorf("ParseGoal(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseGoal(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseGoal("bulk"); KindOf(err) != KindInvalidInput {
		t.Errorf("ParseGoal(bulk) kind = %v, want invalid_input", KindOf(err))
	}
}
