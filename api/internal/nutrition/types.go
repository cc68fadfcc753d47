package nutrition

import (
	"fmt"
	"strings"
	"time"
)

// Goal biases the tone of the analysis. It never changes program logic.
type Goal string

const (
	GoalGeneralInfo Goal = "General Info"
	GoalWeightLoss  Goal = "Weight Loss"
	GoalMuscleGain  Goal = "Muscle Gain"
	GoalMaintenance Goal = "Maintenance"
)

// Goals in the order the UI offers them; the first one is the default.
var Goals = []Goal{GoalGeneralInfo, GoalWeightLoss, GoalMuscleGain, GoalMaintenance}

// Key returns the CamelCase identifier, e.g. "WeightLoss".
func (g Goal) Key() string { return strings.ReplaceAll(string(g), " ", "") }

// ParseGoal accepts a label ("Weight Loss"), a key ("WeightLoss") or a
// snake/kebab form ("weight_loss"). Empty input selects GoalGeneralInfo.
func ParseGoal(s string) (Goal, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return GoalGeneralInfo, nil
	}
	norm = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(norm)
	for _, g := range Goals {
		if strings.ToLower(g.Key()) == norm {
			return g, nil
		}
	}
	return "", InvalidInput(fmt.Errorf("unknown goal %q", s))
}

// Image is one uploaded picture. MIME is on the upload allow-list once the
// request has been validated.
type Image struct {
	Data []byte
	MIME string
	Name string
}

// AnalysisRequest is one user submission. It lives for a single round trip.
type AnalysisRequest struct {
	Image Image
	Goal  Goal
	Notes string
}

// Result holds the model output. Text is opaque and passed through untouched.
type Result struct {
	Text    string
	Engine  string
	Model   string
	Elapsed time.Duration
}
