package pipeline

// ActionKind classifies a mutating action.
type ActionKind string

const (
	ActionWrite   ActionKind = "write"
	ActionCommand ActionKind = "command"
	ActionRelease ActionKind = "release"
)

// Action is a mutating action the pipeline performed, or would have
// performed under dry-run.
type Action struct {
	Step        Step
	Kind        ActionKind
	Description string

	// Command is the equivalent command line, if any.
	Command string

	// Diff is the unified diff of a file write.
	Diff string

	Executed bool
}

// Report collects the outcome of a release run.
type Report struct {
	// Plan is nil when the run failed before the version was resolved.
	Plan *ReleasePlan

	Steps    []StepResult
	Actions  []Action
	Warnings []string

	// Rewritten lists the version files whose content changed.
	Rewritten []string

	Committed  bool
	Tagged     bool
	Pushed     bool
	ReleaseURL string
}

// Last returns the last step that ended, and false for an empty report.
func (r *Report) Last() (StepResult, bool) {
	if len(r.Steps) == 0 {
		return StepResult{}, false
	}
	return r.Steps[len(r.Steps)-1], true
}

// Reached reports whether step completed successfully or was skipped.
func (r *Report) Reached(step Step) bool {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Status != StatusFailed
		}
	}
	return false
}

// Status returns the status of step, or "" when it never ran.
func (r *Report) Status(step Step) Status {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Status
		}
	}
	return ""
}

func (r *Report) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
