package pipeline

// Step is a state of the release state machine. Steps run strictly in
// declaration order.
type Step int

const (
	StepPreflight Step = iota
	StepVersionResolved
	StepFilesRewritten
	StepTestsRun
	StepCommitted
	StepTagged
	StepPushed
	StepReleasePublished
	StepDone
)

var stepNames = [...]string{
	StepPreflight:        "Preflight",
	StepVersionResolved:  "VersionResolved",
	StepFilesRewritten:   "FilesRewritten",
	StepTestsRun:         "TestsRun",
	StepCommitted:        "Committed",
	StepTagged:           "Tagged",
	StepPushed:           "Pushed",
	StepReleasePublished: "ReleasePublished",
	StepDone:             "Done",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "Unknown"
	}
	return stepNames[s]
}

// mutating reports whether the step changes the working tree, the
// repository, the remote or the release host.
func (s Step) mutating() bool {
	switch s {
	case StepFilesRewritten, StepCommitted, StepTagged, StepPushed, StepReleasePublished:
		return true
	default:
		return false
	}
}

// Status is the outcome of a single step.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// StepResult records how a step ended.
type StepResult struct {
	Step   Step
	Status Status
	Detail string
}
