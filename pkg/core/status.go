package core

// PhaseStatus represents the execution status of a workload phase
type PhaseStatus int

const (
	StatusPending PhaseStatus = iota // Not yet started
	StatusRunning                    // Currently executing
	StatusPassed                     // Completed successfully
	StatusFailed                     // Assertion failed (element missing, log text not seen)
	StatusErrored                    // Unexpected error (infrastructure, bad parameters)
	StatusSkipped                    // Not run
)

// String returns the string representation of PhaseStatus
func (s PhaseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsSuccess returns true if the status indicates success
func (s PhaseStatus) IsSuccess() bool {
	return s == StatusPassed
}

// MarshalYAML renders the status by name.
func (s PhaseStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// StatusForError maps an error to the phase status it implies.
// Assertion and timeout failures mean the workload and the UI disagree;
// everything else is an infrastructure or configuration problem.
func StatusForError(err error) PhaseStatus {
	if err == nil {
		return StatusPassed
	}
	switch CategoryOf(err) {
	case ErrCategoryAssertion, ErrCategoryTimeout:
		return StatusFailed
	default:
		return StatusErrored
	}
}
