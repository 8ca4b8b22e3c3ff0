package workload

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
)

// PhaseResult is the outcome of one phase.
type PhaseResult struct {
	RunID       string             `yaml:"runId"`
	Workload    string             `yaml:"workload"`
	Phase       Phase              `yaml:"phase"`
	Status      core.PhaseStatus   `yaml:"status"`
	Duration    int64              `yaml:"durationMs"` // milliseconds
	Category    core.ErrorCategory `yaml:"category,omitempty"`
	Error       string             `yaml:"error,omitempty"`
	Attachments []core.Attachment  `yaml:"attachments,omitempty"`

	err error
}

// Err returns the error the phase failed with, if any.
func (r PhaseResult) Err() error {
	return r.err
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Artifacts core.ArtifactConfig

	// Live progress callbacks
	OnPhaseStart func(workload string, phase Phase)
	OnPhaseEnd   func(result PhaseResult)
}

// Runner runs workload phases against one Automation. Every result of a
// Runner carries the same run ID.
type Runner struct {
	auto   *uiauto.Automation
	config RunnerConfig
	runID  string
	now    func() time.Time
}

// NewRunner creates a Runner with a fresh run ID.
func NewRunner(a *uiauto.Automation, cfg RunnerConfig) *Runner {
	return &Runner{
		auto:   a,
		config: cfg,
		runID:  uuid.NewString(),
		now:    time.Now,
	}
}

// RunID identifies this run in results and artifact names.
func (r *Runner) RunID() string {
	return r.runID
}

// RunPhase runs a single phase of w.
func (r *Runner) RunPhase(w Workload, p Phase) PhaseResult {
	if r.config.OnPhaseStart != nil {
		r.config.OnPhaseStart(w.Name(), p)
	}
	logger.Info("[%s] %s: %s started", r.runID, w.Name(), p)

	start := r.now()
	err := call(w, p, r.auto)
	result := PhaseResult{
		RunID:    r.runID,
		Workload: w.Name(),
		Phase:    p,
		Status:   core.StatusForError(err),
		Duration: r.now().Sub(start).Milliseconds(),
		err:      err,
	}
	if err != nil {
		result.Category = core.CategoryOf(err)
		result.Error = err.Error()
		logger.Error("[%s] %s: %s %s: %v", r.runID, w.Name(), p, result.Status, err)
	} else {
		logger.Info("[%s] %s: %s passed in %dms", r.runID, w.Name(), p, result.Duration)
	}

	if r.config.Artifacts.ShouldCapture(result.Status) {
		result.Attachments = r.captureArtifacts(w, p)
	}

	if r.config.OnPhaseEnd != nil {
		r.config.OnPhaseEnd(result)
	}
	return result
}

// RunAll runs phases in order. After a failure the remaining phases are
// skipped, except teardown which always runs.
func (r *Runner) RunAll(w Workload, phases []Phase) []PhaseResult {
	results := make([]PhaseResult, 0, len(phases))
	failed := false
	for _, p := range phases {
		if failed && p != PhaseTeardown {
			results = append(results, PhaseResult{
				RunID:    r.runID,
				Workload: w.Name(),
				Phase:    p,
				Status:   core.StatusSkipped,
			})
			continue
		}
		res := r.RunPhase(w, p)
		if !res.Status.IsSuccess() {
			failed = true
		}
		results = append(results, res)
	}
	return results
}

// captureArtifacts takes a screenshot named after the phase. Capture
// problems are logged, never returned.
func (r *Runner) captureArtifacts(w Workload, p Phase) []core.Attachment {
	name := fmt.Sprintf("%s-%s-%s", w.Name(), p, shortID(r.runID))
	res, err := r.auto.TakeScreenshot(name)
	if err != nil {
		logger.Warn("capture %s: %v", name, err)
		return nil
	}
	if res == uiauto.ScreenshotUnsupported {
		return nil
	}
	return []core.Attachment{core.NewScreenshotAttachment(r.auto.ScreenshotPath(name))}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Failed reports whether any result is not a success or skip.
func Failed(results []PhaseResult) bool {
	for _, res := range results {
		if res.Status == core.StatusFailed || res.Status == core.StatusErrored {
			return true
		}
	}
	return false
}
