package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Status is the lifecycle state of one step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Step is one phase of a bootstrap run.
type Step struct {
	Name     string
	Run      func(ctx context.Context) error
	Status   Status
	Err      error
	Duration time.Duration
}

// StepError reports which step aborted a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs steps in order with fail-fast semantics.
type Pipeline struct {
	steps []*Step
}

// Add appends a step to the pipeline.
func (p *Pipeline) Add(name string, fn func(ctx context.Context) error) {
	p.steps = append(p.steps, &Step{Name: name, Run: fn, Status: StatusPending})
}

// Skip appends a step already marked skipped, recording phases disabled
// by flags so the summary stays complete.
func (p *Pipeline) Skip(name string) {
	p.steps = append(p.steps, &Step{Name: name, Status: StatusSkipped})
}

// Run executes the steps in order. The first failure marks the remaining
// steps skipped and returns a StepError naming the failed step.
func (p *Pipeline) Run(ctx context.Context) error {
	var failure *StepError
	for _, step := range p.steps {
		if step.Status == StatusSkipped {
			log.Debug("step disabled", "step", step.Name)
			continue
		}
		if failure != nil {
			step.Status = StatusSkipped
			continue
		}

		step.Status = StatusRunning
		log.Debug("step starting", "step", step.Name)
		start := time.Now()
		err := step.Run(ctx)
		step.Duration = time.Since(start)

		if err != nil {
			step.Status = StatusFailed
			step.Err = err
			failure = &StepError{Step: step.Name, Err: err}
			log.Error("step failed", "step", step.Name, "err", err)
			continue
		}
		step.Status = StatusSucceeded
		log.Debug("step finished", "step", step.Name, "took", step.Duration)
	}

	if failure != nil {
		return failure
	}
	return nil
}

// Steps returns the pipeline's steps in order, for reporting.
func (p *Pipeline) Steps() []*Step {
	return p.steps
}

// Summary writes a one-line-per-step report of the last run.
func (p *Pipeline) Summary(w io.Writer) {
	for _, step := range p.steps {
		switch step.Status {
		case StatusSucceeded:
			fmt.Fprintf(w, "  [ OK ] %s (%s)\n", step.Name, step.Duration.Round(time.Millisecond))
		case StatusFailed:
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", step.Name, step.Err)
		case StatusSkipped:
			fmt.Fprintf(w, "  [SKIP] %s\n", step.Name)
		default:
			fmt.Fprintf(w, "  [    ] %s\n", step.Name)
		}
	}
}
