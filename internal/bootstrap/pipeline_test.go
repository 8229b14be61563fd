package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPipelineRunsInOrder(t *testing.T) {
	var order []string
	var p Pipeline
	for _, name := range []string{"provision", "venv", "install", "launch"} {
		name := name
		p.Add(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "provision venv install launch"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("execution order = %q, want %q", got, want)
	}
	for _, step := range p.Steps() {
		if step.Status != StatusSucceeded {
			t.Errorf("step %s status = %s, want %s", step.Name, step.Status, StatusSucceeded)
		}
	}
}

func TestPipelineFailFast(t *testing.T) {
	boom := errors.New("no compiler")
	ran := make(map[string]bool)

	var p Pipeline
	p.Add("provision", func(ctx context.Context) error {
		ran["provision"] = true
		return boom
	})
	p.Add("venv", func(ctx context.Context) error {
		ran["venv"] = true
		return nil
	})
	p.Add("launch", func(ctx context.Context) error {
		ran["launch"] = true
		return nil
	})

	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run() with failing step succeeded, want error")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Run() error is %T, want *StepError", err)
	}
	if stepErr.Step != "provision" {
		t.Errorf("failed step = %q, want %q", stepErr.Step, "provision")
	}
	if !errors.Is(err, boom) {
		t.Error("StepError does not wrap the step's error")
	}

	if ran["venv"] || ran["launch"] {
		t.Error("steps after the failure still ran")
	}

	steps := p.Steps()
	if steps[0].Status != StatusFailed {
		t.Errorf("provision status = %s, want %s", steps[0].Status, StatusFailed)
	}
	if steps[1].Status != StatusSkipped || steps[2].Status != StatusSkipped {
		t.Error("steps after the failure not marked skipped")
	}
}

func TestPipelineSkip(t *testing.T) {
	ran := false
	var p Pipeline
	p.Skip("provision")
	p.Add("venv", func(ctx context.Context) error {
		ran = true
		return nil
	})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !ran {
		t.Error("step after a pre-skipped step did not run")
	}
	if p.Steps()[0].Status != StatusSkipped {
		t.Error("pre-skipped step lost its status")
	}
}

func TestPipelineSummary(t *testing.T) {
	var p Pipeline
	p.Add("provision", func(ctx context.Context) error { return nil })
	p.Add("venv", func(ctx context.Context) error { return errors.New("python missing") })
	p.Add("launch", func(ctx context.Context) error { return nil })

	_ = p.Run(context.Background())

	var sb strings.Builder
	p.Summary(&sb)
	out := sb.String()

	for _, want := range []string{
		"[ OK ] provision",
		"[FAIL] venv: python missing",
		"[SKIP] launch",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
