package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StepStatus represents the state of a progress step
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepError
)

// ProgressStep represents a single step in the progress
type ProgressStep struct {
	Name     string
	Status   StepStatus
	Progress float64 // 0-100, only used for download steps
	Total    int64   // Total bytes for download
	Current  int64   // Current bytes for download
	Error    string
}

// ProgressDisplay manages multi-step progress output. With redraw set the
// step list is rewritten in place using ANSI cursor movement; otherwise each
// change is appended as one line, which suits pipes and log files.
type ProgressDisplay struct {
	out        io.Writer
	steps      []ProgressStep
	redraw     bool
	mu         sync.Mutex
	lastRender time.Time
	rendered   bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(out io.Writer, steps []string, redraw bool) *ProgressDisplay {
	pd := &ProgressDisplay{
		out:    out,
		steps:  make([]ProgressStep, len(steps)),
		redraw: redraw,
	}
	for i, name := range steps {
		pd.steps[i] = ProgressStep{Name: name, Status: StepPending}
	}
	return pd
}

// StartStep marks a step as running. Earlier running steps are completed.
func (p *ProgressDisplay) StartStep(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.steps) {
		return
	}
	for i := 0; i < index; i++ {
		if p.steps[i].Status == StepRunning {
			p.steps[i].Status = StepComplete
			p.render(i)
		}
	}
	p.steps[index].Status = StepRunning
	p.render(index)
}

// CompleteStep marks a step as complete
func (p *ProgressDisplay) CompleteStep(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index >= 0 && index < len(p.steps) {
		p.steps[index].Status = StepComplete
		p.render(index)
	}
}

// FailStep marks a step as failed
func (p *ProgressDisplay) FailStep(index int, err string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index >= 0 && index < len(p.steps) {
		p.steps[index].Status = StepError
		p.steps[index].Error = err
		p.render(index)
	}
}

// Running returns the index of the running step, or -1
func (p *ProgressDisplay) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.steps {
		if s.Status == StepRunning {
			return i
		}
	}
	return -1
}

// UpdateProgress updates download progress for a step
func (p *ProgressDisplay) UpdateProgress(index int, current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.steps) {
		return
	}
	p.steps[index].Current = current
	p.steps[index].Total = total
	if total > 0 {
		p.steps[index].Progress = float64(current) / float64(total) * 100
	}
	// Throttle renders to avoid flickering; appended output only shows the end
	if p.redraw && time.Since(p.lastRender) > 100*time.Millisecond {
		p.render(index)
	}
}

// Detach makes the next render start below any output written in between,
// such as a prompt, instead of overwriting it.
func (p *ProgressDisplay) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rendered = false
}

func (p *ProgressDisplay) render(changed int) {
	p.lastRender = time.Now()

	if !p.redraw {
		fmt.Fprintln(p.out, p.line(changed))
		return
	}

	if p.rendered {
		fmt.Fprintf(p.out, "\033[%dA", len(p.steps)) // Move up
		fmt.Fprint(p.out, "\033[J")                  // Clear from cursor to end
	}
	for i := range p.steps {
		fmt.Fprintln(p.out, p.line(i))
	}
	p.rendered = true
}

func (p *ProgressDisplay) line(i int) string {
	step := p.steps[i]
	stepNum := fmt.Sprintf("[%d/%d]", i+1, len(p.steps))

	var status string
	switch step.Status {
	case StepPending:
		status = " "
	case StepRunning:
		if step.Total > 0 {
			status = fmt.Sprintf("%.1f%% (%s / %s)",
				step.Progress,
				FormatSize(step.Current),
				FormatSize(step.Total))
		} else {
			status = "..."
		}
	case StepComplete:
		status = "✓"
	case StepError:
		status = "✗ " + step.Error
	}

	return fmt.Sprintf("%s %s... %s", stepNum, step.Name, status)
}
