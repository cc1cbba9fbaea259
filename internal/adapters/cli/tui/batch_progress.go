package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// renderProgressBar draws a bar such as [==>       ] for current of total.
// From the halfway point the head sits after the filled part.
func renderProgressBar(current, total, width int) string {
	switch {
	case total <= 0 || current <= 0:
		return "[" + strings.Repeat(" ", width) + "]"
	case current >= total:
		return "[" + strings.Repeat("=", width) + "]"
	}

	ratio := float64(current) / float64(total)
	head := min(max(int(ratio*float64(width)+0.5), 1), width)

	equals := head - 1
	if ratio >= 0.5 {
		equals = head
	}
	equals = min(equals, width-1)
	spaces := max(width-equals-1, 0)

	return "[" + strings.Repeat("=", equals) + ">" + strings.Repeat(" ", spaces) + "]"
}

// ItemResult is the outcome of one video in a folder run
type ItemResult struct {
	Name     string
	Success  bool
	ErrMsg   string
	Duration time.Duration
	Cached   bool
}

// BatchProgress tracks how far a folder run has come
type BatchProgress struct {
	total     int
	completed int
	failures  []ItemResult
	mu        sync.Mutex
}

// NewBatchProgress creates a tracker for total videos
func NewBatchProgress(total int) *BatchProgress {
	if total < 0 {
		total = 0
	}
	return &BatchProgress{total: total}
}

// Add records a finished video and returns the updated counter line
func (bp *BatchProgress) Add(result ItemResult) string {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	bp.completed++
	if !result.Success {
		bp.failures = append(bp.failures, result)
	}
	return bp.line()
}

// Line renders "3/10 [==>       ] 30%"
func (bp *BatchProgress) Line() string {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.line()
}

func (bp *BatchProgress) line() string {
	percent := 0
	if bp.total > 0 {
		percent = (bp.completed * 100) / bp.total
	}
	return fmt.Sprintf("%d/%d %s %d%%", bp.completed, bp.total, renderProgressBar(bp.completed, bp.total, 20), percent)
}

// Failures returns the failed videos in completion order
func (bp *BatchProgress) Failures() []ItemResult {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	out := make([]ItemResult, len(bp.failures))
	copy(out, bp.failures)
	return out
}

// SuccessCount returns the number of videos that got a title
func (bp *BatchProgress) SuccessCount() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.completed - len(bp.failures)
}
