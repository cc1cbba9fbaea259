package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/devbush/vidtitle/internal/adapters/cli/tui"
	"github.com/devbush/vidtitle/internal/application"
	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/i18n"
	"github.com/devbush/vidtitle/internal/ports"
)

// pipelineStages are the steps shown for every video
var pipelineStages = []domain.Stage{
	domain.StageExtracting,
	domain.StageTranscribing,
	domain.StageSelectingModel,
	domain.StageGenerating,
}

type lineResult struct {
	line string
	err  error
}

// Console is the terminal side of a run: it asks questions on in and renders
// core events on out in the selected language.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	str    *i18n.Strings
	redraw bool

	header  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
	bold    lipgloss.Style

	mu      sync.Mutex
	pending chan lineResult
	steps   *tui.ProgressDisplay
	batch   *tui.BatchProgress
	started time.Time
	cached  bool
}

// NewConsole creates a console. redraw enables in-place progress updates and
// should only be set for terminals.
func NewConsole(in io.Reader, out io.Writer, str *i18n.Strings, redraw bool) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		str:     str,
		redraw:  redraw,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("245")),
		bold:    r.NewStyle().Bold(true),
	}
}

// Strings returns the active translation
func (c *Console) Strings() *i18n.Strings {
	return c.str
}

// Ask shows the localized message for key and reads one line. EOF and
// cancellation are returned as errors.
func (c *Console) Ask(ctx context.Context, key string, args ...any) (string, error) {
	c.mu.Lock()
	if c.steps != nil {
		c.steps.Detach()
	}
	fmt.Fprint(c.out, c.str.Get(key, args...))
	c.mu.Unlock()

	return c.readLine(ctx)
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	// A read left over from a cancelled Ask is picked up by the next one
	if c.pending == nil {
		ch := make(chan lineResult, 1)
		c.pending = ch
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case r := <-c.pending:
		c.pending = nil
		line := strings.TrimRight(r.line, "\r\n")
		if r.err != nil {
			if errors.Is(r.err, io.EOF) && line != "" {
				return line, nil
			}
			fmt.Fprintln(c.out)
			return "", r.err
		}
		return line, nil
	}
}

// Confirm asks a yes/no question
func (c *Console) Confirm(ctx context.Context, key string, args ...any) (bool, error) {
	answer, err := c.Ask(ctx, key, args...)
	if err != nil {
		return false, err
	}
	return application.Affirmative(answer), nil
}

// Println writes a localized line
func (c *Console) Println(key string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.str.Get(key, args...))
}

// Errorln writes a localized line in the error style
func (c *Console) Errorln(key string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.failure.Render(c.str.Get(key, args...)))
}

// Raw writes preformatted text such as a table
func (c *Console) Raw(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// StartBatch enables the counter line for a run over total videos
func (c *Console) StartBatch(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if total > 1 {
		c.batch = tui.NewBatchProgress(total)
	} else {
		c.batch = nil
	}
}

// Notify renders one core event
func (c *Console) Notify(e ports.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := filepath.Base(e.Path)

	switch e.Kind {
	case ports.EventItemStarted:
		fmt.Fprintln(c.out)
		line := c.str.Get("processing_video", name)
		if e.Total > 1 {
			line = fmt.Sprintf("[%d/%d] %s", e.Index, e.Total, line)
		}
		fmt.Fprintln(c.out, c.header.Render(line))
		names := make([]string, len(pipelineStages))
		for i, s := range pipelineStages {
			names[i] = c.stageName(s)
		}
		c.steps = tui.NewProgressDisplay(c.out, names, c.redraw)
		c.started = time.Now()
		c.cached = false

	case ports.EventStageChanged:
		if c.steps == nil {
			return
		}
		if e.Stage == domain.StageDone {
			if i := c.steps.Running(); i >= 0 {
				c.steps.CompleteStep(i)
			}
			return
		}
		if i := stageIndex(e.Stage); i >= 0 {
			c.steps.StartStep(i)
		}

	case ports.EventTranscriptReady:
		c.cached = e.Cached
		c.detach()
		heading := c.str.Get("transcription_for", name)
		if e.Cached {
			heading += " " + c.dim.Render(c.str.Get("cached_transcript"))
		}
		fmt.Fprintln(c.out, heading)
		fmt.Fprintln(c.out, c.dim.Render(e.Text))

	case ports.EventModelCatalog:
		c.detach()
		fmt.Fprintln(c.out, c.str.Get("model_catalog_header"))
		fmt.Fprintln(c.out, catalogTable(c.str, e.Entries))

	case ports.EventModelSelectionInvalid:
		fmt.Fprintln(c.out, c.warn.Render(c.str.Get("model_invalid", e.Length)))

	case ports.EventModelSelected:
		c.detach()
		fmt.Fprintln(c.out, c.success.Render(c.str.Get("model_selected", e.Model)))

	case ports.EventTitleTooLong:
		c.detach()
		fmt.Fprintln(c.out, c.warn.Render(c.str.Get("title_too_long", e.Length)))

	case ports.EventTitleGenerated:
		c.detach()
		fmt.Fprintln(c.out, c.str.Get("title_generated"))
		fmt.Fprintln(c.out, c.bold.Render(e.Title))
		c.advance(name, true, "")

	case ports.EventItemFailed:
		if c.steps != nil {
			if i := c.steps.Running(); i >= 0 {
				c.steps.FailStep(i, "")
			}
		}
		c.detach()
		msg := errorText(e.Err)
		fmt.Fprintln(c.out, c.failure.Render(c.str.Get("item_failed", name, c.stageName(e.Stage), msg)))
		c.advance(name, false, msg)

	case ports.EventRenameSucceeded:
		newName := filepath.Base(e.NewPath)
		if e.Total > 1 {
			fmt.Fprintln(c.out, c.success.Render(c.str.Get("rename_multiple_success", name+" -> "+newName)))
		} else {
			fmt.Fprintln(c.out, c.success.Render(c.str.Get("rename_success", newName)))
		}

	case ports.EventRenameFailed:
		var line string
		switch {
		case errors.Is(e.Err, domain.ErrRenameConflict):
			line = c.str.Get("rename_conflict", name)
		case e.Total > 1:
			line = c.str.Get("rename_multiple_error", name) + ": " + errorText(e.Err)
		default:
			line = c.str.Get("rename_error", errorText(e.Err))
		}
		fmt.Fprintln(c.out, c.failure.Render(line))

	case ports.EventBatchCompleted:
		if e.Result == nil {
			return
		}
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, c.header.Render(c.str.Get("batch_summary",
			e.Result.Succeeded(), e.Result.Total, e.Result.Failed(), tui.FormatDuration(e.Result.Duration))))
	}
}

func (c *Console) detach() {
	if c.steps != nil {
		c.steps.Detach()
	}
}

func (c *Console) advance(name string, ok bool, msg string) {
	if c.batch == nil {
		return
	}
	line := c.batch.Add(tui.ItemResult{
		Name:     name,
		Success:  ok,
		ErrMsg:   msg,
		Duration: time.Since(c.started),
		Cached:   c.cached,
	})
	fmt.Fprintln(c.out, c.dim.Render(line))
}

func (c *Console) stageName(s domain.Stage) string {
	key := "stage_" + s.String()
	if !c.str.Has(key) {
		return s.String()
	}
	return c.str.Get(key)
}

func stageIndex(s domain.Stage) int {
	for i, stage := range pipelineStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// errorText drops the stage prefix already shown next to the message
func errorText(err error) string {
	if err == nil {
		return ""
	}
	var serr *application.StageError
	if errors.As(err, &serr) {
		return serr.Err.Error()
	}
	return err.Error()
}

var (
	_ ports.Prompter = (*Console)(nil)
	_ ports.Notifier = (*Console)(nil)
)
