package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devbush/vidtitle/internal/application"
	"github.com/devbush/vidtitle/internal/domain"
)

var (
	contextFlag       string
	sharedContextFlag string
	perVideoFlag      bool
	listFileFlag      string
)

// NewFileCmd creates the single video command
func NewFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <video>",
		Short: "Generate a title for one video",
		Long: `Generate a title for one video and offer to rename it.

Example:
  vidtitle file holiday.mp4 --context "sailing trip in Croatia"
  vidtitle file clip.mov -m anthropic/claude-3-haiku -y`,
		Args: cobra.ExactArgs(1),
		RunE: runFileCmd,
	}
	cmd.Flags().StringVarP(&contextFlag, "context", "c", "", "What the video is about (asked for when not set)")
	return cmd
}

// NewFolderCmd creates the folder command
func NewFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder [dir]",
		Short: "Generate titles for every video in a folder",
		Long: `Generate titles for the videos directly inside a folder, one at a
time, then offer to rename them all.

Extra videos can be listed in a file with --file, one path per line.
Blank lines and lines starting with # are ignored.

Example:
  vidtitle folder ./exports --shared-context "cooking channel"
  vidtitle folder --file videos.txt --per-video`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFolderCmd,
	}
	cmd.Flags().StringVarP(&sharedContextFlag, "shared-context", "s", "", "Context used for every video")
	cmd.Flags().BoolVar(&perVideoFlag, "per-video", false, "Ask for a context before each video")
	cmd.Flags().StringVarP(&listFileFlag, "file", "f", "", "File with video paths (one per line)")
	cmd.MarkFlagsMutuallyExclusive("shared-context", "per-video")
	return cmd
}

func runFileCmd(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	console, err := newConsole(app, false)
	if err != nil {
		return err
	}

	return report(console, func() error {
		ctx := cmd.Context()
		path := cleanPath(args[0])
		if !app.Files.Exists(path) || app.Files.IsDir(path) {
			console.Errorln("video_not_found")
			return errReported
		}

		pipeline, err := app.NewPipeline(console, runOptions(console.Strings()))
		if err != nil {
			return err
		}

		videoContext := contextFlag
		if !cmd.Flags().Changed("context") {
			videoContext, err = console.Ask(ctx, "enter_context")
			if err != nil {
				return domain.Wrap(domain.ErrPromptAborted, "video context", err)
			}
		}
		return runSingle(ctx, console, pipeline, path, videoContext)
	}())
}

func runFolderCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && listFileFlag == "" {
		return fmt.Errorf("give a folder, --file, or both")
	}

	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	console, err := newConsole(app, false)
	if err != nil {
		return err
	}

	return report(console, func() error {
		ctx := cmd.Context()

		var paths []string
		if len(args) == 1 {
			dir := cleanPath(args[0])
			if !app.Files.IsDir(dir) {
				console.Errorln("folder_not_found")
				return errReported
			}
			if paths, err = app.Files.ListVideos(dir); err != nil {
				return err
			}
		}
		paths, err = CollectInputs(paths, listFileFlag)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			source := listFileFlag
			if len(args) == 1 {
				source = args[0]
			}
			return domain.Wrap(domain.ErrNoVideos, source, nil)
		}

		pipeline, err := app.NewPipeline(console, runOptions(console.Strings()))
		if err != nil {
			return err
		}

		var shared *string
		switch {
		case cmd.Flags().Changed("shared-context"):
			shared = &sharedContextFlag
		case perVideoFlag:
		default:
			if shared, err = askSharedContext(ctx, console); err != nil {
				return err
			}
		}
		return runFolder(ctx, console, pipeline, paths, shared)
	}())
}

// askSharedContext returns nil when each video should get its own context
func askSharedContext(ctx context.Context, console *Console) (*string, error) {
	same, err := console.Confirm(ctx, "use_same_context")
	if err != nil {
		return nil, domain.Wrap(domain.ErrPromptAborted, "shared context choice", err)
	}
	if !same {
		return nil, nil
	}
	shared, err := console.Ask(ctx, "enter_shared_context")
	if err != nil {
		return nil, domain.Wrap(domain.ErrPromptAborted, "shared context", err)
	}
	return &shared, nil
}

func runSingle(ctx context.Context, console *Console, p *Pipeline, path, videoContext string) error {
	console.StartBatch(1)

	video, err := p.Batch.ProcessOne(ctx, path, videoContext)
	if err != nil {
		if application.IsFatal(err) {
			return err
		}
		p.logSummary(1, 1, nil)
		// The failure was shown when it happened
		return errReported
	}

	outcomes, err := p.Batch.OfferRename(ctx, []domain.TitledVideo{video}, yesFlag)
	if err != nil {
		return err
	}
	p.logSummary(1, 0, outcomes)
	return renameStatus(outcomes)
}

func runFolder(ctx context.Context, console *Console, p *Pipeline, paths []string, shared *string) error {
	console.StartBatch(len(paths))

	result, err := p.Batch.ProcessMany(ctx, paths, shared)
	if err != nil {
		return err
	}

	if result.Empty() {
		p.logSummary(result.Total, result.Failed(), nil)
		console.Errorln("no_videos_processed")
		return errReported
	}

	console.Raw("")
	console.Println("generated_titles_summary")
	console.Raw(titlesTable(console.Strings(), result.Items))

	outcomes, err := p.Batch.OfferRename(ctx, result.Items, yesFlag)
	if err != nil {
		return err
	}
	p.logSummary(result.Total, result.Failed(), outcomes)
	if result.Failed() > 0 {
		return errReported
	}
	return renameStatus(outcomes)
}

func renameStatus(outcomes []domain.RenameOutcome) error {
	for _, o := range outcomes {
		if !o.OK() {
			return errReported
		}
	}
	return nil
}

// cleanPath undoes what terminals add when a file is dragged in: quotes,
// surrounding blanks and a leading ~.
func cleanPath(s string) string {
	s = cleanInput(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if s == "~" || strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}

func cleanInput(s string) string {
	return strings.TrimSpace(s)
}
