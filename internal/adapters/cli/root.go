package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/devbush/vidtitle/internal/adapters/cli/tui"
	"github.com/devbush/vidtitle/internal/application"
	"github.com/devbush/vidtitle/internal/config"
	"github.com/devbush/vidtitle/internal/domain"
	"github.com/devbush/vidtitle/internal/i18n"
)

var (
	// Global flags
	languageFlag      string
	modelFlag         string
	audioLanguageFlag string
	noCacheFlag       bool
	yesFlag           bool
)

// errReported marks failures already shown to the user
var errReported = errors.New("reported")

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vidtitle",
		Short: "Generate hashtag titles for videos",
		Long: `vidtitle transcribes the audio of a video and asks a language model
for a short title with hashtags, then offers to rename the file.

Run without arguments for the interactive menu, or use the file and
folder commands directly.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	rootCmd.PersistentFlags().StringVarP(&languageFlag, "language", "l", "", "Interface and title language (en, it)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "OpenRouter model, skips the model menu (e.g. openai/gpt-4o)")
	rootCmd.PersistentFlags().StringVar(&audioLanguageFlag, "audio-language", "", "Spoken language hint for transcription (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false, "Transcribe again even if a cached transcript exists")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Rename without asking for confirmation")

	rootCmd.AddCommand(NewFileCmd())
	rootCmd.AddCommand(NewFolderCmd())
	rootCmd.AddCommand(NewModelsCmd())
	rootCmd.AddCommand(NewWhisperCmd())
	rootCmd.AddCommand(NewCacheCmd())
	rootCmd.AddCommand(NewDepsCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	console, err := newConsole(app, true)
	if err != nil {
		return err
	}
	return report(console, runInteractiveMenu(cmd.Context(), app, console))
}

func runInteractiveMenu(ctx context.Context, app *App, console *Console) error {
	str := console.Strings()
	console.Raw(str.Get("welcome"))

	pipeline, err := app.NewPipeline(console, runOptions(str))
	if err != nil {
		return err
	}

	var choice string
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		choice, err = tui.RunMenu(tui.NewMenuModel(str.Get("menu_title"), []tui.MenuOption{
			{Label: str.Get("menu_single"), Value: "1"},
			{Label: str.Get("menu_folder"), Value: "2"},
		}).WithHint(str.Get("menu_hint")))
		if err != nil {
			return err
		}
		if choice == "" {
			return domain.ErrPromptAborted
		}
	} else {
		choice, err = console.Ask(ctx, "select_process")
		if err != nil {
			return domain.Wrap(domain.ErrPromptAborted, "select process", err)
		}
	}

	switch cleanInput(choice) {
	case "1":
		path, err := console.Ask(ctx, "enter_video_path")
		if err != nil {
			return domain.Wrap(domain.ErrPromptAborted, "video path", err)
		}
		path = cleanPath(path)
		if !app.Files.Exists(path) || app.Files.IsDir(path) {
			console.Errorln("video_not_found")
			return errReported
		}
		videoContext, err := console.Ask(ctx, "enter_context")
		if err != nil {
			return domain.Wrap(domain.ErrPromptAborted, "video context", err)
		}
		return runSingle(ctx, console, pipeline, path, videoContext)

	case "2":
		dir, err := console.Ask(ctx, "enter_folder_path")
		if err != nil {
			return domain.Wrap(domain.ErrPromptAborted, "folder path", err)
		}
		dir = cleanPath(dir)
		if !app.Files.IsDir(dir) {
			console.Errorln("folder_not_found")
			return errReported
		}
		paths, err := app.Files.ListVideos(dir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return domain.Wrap(domain.ErrNoVideos, dir, nil)
		}
		shared, err := askSharedContext(ctx, console)
		if err != nil {
			return err
		}
		return runFolder(ctx, console, pipeline, paths, shared)

	default:
		console.Errorln("invalid_choice")
		return errReported
	}
}

// newConsole resolves the language from the flag, then config, then a menu
// on a terminal when allowMenu is set.
func newConsole(app *App, allowMenu bool) (*Console, error) {
	code := languageFlag
	if code == "" {
		code = app.Config.Defaults.Language
	}

	interactive := isTerminal(os.Stdin) && isTerminal(os.Stdout)
	if code == "" && allowMenu && interactive {
		var options []tui.MenuOption
		for _, lang := range i18n.Available() {
			options = append(options, tui.MenuOption{Label: fmt.Sprintf("%s (%s)", lang.Name, lang.Code), Value: lang.Code})
		}
		selected, err := tui.RunMenu(tui.NewMenuModel(i18n.MustLoad(i18n.DefaultLanguage).Get("select_language"), options))
		if err != nil {
			return nil, err
		}
		code = selected
	}

	str, err := i18n.Load(code)
	if err != nil {
		return nil, err
	}
	return NewConsole(os.Stdin, os.Stdout, str, isTerminal(os.Stdout)), nil
}

func runOptions(str *i18n.Strings) RunOptions {
	return RunOptions{
		Model:         modelFlag,
		Language:      str.Code(),
		AudioLanguage: audioLanguageFlag,
		NoCache:       noCacheFlag,
	}
}

// report shows err in the console language. Errors that need no further
// output come back as errReported. An empty input is not a failure.
func report(console *Console, err error) error {
	if err == nil || errors.Is(err, errReported) {
		return err
	}
	if errors.Is(err, domain.ErrNoVideos) {
		source := strings.TrimPrefix(err.Error(), domain.ErrNoVideos.Error())
		console.Println("no_videos_found", strings.TrimPrefix(source, ": "))
		return nil
	}

	var missing *config.MissingKeyError
	switch {
	case errors.As(err, &missing):
		console.Errorln("api_key_missing", missing.Key)
		console.Println("api_key_instructions", missing.Key, missing.Provider)
	case errors.Is(err, domain.ErrPromptAborted), errors.Is(err, context.Canceled):
		console.Println("aborted")
	case errors.Is(err, domain.ErrFFmpegNotFound):
		console.Errorln("ffmpeg_missing")
		console.Raw(err.Error())
	case errors.Is(err, domain.ErrGenerationFailed):
		console.Errorln("title_generation_error", errorText(err))
	default:
		console.Errorln("unexpected_error", err.Error())
	}
	if app := globalApp; app != nil && !application.IsFatal(err) {
		app.Logger.Error("run failed", "kind", fmt.Sprint(domain.Kind(err)), "error", err)
	}
	return errReported
}

// Execute runs the CLI
func Execute() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if globalApp != nil {
		_ = globalApp.Close()
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
