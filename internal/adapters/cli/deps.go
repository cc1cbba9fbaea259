package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbush/vidtitle/internal/config"
)

// NewDepsCmd creates the deps subcommand
func NewDepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Show the status of external tools and API keys",
		RunE:  runDepsStatus,
	}
}

func runDepsStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	cfg := app.Config
	var rows [][]string

	if app.FFmpeg.IsAvailable() {
		rows = append(rows, []string{"ffmpeg", "installed", app.FFmpeg.BinaryPath()})
	} else {
		rows = append(rows, []string{"ffmpeg", "not found", ""})
	}

	whisperUsed := cfg.Defaults.Transcriber == config.TranscriberWhisper
	if bin := app.Whisper.BinaryPath(); bin != "" {
		rows = append(rows, []string{"whisper.cpp", "installed", bin})
	} else {
		rows = append(rows, []string{"whisper.cpp", optional("not found", whisperUsed), ""})
	}

	models := app.Whisper.AvailableModels()
	downloaded := 0
	for _, m := range models {
		if m.Downloaded {
			downloaded++
		}
	}
	rows = append(rows, []string{"whisper models", fmt.Sprintf("%d/%d downloaded", downloaded, len(models)), config.ModelsDir()})

	rows = append(rows, []string{"OPENROUTER_API_KEY", keyStatus("OPENROUTER_API_KEY", true), ""})
	rows = append(rows, []string{"OPENAI_API_KEY", keyStatus("OPENAI_API_KEY", !whisperUsed), ""})

	fmt.Println()
	fmt.Printf("Transcriber: %s\n", cfg.Defaults.Transcriber)
	fmt.Println(renderTable([]string{"Dependency", "Status", "Path"}, rows, nil))

	if !app.FFmpeg.IsAvailable() {
		fmt.Println()
		fmt.Println(app.FFmpeg.Instructions())
	}
	fmt.Println()

	return nil
}

func keyStatus(name string, required bool) string {
	if os.Getenv(name) != "" {
		return "set"
	}
	return optional("not set", required)
}

func optional(status string, required bool) string {
	if required {
		return status
	}
	return status + " (not needed)"
}
