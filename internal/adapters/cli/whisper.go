package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbush/vidtitle/internal/adapters/cli/tui"
	"github.com/devbush/vidtitle/internal/config"
)

// NewWhisperCmd creates the whisper subcommand
func NewWhisperCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whisper",
		Short: "Manage local whisper.cpp models",
		Long: `Manage the ggml models used when defaults.transcriber is "whisper".
Models are stored in ~/.vidtitle/models.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available models",
		RunE:  runWhisperList,
	}

	downloadCmd := &cobra.Command{
		Use:   "download <model>",
		Short: "Download a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runWhisperDownload,
	}

	removeCmd := &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove a downloaded model",
		Args:  cobra.ExactArgs(1),
		RunE:  runWhisperRemove,
	}

	cmd.AddCommand(listCmd, downloadCmd, removeCmd)
	return cmd
}

func runWhisperList(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, m := range app.Whisper.AvailableModels() {
		status := "not downloaded"
		if m.Downloaded {
			status = "downloaded"
		}
		if m.Name == whisperModel(app.Config) {
			status += " (default)"
		}
		rows = append(rows, []string{m.Name, tui.FormatSize(m.Size), status, m.Description})
	}

	fmt.Println(renderTable(
		[]string{"Model", "Size", "Status", "Notes"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))
	if app.Config.Defaults.Transcriber != config.TranscriberWhisper {
		fmt.Printf("Local models are only used with defaults.transcriber: whisper (now %q).\n", app.Config.Defaults.Transcriber)
	}
	return nil
}

func runWhisperDownload(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	model := args[0]

	if app.Whisper.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is already downloaded\n", model)
		return nil
	}

	progress := tui.NewProgressDisplay(os.Stdout, []string{fmt.Sprintf("Downloading %s", model)}, isTerminal(os.Stdout))
	progress.StartStep(0)

	err = app.Whisper.DownloadModel(cmd.Context(), model, func(downloaded, total int64) {
		progress.UpdateProgress(0, downloaded, total)
	})
	if err != nil {
		progress.FailStep(0, err.Error())
		return err
	}

	progress.CompleteStep(0)
	app.Logger.Info("whisper model downloaded", "model", model)
	return nil
}

func runWhisperRemove(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	model := args[0]

	if !app.Whisper.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is not downloaded\n", model)
		return nil
	}

	if err := app.Whisper.DeleteModel(model); err != nil {
		return err
	}

	fmt.Printf("Model '%s' removed\n", model)
	return nil
}
