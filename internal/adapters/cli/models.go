package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewModelsCmd creates the models subcommand
func NewModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the language models offered for title generation",
		Long: `List the OpenRouter models offered when no model is configured.

The list can be replaced with models.providers in ~/.vidtitle/config.yaml,
and a model can be fixed with --model, defaults.model or OPENROUTER_MODEL.`,
		RunE: runModelsList,
	}
}

func runModelsList(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}
	console, err := newConsole(app, false)
	if err != nil {
		return err
	}

	console.Raw(catalogTable(console.Strings(), app.Config.Catalog().Entries()))

	model := modelFlag
	if model == "" {
		model = app.Config.Defaults.Model
	}
	if model != "" {
		console.Println("model_selected", model)
		if !app.Config.Catalog().Contains(model) {
			fmt.Println("(not in the list above, sent to OpenRouter as given)")
		}
	}
	return nil
}
