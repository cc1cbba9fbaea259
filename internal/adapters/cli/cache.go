package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbush/vidtitle/internal/adapters/cli/tui"
	"github.com/devbush/vidtitle/internal/config"
)

var clearAllFlag bool

// NewCacheCmd creates the cache subcommand
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache [video]",
		Short: "Manage cached transcripts",
		Long: `Show transcript cache statistics, or the cached transcript of one video.

Transcripts are keyed by the video's path, size and modification time, so
an edited video is transcribed again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCacheStatus,
	}

	clearCmd := &cobra.Command{
		Use:   "clear [video]",
		Short: "Clear expired entries, one video's entry, or everything with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheClear,
	}
	clearCmd.Flags().BoolVar(&clearAllFlag, "all", false, "Clear all cache entries")

	cmd.AddCommand(clearCmd)

	return cmd
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if len(args) == 1 {
		item, err := app.CacheSvc.Lookup(ctx, cleanPath(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("Cached %s, expires %s (%s)\n",
			item.CreatedAt.Format("2006-01-02 15:04"),
			item.ExpiresAt.Format("2006-01-02 15:04"),
			item.Transcript.Backend)
		if d := item.Transcript.Duration(); d > 0 {
			fmt.Printf("Speech: %s\n", tui.FormatDuration(d))
		}
		fmt.Println()
		fmt.Println(item.Transcript.ToText())
		return nil
	}

	stats, err := app.CacheSvc.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Cache Statistics:")
	fmt.Printf("  Items: %d\n", stats.ItemCount)
	fmt.Printf("  Size:  %s\n", tui.FormatSize(stats.TotalSize))
	fmt.Printf("  TTL:   %s\n", app.Config.Defaults.CacheTTL)
	fmt.Printf("  Path:  %s\n", config.CacheDir())
	fmt.Println()

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	switch {
	case clearAllFlag:
		if err := app.CacheSvc.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("All cache entries cleared")
	case len(args) == 1:
		removed, err := app.CacheSvc.Forget(ctx, cleanPath(args[0]))
		if err != nil {
			return err
		}
		if removed {
			fmt.Println("Cache entry removed")
		} else {
			fmt.Println("No cache entry for this video")
		}
	default:
		cleaned, err := app.CacheSvc.CleanExpired(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired entries\n", cleaned)
	}

	return nil
}
