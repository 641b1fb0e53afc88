package main

import (
	"fmt"
	"os"

	"mo-go/internal/app"
	"mo-go/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a MOApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Organize", "History").
func newApp(operation string) (*app.MOApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewMOApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "mo",
	Short: "Media deduplication and organizing tool",
	Long: `mo reconciles an incoming source tree of media files against an
authoritative target tree: byte-identical and visually identical duplicates
collapse to the single largest copy, and unique files are placed into
type-specific destination subtrees (images at the root, videos under mp4/,
archives under zip/).`,
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return err
		}

		fmt.Printf("Config written to %s\n", defaults["config_path"])
		return nil
	},
}

// organize command

var (
	organizeSource string
	organizeTarget string
	organizeFast   bool
	organizeFresh  bool
)

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Reconcile a source tree into a target tree",
	Long: `Inventories both trees, groups duplicates by exact hash (and, for
images, perceptual hash), keeps the largest copy of each group, and places
unique incoming files into the target tree by type. Re-running over the same
inventory applies no further side effects; pass --fresh to start over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Organize")
		if err != nil {
			return err
		}
		defer a.Close()

		counts, err := a.Organize(organizeSource, organizeTarget, organizeFast, organizeFresh)
		if err != nil {
			return err
		}

		fmt.Printf("Copied %d, skipped %d, deleted %d\n", counts.Copied, counts.Skipped, counts.Deleted)
		return nil
	},
}

// history command

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent reconcile runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(historyLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		for _, run := range runs {
			finished := "-"
			if run.FinishedAt != nil {
				finished = run.FinishedAt.UTC().Format("2006-01-02T15:04:05Z")
			}
			fmt.Printf("%d\t%s\t%s\t%s\t%s\tcopied=%d skipped=%d deleted=%d\n",
				run.ID,
				run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
				finished,
				run.Operation,
				run.Status,
				run.Counts.Copied, run.Counts.Skipped, run.Counts.Deleted)
		}
		return nil
	},
}

// version command

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mo %s\n", version)
	},
}

func init() {
	organizeCmd.Flags().StringVarP(&organizeSource, "source", "s", "", "source directory (required)")
	organizeCmd.Flags().StringVarP(&organizeTarget, "target", "t", "", "target directory (required)")
	organizeCmd.Flags().BoolVar(&organizeFast, "fast", false, "skip perceptual image hashing")
	organizeCmd.Flags().BoolVar(&organizeFresh, "fresh", false, "clear the inventory before scanning")
	organizeCmd.MarkFlagRequired("source")
	organizeCmd.MarkFlagRequired("target")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to show")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd, organizeCmd, historyCmd, versionCmd)
}
