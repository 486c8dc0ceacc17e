package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tangled-docs/tangle"
	"github.com/tangled-docs/tangle/internal/cleanup"
	"github.com/tangled-docs/tangle/internal/discover"
	"github.com/tangled-docs/tangle/internal/runner"
)

var (
	flagOutDir   string
	flagDryRun   bool
	flagVerbose  bool
	flagNoClean  bool
	flagNoBackup bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tangle [path...]",
	Short:         "Tangle literate outline documents into their source blocks",
	Long:          "tangle extracts #+begin_src blocks from outline documents, resolves noweb references between them, and writes the assembled source files to disk.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagOutDir, "out-dir", "dist", "directory scanned for stale incremental-build caches after a run")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would be written without touching disk")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagNoClean, "no-clean", false, "skip the cache-cleanup pass over --out-dir")
	rootCmd.Flags().BoolVar(&flagNoBackup, "no-backup", false, "don't back up existing output files before overwriting them")
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	paths, err := resolvePaths(args)
	if err != nil {
		return err
	}

	result, err := runner.Run(runner.Options{
		Paths:    paths,
		DryRun:   flagDryRun,
		NoBackup: flagNoBackup,
	})
	if err != nil {
		return err
	}

	if !flagNoClean && !flagDryRun {
		removed, err := cleanup.Run(flagOutDir)
		if err != nil {
			return fmt.Errorf("cleaning %s: %w", flagOutDir, err)
		}
		if removed > 0 {
			slog.Debug("cleaned stale build caches", "dir", flagOutDir, "removed", removed)
		}
	}

	for _, t := range result.Targets {
		verb := "wrote"
		if flagDryRun {
			verb = "would write"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d bytes, %d blocks)\n", verb, t.OutputPath, t.Bytes, t.Blocks)
	}

	return nil
}

// resolvePaths returns the input documents for this run: the positional
// arguments, resolved to absolute paths so SourcePath and location comments
// stay stable regardless of the working directory a path was typed from, if
// any were given; otherwise every .org file discovered under the current
// directory (already absolute, since discovery starts from an absolute root).
func resolvePaths(args []string) ([]string, error) {
	if len(args) > 0 {
		paths := make([]string, len(args))
		for i, a := range args {
			paths[i] = tangle.MustAbs(a)
		}
		return paths, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return discover.Documents(wd)
}
