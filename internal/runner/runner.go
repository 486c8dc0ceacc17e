// Package runner orchestrates a full tangle run: scanning documents,
// building the reference index, assembling targets, and writing them to
// disk (or just reporting what would be written, in dry-run mode).
package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tangled-docs/tangle"
)

const maxWorkers = 4

// Options configures a single run.
type Options struct {
	// Paths are the input document paths to scan, in the order they should
	// be indexed. Required; discovery of a bare directory happens upstream.
	Paths []string
	// DryRun reports what would be written instead of writing it.
	DryRun bool
	// NoBackup disables the backup-before-overwrite safety net.
	NoBackup bool
}

// TargetReport describes one assembled output, whether or not it was
// actually written (DryRun).
type TargetReport struct {
	OutputPath string
	Bytes      int
	Blocks     int
	Backup     string
}

// Result is the outcome of a full run.
type Result struct {
	Targets []TargetReport
}

type scanOutcome struct {
	index int
	doc   *tangle.Document
	err   error
}

// Run scans every path in opts.Paths, assembles output targets, and either
// writes them to disk or (DryRun) reports what would have been written.
//
// Per-document scan failures are logged and skip that document; the run
// continues with whatever documents did parse. A failure writing one target
// aborts only that target — Run returns the first such error after
// attempting every target, so partial progress on disk matches the report.
func Run(opts Options) (*Result, error) {
	if len(opts.Paths) == 0 {
		return nil, tangle.ErrNoDocuments
	}

	docs, err := scanAll(opts.Paths)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, tangle.ErrNoDocuments
	}

	idx := tangle.BuildIndex(docs)
	targets := tangle.Assemble(docs)

	var bm *tangle.BackupManager
	if !opts.NoBackup {
		bm = tangle.NewBackupManager()
	}

	result := &Result{Targets: make([]TargetReport, 0, len(targets))}
	var writeErr error

	for _, t := range targets {
		rendered := tangle.RenderTarget(t, idx)
		report := TargetReport{
			OutputPath: t.OutputPath,
			Bytes:      len(rendered),
			Blocks:     len(t.Blocks),
		}

		if opts.DryRun {
			slog.Info("dry-run: would write target", "path", t.OutputPath, "bytes", report.Bytes, "blocks", report.Blocks)
			result.Targets = append(result.Targets, report)
			continue
		}

		if bm != nil {
			backup, err := bm.CreateBackupOf(t.OutputPath)
			if err != nil {
				slog.Error("failed to back up existing output", "path", t.OutputPath, "error", err)
				if writeErr == nil {
					writeErr = fmt.Errorf("backing up %s: %w", t.OutputPath, err)
				}
				continue
			}
			report.Backup = backup
		}

		if err := writeTarget(t.OutputPath, rendered); err != nil {
			slog.Error("failed to write target", "path", t.OutputPath, "error", err)
			if writeErr == nil {
				writeErr = err
			}
			continue
		}

		slog.Debug("wrote target", "path", t.OutputPath, "bytes", report.Bytes, "blocks", report.Blocks)
		result.Targets = append(result.Targets, report)
	}

	return result, writeErr
}

func writeTarget(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// scanAll reads and scans every path concurrently (bounded worker pool,
// mirroring a parallel file-processing pipeline), but reassembles results in
// the original path order so downstream index-building stays deterministic
// regardless of how the workers finish.
func scanAll(paths []string) ([]*tangle.Document, error) {
	jobs := make(chan int, len(paths))
	results := make(chan scanOutcome, len(paths))

	var wg sync.WaitGroup
	workers := maxWorkers
	if workers > len(paths) {
		workers = len(paths)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- scanPath(i, paths[i])
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*tangle.Document, len(paths))
	for outcome := range results {
		if outcome.err != nil {
			slog.Warn("skipping document that failed to scan", "path", paths[outcome.index], "error", outcome.err)
			continue
		}
		ordered[outcome.index] = outcome.doc
	}

	docs := make([]*tangle.Document, 0, len(paths))
	for _, d := range ordered {
		if d != nil {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func scanPath(index int, path string) scanOutcome {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scanOutcome{index: index, err: fmt.Errorf("reading %s: %w", path, err)}
	}
	doc, err := tangle.ScanDocument(path, string(raw))
	if err != nil {
		return scanOutcome{index: index, err: fmt.Errorf("scanning %s: %w", path, err)}
	}
	return scanOutcome{index: index, doc: doc}
}
