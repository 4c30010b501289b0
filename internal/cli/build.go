package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/htmlbundle/internal/logging"
	"github.com/yaklabco/htmlbundle/internal/watch"
	"github.com/yaklabco/htmlbundle/pkg/config"
	"github.com/yaklabco/htmlbundle/pkg/reporter"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

type buildFlags struct {
	root        string
	format      string
	transforms  []string
	ignore      []string
	include     []string
	verbose     bool
	compact     bool
	hideSources bool
}

func newBuildCommand() *cobra.Command {
	var cfg config.Config
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [paths...]",
		Short: "Build bundles and rewrite HTML documents",
		Long:  buildLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, &cfg, flags)
		},
	}

	addBuildFlags(cmd, &cfg, flags)

	return cmd
}

const buildLongDescription = `Build every bundle declared by the HTML documents under the given paths.

By default, processes all .html and .htm files below the current directory
and writes rewritten documents and bundles to ./dist. Use --out-dir . to
rewrite documents in place.

Examples:
  htmlbundle build                        # Build the current directory into dist/
  htmlbundle build pages/                 # Build only the pages directory
  htmlbundle build --base site            # Resolve "/js/app.js" under site/
  htmlbundle build --dry-run --format diff
  htmlbundle build --transform strip-bom --encoding windows-1252
  htmlbundle build --watch                # Rebuild on every change`

func addBuildFlags(cmd *cobra.Command, cfg *config.Config, flags *buildFlags) {
	cmd.Flags().StringVar(&flags.root, "root", "", "processing root (default: current directory)")
	cmd.Flags().StringVar(&cfg.OutDir, "out-dir", "", "output directory; \".\" rewrites in place (default: dist)")
	cmd.Flags().StringVar(&cfg.Base, "base", "", "directory for root-relative references, relative to the root")
	cmd.Flags().StringVar(&cfg.NewLine, "newline", "", "bundle separator: lf, crlf, cr, os, none, or a literal string")
	cmd.Flags().StringSliceVar(&flags.transforms, "transform", nil, "per-source transforms: strip-bom, strip-cr, decode:<charset>")
	cmd.Flags().StringVar(&cfg.SourceEncoding, "encoding", "", "decode every source from this charset")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "compute outputs without writing anything")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, diff, summary")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of documents built in parallel (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of documents to skip")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns documents must match")
	cmd.Flags().BoolVar(&cfg.Watch, "watch", false, "rebuild whenever a file under the root changes")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backups of overwritten files")
	cmd.Flags().BoolVar(&cfg.CheckTypes, "check-types", false, "warn about sources that do not fit their bundle type")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "also report documents without build blocks")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.hideSources, "hide-sources", false, "do not list the sources of each bundle")
}

func runBuild(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *buildFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	if cmd.Flags().Changed("format") {
		format, err := reporter.ParseFormat(flags.format)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidUsage, err)
		}
		cliCfg.Format = config.OutputFormat(format)
	}
	cliCfg.Ignore = flags.ignore
	cliCfg.Include = flags.include
	cliCfg.Transforms = flags.transforms

	root, err := resolveRoot(flags.root)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, cmd, root, cliCfg)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logging.FieldWorkingDir, root,
		logging.FieldBase, cfg.Base,
		logging.FieldOutDir, cfg.OutDir,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs,
	)

	buildRunner, err := newRunner(cfg, root)
	if err != nil {
		return err
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      reporter.Format(cfg.Format),
		Color:       colorMode,
		ShowSummary: true,
		ShowSources: !flags.hideSources,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		DryRun:      cfg.DryRun,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	runOpts := runner.OptionsFromConfig(cfg, root, args)

	result, err := buildOnce(ctx, buildRunner, rep, runOpts)
	if err != nil {
		return err
	}

	if cfg.Watch {
		return watchAndRebuild(ctx, buildRunner, rep, runOpts, buildRunner.Output.Dir())
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrBuildFailed
	}
	return nil
}

// buildOnce runs one build and reports it.
func buildOnce(ctx context.Context, buildRunner *runner.Runner, rep reporter.Reporter, opts runner.Options) (*runner.Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	logger.Debug("starting build",
		logging.FieldPaths, opts.Paths,
		logging.FieldWorkingDir, opts.WorkingDir,
		logging.FieldJobs, opts.Jobs,
	)

	result, err := buildRunner.Run(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build run failed: %w", err)
	}

	logger.Debug("build finished",
		logging.FieldDocumentsDiscovered, result.Stats.DocumentsDiscovered,
		logging.FieldDocumentsProcessed, result.Stats.DocumentsProcessed,
		logging.FieldDocumentsErrored, result.Stats.DocumentsErrored,
		logging.FieldBundlesWritten, result.Stats.BundlesBuilt,
		logging.FieldElapsed, time.Since(start),
	)
	for i := range result.Files {
		if file := &result.Files[i]; file.Error != nil {
			logging.FromContext(logging.WithDocument(ctx, file.RelPath)).
				Debug("document failed", logging.FieldError, file.Error)
		}
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return nil, fmt.Errorf("report results: %w", err)
	}

	return result, nil
}

// watchAndRebuild rebuilds after every settled batch of changes until interrupted.
// Failed builds are reported and the watcher keeps running.
func watchAndRebuild(
	ctx context.Context,
	buildRunner *runner.Runner,
	rep reporter.Reporter,
	opts runner.Options,
	outDir string,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.FromContext(ctx)

	skipOutDir := func(string) bool { return false }
	if outDir != opts.WorkingDir {
		prefix := outDir + string(filepath.Separator)
		skipOutDir = func(path string) bool {
			return path == outDir || strings.HasPrefix(path, prefix)
		}
	}

	watcher, err := watch.New(watch.Options{Root: opts.WorkingDir, Skip: skipOutDir})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Warn("close watcher", logging.FieldError, closeErr)
		}
	}()

	logger.Info("watching for changes", logging.FieldPath, opts.WorkingDir)

	err = watcher.Run(ctx, func(ctx context.Context, paths []string) error {
		logger.Info("rebuilding", logging.FieldPaths, paths)
		_, buildErr := buildOnce(ctx, buildRunner, rep, opts)
		if buildErr != nil && !errors.Is(buildErr, context.Canceled) {
			logger.Error("rebuild failed", logging.FieldError, buildErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}
