package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/htmlbundle/internal/configloader"
	"github.com/yaklabco/htmlbundle/internal/logging"
	"github.com/yaklabco/htmlbundle/pkg/bundle"
	"github.com/yaklabco/htmlbundle/pkg/config"
	"github.com/yaklabco/htmlbundle/pkg/fsutil"
	"github.com/yaklabco/htmlbundle/pkg/langdetect"
	"github.com/yaklabco/htmlbundle/pkg/runner"
	"github.com/yaklabco/htmlbundle/pkg/transform"
)

// resolveRoot returns the absolute processing root, defaulting to the working directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: root %s is not a directory", ErrInvalidUsage, root)
	}
	return abs, nil
}

// loadConfig merges every configuration layer over the CLI flags.
func loadConfig(ctx context.Context, cmd *cobra.Command, root string, cliCfg *config.Config) (*config.Config, error) {
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   root,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldPaths, loadResult.LoadedFrom)
	}

	return loadResult.Config, nil
}

// transformNames returns the transform chain for cfg. Decoding runs first so
// later transforms see UTF-8.
func transformNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Transforms)+1)
	if cfg.SourceEncoding != "" {
		names = append(names, transform.PrefixDecode+cfg.SourceEncoding)
	}
	return append(names, cfg.Transforms...)
}

// newBundler builds the bundler described by cfg.
func newBundler(cfg *config.Config, root string) (*bundle.Bundler, error) {
	factory, err := transform.Chain(transformNames(cfg))
	if err != nil {
		return nil, fmt.Errorf("transforms: %w", err)
	}

	newLine := config.ResolveNewLine(cfg.NewLine)
	bundlerCfg := bundle.Config{
		Root:         root,
		Base:         cfg.Base,
		NewLine:      &newLine,
		Transform:    factory,
		CacheEntries: bundle.DefaultCacheEntries,
	}
	if cfg.CheckTypes {
		bundlerCfg.Classify = langdetect.Detect
	}

	bundler, err := bundle.New(bundlerCfg)
	if err != nil {
		return nil, fmt.Errorf("create bundler: %w", err)
	}
	return bundler, nil
}

// newRunner wires the bundler and output for one build invocation.
func newRunner(cfg *config.Config, root string) (*runner.Runner, error) {
	bundler, err := newBundler(cfg, root)
	if err != nil {
		return nil, err
	}

	output, err := runner.NewOutput(runner.OutputOptions{
		Root:   root,
		OutDir: cfg.OutDir,
		DryRun: cfg.DryRun,
		Backups: fsutil.BackupConfig{
			Enabled: cfg.BackupsEnabled(),
			Mode:    fsutil.BackupMode(cfg.Backups.Mode),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	buildRunner := runner.New(bundler, output)
	buildRunner.CheckTypes = cfg.CheckTypes
	return buildRunner, nil
}
