package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yaklabco/htmlbundle/internal/ui/pretty"
	"github.com/yaklabco/htmlbundle/pkg/blocks"
	"github.com/yaklabco/htmlbundle/pkg/config"
	"github.com/yaklabco/htmlbundle/pkg/fsutil"
	"github.com/yaklabco/htmlbundle/pkg/runner"
)

type blocksFlags struct {
	root   string
	json   bool
	ignore []string
}

// documentBlocks is the JSON shape of one document's bundle map.
type documentBlocks struct {
	Path    string                         `json:"path"`
	Bundles map[string]map[string][]string `json:"bundles"`
	Error   string                         `json:"error,omitempty"`
}

func newBlocksCommand() *cobra.Command {
	flags := &blocksFlags{}

	cmd := &cobra.Command{
		Use:   "blocks [paths...]",
		Short: "List the bundles each document declares",
		Long: `Parse the build blocks of every document and print, per block type, each
target with the sources it lists. Sources are not read and nothing is written.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "processing root (default: current directory)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print the bundle map as JSON")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of documents to skip")

	return cmd
}

func runBlocks(cmd *cobra.Command, args []string, flags *blocksFlags) error {
	ctx := cmd.Context()

	root, err := resolveRoot(flags.root)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(ctx, cmd, root, &config.Config{Ignore: flags.ignore})
	if err != nil {
		return err
	}

	paths, err := runner.Discover(ctx, runner.OptionsFromConfig(cfg, root, args))
	if err != nil {
		return fmt.Errorf("discover documents: %w", err)
	}

	docs := make([]documentBlocks, 0, len(paths))
	failed := false
	for _, path := range paths {
		doc := documentBlocks{Path: path}
		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			doc.Path = filepath.ToSlash(rel)
		}

		content, _, readErr := fsutil.ReadFile(ctx, path)
		var parsed *blocks.Result
		if readErr == nil {
			parsed, readErr = blocks.Parse(content)
		}
		if readErr != nil {
			doc.Error = readErr.Error()
			failed = true
		} else {
			doc.Bundles = parsed.BundleMap()
		}
		docs = append(docs, doc)
	}

	if flags.json {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(docs); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	} else {
		colorMode, _ := cmd.Flags().GetString("color")
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, cmd.OutOrStdout()))
		writeBlocks(cmd.OutOrStdout(), styles, docs)
	}

	if failed {
		return ErrBuildFailed
	}
	return nil
}

func writeBlocks(out io.Writer, styles *pretty.Styles, docs []documentBlocks) {
	for _, doc := range docs {
		if doc.Error != "" {
			fmt.Fprintln(out, styles.FilePath.Render(doc.Path))
			fmt.Fprint(out, styles.FormatError(errors.New(doc.Error)))
			continue
		}
		if len(doc.Bundles) == 0 {
			continue
		}

		fmt.Fprintln(out, styles.FilePath.Render(doc.Path))
		for _, blockType := range sortedKeys(doc.Bundles) {
			targets := doc.Bundles[blockType]
			for _, target := range sortedKeys(targets) {
				fmt.Fprintf(out, "  %s %s\n", styles.Dim.Render(blockType), styles.Bundle.Render(target))
				for _, src := range targets[target] {
					fmt.Fprintf(out, "    %s %s\n", styles.Arrow.Render("<-"), styles.Source.Render(src))
				}
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
