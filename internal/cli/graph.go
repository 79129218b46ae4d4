package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stammbaum/pkg/assembler"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output       string   // output file path (or base path for multiple formats)
	formats      []string // output formats: json, svg, dot, png, pdf
	strategy     string   // layout strategy name
	hideDeceased bool
	hideUnborn   bool
	dimDeceased  bool
	dimUnborn    bool
	focus        string // comma-separated focus facets
	hideOverlays bool
	hideEdges    bool
	detailed     bool
	noCache      bool
	refresh      bool
}

// graphCommand creates the graph command: assemble a family's layout and
// write rendered outputs.
func (c *CLI) graphCommand() *cobra.Command {
	var formatsStr string
	opts := graphOpts{}

	cmd := &cobra.Command{
		Use:   "graph <family>",
		Short: "Compute a family graph layout and render it",
		Long: `Compute the generation-ranked layout for a family tree and write it in
one or more formats. The family may be named by id or by name.

Spouses share a generation row; children sit at least two ranks below their
parents; regions appear as colored overlay boxes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := assembler.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runGraph(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "layout strategy (default hierarchical)")
	cmd.Flags().BoolVar(&opts.hideDeceased, "hide-deceased", false, "exclude deceased members")
	cmd.Flags().BoolVar(&opts.hideUnborn, "hide-unborn", false, "exclude unborn members")
	cmd.Flags().BoolVar(&opts.dimDeceased, "dim-deceased", false, "render deceased members dimmed")
	cmd.Flags().BoolVar(&opts.dimUnborn, "dim-unborn", false, "render unborn members dimmed")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "relation facets to keep: father,mother,spouse,son,daughter")
	cmd.Flags().BoolVar(&opts.hideOverlays, "no-overlays", false, "omit region overlays")
	cmd.Flags().BoolVar(&opts.hideEdges, "no-edges", false, "omit relation edges")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include life dates in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable snapshot caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached snapshots for this run")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, familyRef string, opts *graphOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	f, err := resolveFamily(ctx, store, familyRef)
	if err != nil {
		return err
	}
	tree, err := store.Tree(ctx, f.ID)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	runOpts := assembler.Options{
		HideDeceased: opts.hideDeceased,
		HideUnborn:   opts.hideUnborn,
		DimDeceased:  opts.dimDeceased,
		DimUnborn:    opts.dimUnborn,
		Strategy:     opts.strategy,
		Formats:      opts.formats,
		Title:        f.Name,
		HideOverlays: opts.hideOverlays,
		HideEdges:    opts.hideEdges,
		Detailed:     opts.detailed,
		Refresh:      opts.refresh,
		Logger:       logger,
	}
	if opts.focus != "" {
		runOpts.Focus = strings.Split(opts.focus, ",")
	}

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %s...", f.Name))
	spin.Start()
	result, err := runner.Execute(ctx, tree, runOpts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Assembled %s", f.Name))

	printSuccess("Rendered %s", StyleHighlight.Render(f.Name))
	printStats(result.Stats.MemberCount, result.Stats.EdgeCount,
		result.Stats.OverlayCount, result.CacheInfo.SnapshotHit)

	return writeArtifacts(f.Name, opts.output, opts.formats, result.Artifacts)
}

// writeArtifacts writes rendered outputs to disk. With a single format the
// output flag names the file; with several it is a base path that gets the
// format extension appended.
func writeArtifacts(familyName, output string, formats []string, artifacts map[string][]byte) error {
	base := output
	if base == "" {
		base = sanitizeFilename(familyName)
	}

	for _, format := range formats {
		path := base
		if len(formats) > 1 || output == "" || !strings.Contains(filepath.Base(path), ".") {
			path = strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// sanitizeFilename lowercases a family name into a safe file stem.
func sanitizeFilename(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, name)
	if mapped == "" {
		return "family"
	}
	return mapped
}
