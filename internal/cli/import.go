package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/family/exchange"
	"github.com/matzehuels/stammbaum/pkg/httputil"
)

// importCommand creates the import command: load a family tree from a JSON
// file, a bundled preset, or a remote stammbaum server.
func (c *CLI) importCommand() *cobra.Command {
	var (
		linked       bool
		targetFamily string
		familyName   string
	)

	cmd := &cobra.Command{
		Use:   "import <file|preset|url>",
		Short: "Import a family tree",
		Long: fmt.Sprintf(`Import a family tree from a JSON exchange document.

The argument is a local file path, the key of a bundled preset (%s),
or an http(s) URL of another stammbaum server's export endpoint.

With --linked the imported members are marked as a linked family: they keep
their source family id and move in and out of regions as one atomic group.`,
			strings.Join(exchange.Presets(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := exchange.Options{
				TargetFamily: targetFamily,
				FamilyName:   familyName,
				AsLinked:     linked,
			}
			return c.runImport(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&linked, "linked", false, "mark imported members as a linked family")
	cmd.Flags().StringVar(&targetFamily, "family", "", "import into an existing family (id or name)")
	cmd.Flags().StringVar(&familyName, "name", "", "name for the newly created family")

	return cmd
}

func (c *CLI) runImport(ctx context.Context, source string, opts exchange.Options) error {
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

	if opts.TargetFamily != "" {
		f, err := resolveFamily(ctx, store, opts.TargetFamily)
		if err != nil {
			return err
		}
		opts.TargetFamily = f.ID
	}

	doc, err := c.loadDocument(ctx, source)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	bundle, err := exchange.Import(ctx, store, doc, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d members", len(bundle.Members)))

	printSuccess("Imported %s", StyleHighlight.Render(doc.Family.Name))
	printDetail("%d members, %d relations", len(bundle.Members), len(bundle.Relations))
	if bundle.Skipped > 0 {
		printWarning("%d relations referenced unknown members and were skipped", bundle.Skipped)
	}
	if opts.AsLinked {
		printDetail("members marked as linked family %s", doc.Family.ID)
	}
	printNextStep("Render it", fmt.Sprintf("stammbaum graph %s", bundle.TreeID()))
	return nil
}

// loadDocument resolves the import source: preset key, URL, or file path.
func (c *CLI) loadDocument(ctx context.Context, source string) (*exchange.Document, error) {
	if isPreset(source) {
		return exchange.Preset(source)
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := httputil.NewClient(nil, nil)
		return exchange.FetchDocument(ctx, client, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	return exchange.Parse(data)
}

func isPreset(source string) bool {
	for _, key := range exchange.Presets() {
		if source == key {
			return true
		}
	}
	return false
}

// importPreset imports a bundled preset directly, used by serve --demo.
func importPreset(ctx context.Context, st family.Store, key string) error {
	doc, err := exchange.Preset(key)
	if err != nil {
		return err
	}
	_, err = exchange.Import(ctx, st, doc, exchange.Options{})
	return err
}
