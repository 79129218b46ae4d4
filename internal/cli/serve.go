package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stammbaum/internal/config"
	"github.com/matzehuels/stammbaum/internal/server"
	"github.com/matzehuels/stammbaum/pkg/assembler"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		demo    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stammbaum HTTP API",
		Long: `Run the stammbaum HTTP API serving families, members, relationships,
regions, and assembled graph snapshots.

The store and cache backends come from the config file (or STAMMBAUM_*
environment variables); --addr overrides the listen address. With --demo a
bundled preset tree is imported into the (memory) store at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache, demo)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable snapshot caching")
	cmd.Flags().BoolVar(&demo, "demo", false, "import the han_dynasty preset at startup")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache, demo bool) error {
	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	cacheStore, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	runner := assembler.NewRunner(cacheStore, nil, c.Logger)
	defer func() { _ = runner.Close() }()

	if demo {
		if err := importPreset(ctx, store, "han_dynasty"); err != nil {
			return err
		}
		c.Logger.Info("imported demo preset", "preset", "han_dynasty")
	}

	c.Logger.Info("starting server",
		"store", cfg.Store.Backend,
		"cache", cfg.Cache.Backend)
	return server.New(store, runner, c.Logger).ListenAndServe(ctx, cfg.Server.Addr)
}
