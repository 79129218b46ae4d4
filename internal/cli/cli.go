// Package cli implements the stammbaum command-line interface.
//
// Commands cover the full lifecycle of a family tree: serving the HTTP API,
// importing trees from files, bundled presets, or remote servers, computing
// and rendering graph layouts, and managing regions including an interactive
// membership editor. The CLI is built on cobra with charmbracelet/log for
// logging; loggers travel through context.Context.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stammbaum/internal/config"
	"github.com/matzehuels/stammbaum/pkg/assembler"
	"github.com/matzehuels/stammbaum/pkg/buildinfo"
	"github.com/matzehuels/stammbaum/pkg/cache"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/family/mongostore"
)

// appName is the application name used for directories and display.
const appName = "stammbaum"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value, resolved lazily per command.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "stammbaum",
		Short:        "Stammbaum renders and manages genealogical graphs",
		Long:         `Stammbaum manages family trees: members, parent-child and spousal relations, and region groupings, and renders them as generation-ranked node-and-edge diagrams.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/stammbaum/config.toml)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		registerLogHooks(c.Logger)
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.regionsCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the effective configuration for a command run.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Backend Factories
// =============================================================================

// newStore opens the configured family store backend.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) (family.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		return mongostore.NewMongoStore(ctx, mongostore.Options{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
		})
	default:
		return family.NewMemoryStore(), nil
	}
}

// newCache opens the configured cache backend. Failures to open the file
// cache degrade to a null cache rather than failing the command.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newRunner creates an assembler runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*assembler.Runner, error) {
	store, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return assembler.NewRunner(store, nil, c.Logger), nil
}

// =============================================================================
// Shared Helpers
// =============================================================================

// resolveFamily accepts a family id or unique name and returns the record.
func resolveFamily(ctx context.Context, st family.Store, ref string) (*family.Family, error) {
	if f, err := st.Family(ctx, ref); err == nil {
		return f, nil
	}
	families, err := st.Families(ctx)
	if err != nil {
		return nil, err
	}
	var match *family.Family
	for _, f := range families {
		if strings.EqualFold(f.Name, ref) {
			if match != nil {
				return nil, errors.New(errors.ErrCodeValidation,
					"family name %q is ambiguous, use the id", ref)
			}
			match = f
		}
	}
	if match == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "family %q not found", ref)
	}
	return match, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{assembler.FormatSVG}
	}
	return strings.Split(s, ",")
}
