package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/client"
	"github.com/jobboard/jobboard/internal/config"
	"github.com/jobboard/jobboard/internal/observability"
	"github.com/jobboard/jobboard/internal/persist"
	"github.com/jobboard/jobboard/internal/store"
)

// cli holds the global flags and the lazily opened client session shared by
// the subcommands.
type cli struct {
	out    io.Writer
	errOut io.Writer

	flags      config.Config
	configPath string

	logger  zerolog.Logger
	storage *persist.SQLStorage
	session *store.Session
	printer *observability.Printer
	cfg     config.Config
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{out: out, errOut: errOut, logger: zerolog.Nop()}
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jobboard",
		Short:         "Job board API server and terminal client",
		Long:          "jobboard serves the job board REST API and browses, filters, applies to and administers job postings from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return c.close()
		},
	}
	rootCmd.SetOut(c.out)
	rootCmd.SetErr(c.errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.flags.APIURL, "api-url", "", "Base URL of the job board API (env JOBBOARD_API_URL)")
	flags.StringVar(&c.flags.StatePath, "state", "", "Path of the local state file (env JOBBOARD_STATE)")
	flags.StringVar(&c.flags.Timeout, "timeout", "", "HTTP timeout, e.g. 30s")
	flags.StringVar(&c.flags.Email, "email", "", "Your email address for applications (env JOBBOARD_EMAIL)")
	flags.StringVar(&c.flags.LogLevel, "log-level", "", "Client log level (debug, info, warn, error)")
	flags.StringVar(&c.configPath, "config", "", "Optional JSON config file")

	rootCmd.AddCommand(
		newServeCmd(c),
		newJobsCmd(c),
		newFavoritesCmd(c),
		newRecentCmd(c),
		newApplyCmd(c),
		newApplicationsCmd(c),
		newLoginCmd(c),
		newLogoutCmd(c),
		newSeedCmd(c),
		newHealthCmd(c),
	)
	return rootCmd
}

// resolveConfig layers flags over the environment over the config file over
// the built-in defaults.
func (c *cli) resolveConfig() (config.Config, error) {
	cfg := c.flags.MergeWithDefaults(config.FromEnv())
	if c.configPath != "" {
		fileCfg, err := config.LoadConfig(c.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// open builds the session on first use: local state, API client and store.
func (c *cli) open() (*store.Session, error) {
	if c.session != nil {
		return c.session, nil
	}

	cfg, err := c.resolveConfig()
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.logger = observability.NewLogger(cfg.LogLevel, "console", c.errOut)

	storage, err := persist.OpenSQLStorage(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state: %w", err)
	}
	c.storage = storage

	st := store.New(persist.NewAdapter(storage, c.logger))
	api := client.New(cfg.APIURL,
		client.WithTimeout(cfg.TimeoutDuration()),
		client.WithLogger(c.logger),
	)
	c.session = store.NewSession(st, api, c.logger)
	c.printer = observability.NewPrinter(c.out)
	return c.session, nil
}

func (c *cli) close() error {
	if c.storage == nil {
		return nil
	}
	err := c.storage.Close()
	c.storage = nil
	c.session = nil
	return err
}

// requireAdmin opens the session and checks for an admin login.
func (c *cli) requireAdmin() (*store.Session, error) {
	session, err := c.open()
	if err != nil {
		return nil, err
	}
	if err := session.RequireAdmin(); err != nil {
		return nil, fmt.Errorf("%w: run \"jobboard login\" first", err)
	}
	return session, nil
}

func (c *cli) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
