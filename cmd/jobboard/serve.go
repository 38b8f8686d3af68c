package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/config"
	"github.com/jobboard/jobboard/internal/db"
	"github.com/jobboard/jobboard/internal/observability"
	"github.com/jobboard/jobboard/internal/server"
	"github.com/jobboard/jobboard/internal/server/ratelimit"
)

func newServeCmd(_ *cli) *cobra.Command {
	var (
		port     int
		inMemory bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the job board REST API.

Jobs and applications are stored in PostgreSQL (DATABASE_URL) unless
--in-memory is given. ADMIN_PASSWORD must be set for admin login.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			serverCfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				serverCfg.Port = port
			}
			return runServe(cmd, serverCfg, inMemory)
		},
	}

	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (env PORT)")
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "Keep data in memory instead of PostgreSQL")
	return cmd
}

func runServe(cmd *cobra.Command, serverCfg *config.ServerConfig, inMemory bool) error {
	ctx := cmd.Context()
	logger := observability.NewLogger(serverCfg.LogLevel, serverCfg.LogFormat, os.Stderr)

	orphans, err := db.ParseOrphanPolicy(serverCfg.OrphanPolicy)
	if err != nil {
		return err
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	admin, err := config.NewAdminCredentials(passwords)
	if err != nil {
		return fmt.Errorf("failed to load admin credentials: %w", err)
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	if jwtCfg.Generated {
		logger.Warn().Msg("JWT_SECRET is not set; using a random secret, admin tokens will not survive a restart")
	}

	var repo server.Repository
	if inMemory {
		logger.Warn().Msg("using in-memory storage; data is lost on exit")
		repo = db.NewMemory()
	} else {
		if serverCfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required (or use --in-memory)")
		}
		database, err := db.Connect(ctx, serverCfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		repo = database
	}

	srv, err := server.New(server.Config{
		Port:              serverCfg.Port,
		OrphanPolicy:      orphans,
		RequireAdminToken: serverCfg.RequireAdminToken,
		Admin:             admin,
		JWT:               jwtCfg,
		RateLimit:         ratelimit.LoadConfig(),
	}, repo, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
