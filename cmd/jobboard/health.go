package main

import (
	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/client"
)

func newHealthCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.resolveConfig()
			if err != nil {
				return err
			}
			api := client.New(cfg.APIURL, client.WithTimeout(cfg.TimeoutDuration()))
			health, err := api.Health(cmd.Context())
			if err != nil {
				return apiError(err)
			}
			c.printf("%s %s (%s)\n", cfg.APIURL, health.Status, health.Timestamp)
			return nil
		},
	}
}
