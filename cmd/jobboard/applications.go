package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/store"
	"github.com/jobboard/jobboard/internal/types"
)

func newApplicationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Review applications",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all applications with status counts (admin)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				session, err := c.requireAdmin()
				if err != nil {
					return err
				}
				if err := session.FetchApplications(cmd.Context()); err != nil {
					return apiError(err)
				}
				c.printApplications(session.Store().Applications())
				return nil
			},
		},
		&cobra.Command{
			Use:   "job JOB_ID",
			Short: "List the applications for one job (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				session, err := c.requireAdmin()
				if err != nil {
					return err
				}
				if err := session.FetchApplicationsForJob(cmd.Context(), args[0]); err != nil {
					return apiError(err)
				}
				c.printApplications(session.Store().Applications())
				return nil
			},
		},
		&cobra.Command{
			Use:   "user EMAIL",
			Short: "List the applications submitted with an email address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				session, err := c.open()
				if err != nil {
					return err
				}
				if err := session.FetchUserApplications(cmd.Context(), args[0]); err != nil {
					return apiError(err)
				}
				c.printer.PrintApplications(session.Store().UserApplications())
				return nil
			},
		},
		&cobra.Command{
			Use:   "mine",
			Short: "List your applications",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				session, err := c.open()
				if err != nil {
					return err
				}
				ctx := cmd.Context()
				if c.cfg.Email != "" {
					if err := session.FetchUserApplications(ctx, c.cfg.Email); err != nil {
						return apiError(err)
					}
				}
				// The admin list resolves jobs applied to from this client
				// under another email; it may be closed to non-admins.
				if err := session.FetchApplications(ctx); err != nil && !errors.Is(err, store.ErrStale) {
					c.logger.Debug().Err(err).Msg("application list unavailable")
				}
				c.printer.PrintApplications(session.Store().MyApplications())
				return nil
			},
		},
		&cobra.Command{
			Use:   "status APPLICATION_ID STATUS",
			Short: "Set the status of an application (admin)",
			Long:  "Set the status of an application to pending, reviewed, shortlisted or rejected.",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				status := types.ApplicationStatus(args[1])
				if !status.Valid() {
					return fmt.Errorf("invalid status %q", args[1])
				}
				session, err := c.requireAdmin()
				if err != nil {
					return err
				}
				app, err := session.SetApplicationStatus(cmd.Context(), args[0], status)
				if err != nil {
					return apiError(err)
				}
				c.printf("Application %s is now %s\n", app.ID, app.Status)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete APPLICATION_ID",
			Short: "Delete an application (admin)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				session, err := c.requireAdmin()
				if err != nil {
					return err
				}
				if err := session.DeleteApplication(cmd.Context(), args[0]); err != nil {
					return apiError(err)
				}
				c.printf("Deleted application %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func (c *cli) printApplications(apps []types.Application) {
	c.printer.PrintApplications(apps)
	c.printer.PrintStatusCounts(store.CountStatuses(apps))
}
