package main

import (
	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/types"
)

func newFavoritesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved jobs",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved jobs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				session, err := c.open()
				if err != nil {
					return err
				}
				if err := session.FetchJobs(cmd.Context(), types.JobQuery{}); err != nil {
					return err
				}
				st := session.Store()
				jobs := st.FavoriteJobs()
				c.printer.PrintJobPage(jobs, 1, max(len(jobs), 1), len(jobs), favoriteSet(st))
				return nil
			},
		},
		&cobra.Command{
			Use:   "add JOB_ID",
			Short: "Save a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				session, err := c.open()
				if err != nil {
					return err
				}
				if err := session.Store().AddFavorite(args[0]); err != nil {
					return err
				}
				c.printf("Saved %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove JOB_ID",
			Short: "Remove a saved job",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				session, err := c.open()
				if err != nil {
					return err
				}
				if err := session.Store().RemoveFavorite(args[0]); err != nil {
					return err
				}
				c.printf("Removed %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle JOB_ID",
			Short: "Save or unsave a job",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				session, err := c.open()
				if err != nil {
					return err
				}
				saved, err := session.Store().ToggleFavorite(args[0])
				if err != nil {
					return err
				}
				if saved {
					c.printf("Saved %s\n", args[0])
				} else {
					c.printf("Removed %s\n", args[0])
				}
				return nil
			},
		},
	)
	return cmd
}

func newRecentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.open()
			if err != nil {
				return err
			}
			if err := session.FetchJobs(cmd.Context(), types.JobQuery{}); err != nil {
				return err
			}
			st := session.Store()
			jobs := st.RecentJobs()
			c.printer.PrintJobPage(jobs, 1, max(len(jobs), 1), len(jobs), favoriteSet(st))
			return nil
		},
	}
}
