package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/types"
)

func newApplyCmd(c *cli) *cobra.Command {
	var req types.ApplyRequest

	cmd := &cobra.Command{
		Use:   "apply JOB_ID",
		Short: "Apply to a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.open()
			if err != nil {
				return err
			}
			if req.Email == "" {
				req.Email = c.cfg.Email
			}
			req.Normalize()
			if req.Name == "" || req.Email == "" || req.ResumeURL == "" {
				return fmt.Errorf("name, email, and resume URL are required")
			}

			resp, err := session.ApplyToJob(cmd.Context(), args[0], &req)
			if err != nil {
				return apiError(err)
			}
			c.printf("%s (application %s)\n", resp.Message, resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Your full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Your email address (defaults to the configured email)")
	cmd.Flags().StringVar(&req.ResumeURL, "resume", "", "Link to your resume")
	cmd.Flags().StringVar(&req.CoverLetter, "cover-letter", "", "Optional cover letter")
	return cmd
}
