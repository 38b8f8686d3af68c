package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobboard/jobboard/internal/client"
	"github.com/jobboard/jobboard/internal/filter"
	"github.com/jobboard/jobboard/internal/paginate"
	"github.com/jobboard/jobboard/internal/store"
	"github.com/jobboard/jobboard/internal/types"
)

func newJobsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Browse and manage job postings",
	}
	cmd.AddCommand(
		newJobsListCmd(c),
		newJobsShowCmd(c),
		newJobsCreateCmd(c),
		newJobsUpdateCmd(c),
		newJobsDeleteCmd(c),
	)
	return cmd
}

type filterFlags struct {
	search    string
	location  string
	jobType   string
	salaryMin float64
	salaryMax float64
	posted    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "Match title, company or description")
	cmd.Flags().StringVar(&f.location, "location", "", "Match location")
	cmd.Flags().StringVar(&f.jobType, "type", "", "Job type: Full-time, Part-time, Contract or Remote")
	cmd.Flags().Float64Var(&f.salaryMin, "salary-min", filter.DefaultSalaryMin, "Minimum salary")
	cmd.Flags().Float64Var(&f.salaryMax, "salary-max", filter.DefaultSalaryMax, "Maximum salary")
	cmd.Flags().StringVar(&f.posted, "posted", "", "Posting age: today, week or month")
}

func (f *filterFlags) spec() (filter.Spec, error) {
	spec := filter.DefaultSpec()
	spec.SearchTerm = f.search
	spec.Location = f.location
	spec.SalaryRange = [2]float64{f.salaryMin, f.salaryMax}

	if f.jobType != "" {
		jobType := types.JobType(f.jobType)
		if !jobType.Valid() {
			return spec, fmt.Errorf("invalid job type %q", f.jobType)
		}
		spec.JobType = jobType
	}
	bucket, ok := filter.ParseDateBucket(f.posted)
	if !ok {
		return spec, fmt.Errorf("invalid posting age %q: must be today, week or month", f.posted)
	}
	spec.DatePosted = bucket
	if spec.SalaryRange[0] > spec.SalaryRange[1] {
		return spec, fmt.Errorf("salary-min must not exceed salary-max")
	}
	return spec, nil
}

func newJobsListCmd(c *cli) *cobra.Command {
	var (
		filters   filterFlags
		page      int
		showStats bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, filtered and paginated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := filters.spec()
			if err != nil {
				return err
			}
			session, err := c.open()
			if err != nil {
				return err
			}
			if err := session.FetchJobs(cmd.Context(), types.JobQuery{}); err != nil {
				return err
			}

			st := session.Store()
			st.ApplyFilter(spec)
			page = st.SetPage(page)
			c.printer.PrintJobPage(st.Paginated(), page, paginate.DefaultPageSize, len(st.Filtered()), favoriteSet(st))
			if showStats {
				c.printer.PrintStats(st.Stats())
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print a summary of the matching jobs")
	return cmd
}

func favoriteSet(st *store.Store) map[string]bool {
	set := make(map[string]bool)
	for _, id := range st.Favorites() {
		set[id] = true
	}
	return set
}

func newJobsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show a job and record it as recently viewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.open()
			if err != nil {
				return err
			}
			job, err := session.ViewJob(cmd.Context(), args[0])
			if err != nil {
				return jobError(err, args[0])
			}
			st := session.Store()
			c.printer.PrintJob(job, st.IsFavorite(job.ID), st.HasApplied(job.ID))
			return nil
		},
	}
}

func jobError(err error, id string) error {
	if errors.Is(err, store.ErrJobNotFound) {
		return fmt.Errorf("job %s not found", id)
	}
	return err
}

type jobFlags struct {
	title        string
	company      string
	location     string
	description  string
	salary       float64
	jobType      string
	requirements string
	benefits     string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Job title")
	cmd.Flags().StringVar(&f.company, "company", "", "Company name")
	cmd.Flags().StringVar(&f.location, "location", "", "Location")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().Float64Var(&f.salary, "salary", 0, "Yearly salary")
	cmd.Flags().StringVar(&f.jobType, "type", "", "Job type: Full-time, Part-time, Contract or Remote")
	cmd.Flags().StringVar(&f.requirements, "requirements", "", "Requirements, one per line")
	cmd.Flags().StringVar(&f.benefits, "benefits", "", "Benefits, one per line")
}

func newJobsCreateCmd(c *cli) *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a job posting (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.requireAdmin()
			if err != nil {
				return err
			}

			req := &types.CreateJobRequest{
				Title:        f.title,
				Company:      f.company,
				Location:     f.location,
				Description:  f.description,
				Type:         types.JobType(f.jobType),
				Requirements: types.SplitLines(f.requirements),
				Benefits:     types.SplitLines(f.benefits),
			}
			if cmd.Flags().Changed("salary") {
				salary := f.salary
				req.Salary = &salary
			}
			req.Normalize()

			job, err := session.CreateJob(cmd.Context(), req)
			if err != nil {
				return apiError(err)
			}
			c.printf("Created job %s: %s at %s\n", job.ID, job.Title, job.Company)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newJobsUpdateCmd(c *cli) *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "update JOB_ID",
		Short: "Edit a job posting (admin); omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.requireAdmin()
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			req := &types.UpdateJobRequest{
				Title:       f.title,
				Company:     f.company,
				Location:    f.location,
				Description: f.description,
				Type:        types.JobType(f.jobType),
			}
			if changed("salary") {
				salary := f.salary
				req.Salary = &salary
			}
			if changed("requirements") {
				req.Requirements = types.SplitLines(f.requirements)
			}
			if changed("benefits") {
				req.Benefits = types.SplitLines(f.benefits)
			}
			req.Normalize()

			job, err := session.UpdateJob(cmd.Context(), args[0], req)
			if err != nil {
				return apiError(jobError(err, args[0]))
			}
			c.printf("Updated job %s: %s at %s\n", job.ID, job.Title, job.Company)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newJobsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete JOB_ID",
		Short: "Delete a job posting (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.requireAdmin()
			if err != nil {
				return err
			}
			if err := session.DeleteJob(cmd.Context(), args[0]); err != nil {
				return apiError(jobError(err, args[0]))
			}
			c.printf("Deleted job %s\n", args[0])
			return nil
		},
	}
}

// apiError reduces an API rejection to the server's message.
func apiError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return errors.New(strings.TrimSpace(apiErr.Error()))
	}
	return err
}
