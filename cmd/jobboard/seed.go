package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jobboard/jobboard/internal/types"
)

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Jobs []types.CreateJobRequest `yaml:"jobs"`
}

// loadSeedFile reads and validates the jobs of a seed file.
func loadSeedFile(path string) ([]types.CreateJobRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if len(file.Jobs) == 0 {
		return nil, fmt.Errorf("seed file %s contains no jobs", path)
	}

	validate := validator.New()
	for i := range file.Jobs {
		file.Jobs[i].Normalize()
		if err := validate.Struct(&file.Jobs[i]); err != nil {
			return nil, fmt.Errorf("job %d (%q) is invalid: %w", i+1, file.Jobs[i].Title, err)
		}
	}
	return file.Jobs, nil
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Create the jobs listed in a YAML file (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := loadSeedFile(args[0])
			if err != nil {
				return err
			}
			session, err := c.requireAdmin()
			if err != nil {
				return err
			}

			for i := range jobs {
				job, err := session.CreateJob(cmd.Context(), &jobs[i])
				if err != nil {
					return fmt.Errorf("job %d (%q): %w", i+1, jobs[i].Title, apiError(err))
				}
				c.printf("Created job %s: %s at %s\n", job.ID, job.Title, job.Company)
			}
			c.printf("Seeded %d jobs\n", len(jobs))
			return nil
		},
	}
}
