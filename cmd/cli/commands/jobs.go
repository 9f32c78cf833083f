package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// Jobs flag names
const (
	flagJobsStatus = "status"
	flagJobsLimit  = "limit"
)

// jobOutput represents the filtered output for a job record
type jobOutput struct {
	JobID     string `json:"job_id"`
	Integrand string `json:"integrand"`
	Variable  string `json:"variable"`
	Lower     string `json:"lower,omitempty"`
	Upper     string `json:"upper,omitempty"`
	Status    string `json:"status"`
	Artifact  string `json:"artifact,omitempty"`
	Error     string `json:"error,omitempty"`
	Created   string `json:"created_at"`
}

// jobListOutput represents the filtered output for a list of jobs
type jobListOutput struct {
	Jobs []jobOutput `json:"jobs"`
}

func init() {
	jobsCmd.AddCommand(listJobsCmd)

	// Add flags
	listJobsCmd.Flags().StringP(flagJobsStatus, "t", "", "Filter jobs by status (pending, ready, failed)")
	listJobsCmd.Flags().IntP(flagJobsLimit, "n", 0, "Limit the number of jobs returned")
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect render jobs",
}

var listJobsCmd = &cobra.Command{
	Use:   "list",
	Short: "List render jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := cmd.Flags().GetString(flagJobsStatus)
		if err != nil {
			return fmt.Errorf("error getting status flag: %w", err)
		}
		limit, err := cmd.Flags().GetInt(flagJobsLimit)
		if err != nil {
			return fmt.Errorf("error getting limit flag: %w", err)
		}

		jobs, err := apiClient.ListJobs(context.Background(), status, limit)
		if err != nil {
			return fmt.Errorf("error listing jobs: %w", err)
		}

		// Filter the response to only include relevant fields
		output := jobListOutput{
			Jobs: make([]jobOutput, len(jobs)),
		}
		for i, job := range jobs {
			output.Jobs[i] = jobOutput{
				JobID:     job.ID,
				Integrand: job.Integrand,
				Variable:  job.Variable,
				Lower:     job.Lower,
				Upper:     job.Upper,
				Status:    job.Status,
				Artifact:  job.Artifact,
				Error:     job.Error,
				Created:   job.CreatedAt.Format("2006-01-02 15:04:05"),
			}
		}

		// Pretty print the response
		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))
		return nil
	},
}

// GetJobsCmd returns the jobs command
func GetJobsCmd() *cobra.Command {
	return jobsCmd
}
