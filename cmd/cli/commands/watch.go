package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keithhb33/MathVis/pkg/api/v1/client"
)

// Watch flag names
const (
	flagWatchInterval = "interval"
	flagMaxPolls      = "max-polls"
)

// defaultWatchInterval is the default delay between status polls
const defaultWatchInterval = client.DefaultPollInterval

func init() {
	watchCmd.Flags().StringP(flagJobID, "i", "", "Job ID")
	watchCmd.Flags().Duration(flagWatchInterval, defaultWatchInterval, "Delay between status polls")
	watchCmd.Flags().Int(flagMaxPolls, 0, "Give up after this many polls (0 polls forever)")
	_ = watchCmd.MarkFlagRequired(flagJobID)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a job until it finishes and print the outcome",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, err := cmd.Flags().GetString(flagJobID)
		if err != nil {
			return fmt.Errorf("error getting job ID flag: %w", err)
		}
		interval, err := cmd.Flags().GetDuration(flagWatchInterval)
		if err != nil {
			return fmt.Errorf("error getting interval flag: %w", err)
		}
		maxPolls, err := cmd.Flags().GetInt(flagMaxPolls)
		if err != nil {
			return fmt.Errorf("error getting max-polls flag: %w", err)
		}

		return watchJob(jobID, interval, maxPolls)
	},
}

// watchJob polls until the job reaches a terminal state and prints the
// outcome. A failed render is part of the outcome, not a command error.
func watchJob(jobID string, interval time.Duration, maxPolls int) error {
	poller := client.NewPoller(apiClient, jobID, &client.PollerOptions{
		Interval: interval,
		MaxPolls: maxPolls,
	})

	output := statusOutput{JobID: jobID}
	err := poller.Wait(context.Background())

	var failed *client.RenderFailedError
	switch {
	case err == nil:
		output.Ready = true
		output.VideoURL = videoURL(jobID)
	case errors.As(err, &failed):
		output.Error = failed.DisplayMessage()
	default:
		return fmt.Errorf("error watching job: %w", err)
	}

	prettyJSON, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	fmt.Println(string(prettyJSON))
	return nil
}

// GetWatchCmd returns the watch command
func GetWatchCmd() *cobra.Command {
	return watchCmd
}
