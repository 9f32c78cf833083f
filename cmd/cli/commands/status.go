package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keithhb33/MathVis/pkg/api/v1/routes"
	"github.com/keithhb33/MathVis/pkg/playback"
)

// Status flag names
const (
	flagJobID = "id"
)

// statusOutput represents the output of a status check
type statusOutput struct {
	JobID    string `json:"job_id"`
	Ready    bool   `json:"ready"`
	Error    string `json:"error,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

func init() {
	statusCmd.Flags().StringP(flagJobID, "i", "", "Job ID")
	_ = statusCmd.MarkFlagRequired(flagJobID)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Get the render status of a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, err := cmd.Flags().GetString(flagJobID)
		if err != nil {
			return fmt.Errorf("error getting job ID flag: %w", err)
		}

		status, err := apiClient.GetStatus(context.Background(), jobID)
		if err != nil {
			return fmt.Errorf("error getting status: %w", err)
		}

		output := statusOutput{
			JobID: jobID,
			Ready: status.Ready,
			Error: status.DisplayError(),
		}
		if status.Ready {
			output.VideoURL = videoURL(jobID)
		}

		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))
		return nil
	},
}

// videoURL builds the cache-busted delivery URL of a finished job's video
func videoURL(jobID string) string {
	return playback.CacheBust(serverAddress+routes.VideoURL(jobID+".mp4"), time.Now().Unix())
}

// GetStatusCmd returns the status command
func GetStatusCmd() *cobra.Command {
	return statusCmd
}
