package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keithhb33/MathVis/pkg/api/v1/routes"
	"github.com/keithhb33/MathVis/pkg/types"
)

// Submit flag names
const (
	flagIntegrand = "integrand"
	flagVariable  = "variable"
	flagLower     = "lower"
	flagUpper     = "upper"
	flagWebhook   = "webhook"
	flagWatch     = "watch"
)

// submitOutput represents the output of a submission
type submitOutput struct {
	JobID     string `json:"job_id"`
	ResultURL string `json:"result_url"`
}

func init() {
	submitCmd.Flags().StringP(flagIntegrand, "i", "", "Integrand expression, e.g. \"3x*sin(x)\"")
	submitCmd.Flags().StringP(flagVariable, "x", "x", "Variable of integration")
	submitCmd.Flags().StringP(flagLower, "l", "", "Lower bound of integration")
	submitCmd.Flags().StringP(flagUpper, "u", "", "Upper bound of integration")
	submitCmd.Flags().StringP(flagWebhook, "w", "", "URL to POST the final status to when the render finishes")
	submitCmd.Flags().Bool(flagWatch, false, "Poll the job until it finishes")
	submitCmd.Flags().Duration(flagWatchInterval, defaultWatchInterval, "Delay between status polls when watching")
	_ = submitCmd.MarkFlagRequired(flagIntegrand)
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a definite integral for rendering",
	RunE: func(cmd *cobra.Command, _ []string) error {
		integrand, err := cmd.Flags().GetString(flagIntegrand)
		if err != nil {
			return fmt.Errorf("error getting integrand flag: %w", err)
		}
		variable, err := cmd.Flags().GetString(flagVariable)
		if err != nil {
			return fmt.Errorf("error getting variable flag: %w", err)
		}
		lower, err := cmd.Flags().GetString(flagLower)
		if err != nil {
			return fmt.Errorf("error getting lower flag: %w", err)
		}
		upper, err := cmd.Flags().GetString(flagUpper)
		if err != nil {
			return fmt.Errorf("error getting upper flag: %w", err)
		}
		webhook, err := cmd.Flags().GetString(flagWebhook)
		if err != nil {
			return fmt.Errorf("error getting webhook flag: %w", err)
		}

		req := &types.SubmitRequest{
			Integrand:  integrand,
			Variable:   variable,
			Lower:      lower,
			Upper:      upper,
			WebhookURL: webhook,
		}

		jobID, err := apiClient.SubmitJob(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error submitting job: %w", err)
		}

		output := submitOutput{
			JobID:     jobID,
			ResultURL: serverAddress + routes.ResultURL(jobID),
		}

		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))

		watch, err := cmd.Flags().GetBool(flagWatch)
		if err != nil {
			return fmt.Errorf("error getting watch flag: %w", err)
		}
		if !watch {
			return nil
		}

		interval, err := cmd.Flags().GetDuration(flagWatchInterval)
		if err != nil {
			return fmt.Errorf("error getting interval flag: %w", err)
		}
		return watchJob(jobID, interval, 0)
	},
}

// GetSubmitCmd returns the submit command
func GetSubmitCmd() *cobra.Command {
	return submitCmd
}
