package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the MathVis server",
	RunE: func(_ *cobra.Command, _ []string) error {
		health, err := apiClient.HealthCheck(context.Background())
		if err != nil {
			return fmt.Errorf("error checking server health: %w", err)
		}

		prettyJSON, err := json.MarshalIndent(health, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))
		return nil
	},
}

// GetHealthCmd returns the health command
func GetHealthCmd() *cobra.Command {
	return healthCmd
}
