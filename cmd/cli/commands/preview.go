package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keithhb33/MathVis/pkg/api/v1/client"
	"github.com/keithhb33/MathVis/pkg/types"
)

// previewOutput represents the output of a preview
type previewOutput struct {
	Expr    string `json:"expr"`
	Lower   string `json:"lower"`
	Upper   string `json:"upper"`
	Display string `json:"display,omitempty"`
}

func init() {
	previewCmd.Flags().StringP(flagIntegrand, "i", "", "Integrand expression, e.g. \"3x*sin(x)\"")
	previewCmd.Flags().StringP(flagVariable, "x", "x", "Variable of integration")
	previewCmd.Flags().StringP(flagLower, "l", "", "Lower bound of integration")
	previewCmd.Flags().StringP(flagUpper, "u", "", "Upper bound of integration")
	_ = previewCmd.MarkFlagRequired(flagIntegrand)
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the LaTeX preview of a request without submitting it",
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

		req := &types.PreviewRequest{
			Integrand: integrand,
			Variable:  variable,
			Lower:     lower,
			Upper:     upper,
		}

		resp, err := apiClient.Preview(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error previewing request: %w", err)
		}

		output := previewOutput{
			Expr:    resp.Expr,
			Lower:   resp.Lower,
			Upper:   resp.Upper,
			Display: client.ComposeDisplay(resp, variable),
		}

		prettyJSON, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("error formatting response: %w", err)
		}
		fmt.Println(string(prettyJSON))
		return nil
	},
}

// GetPreviewCmd returns the preview command
func GetPreviewCmd() *cobra.Command {
	return previewCmd
}
