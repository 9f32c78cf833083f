package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keithhb33/MathVis/pkg/api/v1/client"
	"github.com/keithhb33/MathVis/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
)

// environment variable names
const (
	envServerAddress = "MATHVIS_SERVER_ADDRESS"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
)

// initClient initializes the API client
func initClient() error {
	var err error
	// Use the serverAddress determined by PersistentPreRunE
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	// Set a basic default for the flag. PersistentPreRunE handles the env var override.
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL, "Address of the MathVis server (env: MATHVIS_SERVER_ADDRESS)")

	RootCmd.AddCommand(GetSubmitCmd())
	RootCmd.AddCommand(GetStatusCmd())
	RootCmd.AddCommand(GetWatchCmd())
	RootCmd.AddCommand(GetPreviewCmd())
	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetHealthCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "mathvis",
	Short: "MathVis CLI - A command line interface for the MathVis render service",
	Long: `MathVis CLI submits definite integrals to a MathVis server, watches the
render progress, and inspects the resulting solution videos.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// The flag wins over the environment variable, which wins over the default.
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
