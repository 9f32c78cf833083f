package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keithhb33/MathVis/pkg/api/v1/client/mock"
	"github.com/keithhb33/MathVis/pkg/types"
)

func TestJobsCommand(t *testing.T) {
	subCmds := jobsCmd.Commands()
	require.Len(t, subCmds, 1, "Expected 1 subcommand")
	assert.Equal(t, "list", subCmds[0].Name())
}

func TestListJobsCmd(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name           string
		args           []string
		mockClient     *mock.MockClient
		expectedOutput string
		expectedError  string
		validateFn     func(t *testing.T, m *mock.MockClient)
	}{
		{
			name: "successful list with filter",
			args: []string{"jobs", "list", "--status", "failed", "--limit", "5"},
			mockClient: &mock.MockClient{
				ListJobsFn: func(_ context.Context, _ string, _ int) ([]types.Job, error) {
					return []types.Job{{
						ID:        "job-1",
						Integrand: "1/x",
						Variable:  "x",
						Lower:     "-1",
						Upper:     "1",
						Status:    "failed",
						Error:     "error:integral diverged",
						CreatedAt: createdAt,
					}}, nil
				},
			},
			expectedOutput: `{
  "jobs": [
    {
      "job_id": "job-1",
      "integrand": "1/x",
      "variable": "x",
      "lower": "-1",
      "upper": "1",
      "status": "failed",
      "error": "error:integral diverged",
      "created_at": "2025-03-14 09:30:00"
    }
  ]
}`,
			validateFn: func(t *testing.T, m *mock.MockClient) {
				require.Len(t, m.ListJobsCalls, 1)
				assert.Equal(t, "failed", m.ListJobsCalls[0].Status)
				assert.Equal(t, 5, m.ListJobsCalls[0].Limit)
			},
		},
		{
			name: "empty list",
			args: []string{"jobs", "list"},
			mockClient: &mock.MockClient{
				ListJobsFn: func(_ context.Context, _ string, _ int) ([]types.Job, error) {
					return []types.Job{}, nil
				},
			},
			expectedOutput: `{
  "jobs": []
}`,
		},
		{
			name: "server error",
			args: []string{"jobs", "list", "--status", "bogus"},
			mockClient: &mock.MockClient{
				ListJobsFn: func(_ context.Context, _ string, _ int) ([]types.Job, error) {
					return nil, errors.New(`invalid request: unknown status "bogus"`)
				},
			},
			expectedError: "error listing jobs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			swapClient(t, tt.mockClient)
			swapServerAddress(t, "http://localhost:8080")

			cmd := setupTestRootCmd()
			cmd.SetArgs(tt.args)
			output, err := captureStdout(t, cmd.Execute)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			if tt.expectedOutput != "" {
				assert.JSONEq(t, tt.expectedOutput, output)
			}
			if tt.validateFn != nil {
				tt.validateFn(t, tt.mockClient)
			}
		})
	}
}
