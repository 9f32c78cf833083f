package mock

import (
	"context"

	"github.com/keithhb33/MathVis/pkg/api/v1/client"
	"github.com/keithhb33/MathVis/pkg/types"
)

// MockClient implements the Client interface for testing
type MockClient struct {
	// Function fields that can be set to mock behavior
	SubmitJobFn   func(ctx context.Context, req *types.SubmitRequest) (string, error)
	GetStatusFn   func(ctx context.Context, jobID string) (types.StatusResponse, error)
	PreviewFn     func(ctx context.Context, req *types.PreviewRequest) (types.PreviewResponse, error)
	ListJobsFn    func(ctx context.Context, status string, limit int) ([]types.Job, error)
	HealthCheckFn func(ctx context.Context) (map[string]string, error)

	// Call tracking for verification
	SubmitJobCalls []struct {
		Ctx context.Context
		Req *types.SubmitRequest
	}
	GetStatusCalls []struct {
		Ctx   context.Context
		JobID string
	}
	PreviewCalls []struct {
		Ctx context.Context
		Req *types.PreviewRequest
	}
	ListJobsCalls []struct {
		Ctx    context.Context
		Status string
		Limit  int
	}
	HealthCheckCalls []struct {
		Ctx context.Context
	}
}

// Ensure MockClient implements Client interface
var _ client.Client = (*MockClient)(nil)

// SubmitJob mocks the SubmitJob method
func (m *MockClient) SubmitJob(ctx context.Context, req *types.SubmitRequest) (string, error) {
	// Record this call
	m.SubmitJobCalls = append(m.SubmitJobCalls, struct {
		Ctx context.Context
		Req *types.SubmitRequest
	}{
		Ctx: ctx,
		Req: req,
	})

	// Return mock implementation if provided
	if m.SubmitJobFn != nil {
		return m.SubmitJobFn(ctx, req)
	}

	// Default mock implementation
	return "0123456789abcdef0123456789abcdef", nil
}

// GetStatus mocks the GetStatus method
func (m *MockClient) GetStatus(ctx context.Context, jobID string) (types.StatusResponse, error) {
	// Record this call
	m.GetStatusCalls = append(m.GetStatusCalls, struct {
		Ctx   context.Context
		JobID string
	}{
		Ctx:   ctx,
		JobID: jobID,
	})

	// Return mock implementation if provided
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, jobID)
	}

	// Default mock implementation
	return types.StatusResponse{Ready: true}, nil
}

// Preview mocks the Preview method
func (m *MockClient) Preview(ctx context.Context, req *types.PreviewRequest) (types.PreviewResponse, error) {
	// Record this call
	m.PreviewCalls = append(m.PreviewCalls, struct {
		Ctx context.Context
		Req *types.PreviewRequest
	}{
		Ctx: ctx,
		Req: req,
	})

	// Return mock implementation if provided
	if m.PreviewFn != nil {
		return m.PreviewFn(ctx, req)
	}

	// Default mock implementation
	return types.PreviewResponse{
		Expr:  `x^{2}`,
		Lower: "0",
		Upper: "1",
	}, nil
}

// ListJobs mocks the ListJobs method
func (m *MockClient) ListJobs(ctx context.Context, status string, limit int) ([]types.Job, error) {
	// Record this call
	m.ListJobsCalls = append(m.ListJobsCalls, struct {
		Ctx    context.Context
		Status string
		Limit  int
	}{
		Ctx:    ctx,
		Status: status,
		Limit:  limit,
	})

	// Return mock implementation if provided
	if m.ListJobsFn != nil {
		return m.ListJobsFn(ctx, status, limit)
	}

	// Default mock implementation
	return []types.Job{
		{
			ID:        "0123456789abcdef0123456789abcdef",
			Integrand: "3x*sin(x)",
			Variable:  "x",
			Lower:     "0",
			Upper:     "pi",
			Status:    "ready",
			Artifact:  "0123456789abcdef0123456789abcdef.mp4",
		},
		{
			ID:        "fedcba9876543210fedcba9876543210",
			Integrand: "x^2",
			Variable:  "x",
			Status:    "pending",
		},
	}, nil
}

// HealthCheck mocks the HealthCheck method
func (m *MockClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	// Record this call
	m.HealthCheckCalls = append(m.HealthCheckCalls, struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	})

	// Return mock implementation if provided
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}

	// Default mock implementation
	return map[string]string{
		"status": "healthy",
	}, nil
}
