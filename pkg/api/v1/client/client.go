// Package client provides the API client for interacting with the MathVis API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/keithhb33/MathVis/pkg/api/v1/routes"
	"github.com/keithhb33/MathVis/pkg/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for API client
type Client interface {
	// Render Endpoints
	SubmitJob(ctx context.Context, req *types.SubmitRequest) (string, error)
	GetStatus(ctx context.Context, jobID string) (types.StatusResponse, error)

	// Preview Endpoint
	Preview(ctx context.Context, req *types.PreviewRequest) (types.PreviewResponse, error)

	// Operator Endpoints
	ListJobs(ctx context.Context, status string, limit int) ([]types.Job, error)

	// Health Check
	HealthCheck(ctx context.Context) (map[string]string, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate the base URL
	_, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	// Resolve the endpoint URL
	fullURL := c.baseURL + endpoint

	// Create a new agent based on the HTTP method
	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	// Set common headers
	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	// Add body if provided
	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	// Execute the request
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	// Check for non-success status codes
	if statusCode < 200 || statusCode >= 300 {
		// If we can't decode the error response, return an error with the raw body as the message
		return &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}

	// Decode the response body if a target is provided
	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// Render methods implementation

// SubmitJob submits a render request the way the form page does and returns
// the id of the created job. The server answers a successful submission with
// a redirect to the result page; the job id is read from its location.
func (c *APIClient) SubmitJob(ctx context.Context, req *types.SubmitRequest) (string, error) {
	agent := fiber.Post(c.baseURL + routes.SubmitURL())

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("integrand", req.Integrand)
	args.Set("variable", req.Variable)
	args.Set("lower", req.Lower)
	args.Set("upper", req.Upper)
	args.Set("webhook_url", req.WebhookURL)
	agent.Form(args)

	// A custom response is needed to read the redirect location
	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("error sending request: %w", errs[0])
	}
	if statusCode != fiber.StatusSeeOther {
		return "", &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}

	return routes.ResultJobID(string(resp.Header.Peek(fiber.HeaderLocation)))
}

// GetStatus retrieves the status of a job by id. Unknown jobs answer as
// pending, matching the polling protocol.
func (c *APIClient) GetStatus(ctx context.Context, jobID string) (types.StatusResponse, error) {
	endpoint := routes.JobStatusURL(jobID)
	var response types.StatusResponse
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return types.StatusResponse{}, err
	}
	return response, nil
}

// Preview methods implementation

// Preview renders the request fields to LaTeX. Fields that fail to parse come
// back empty; the endpoint never rejects user input.
func (c *APIClient) Preview(ctx context.Context, req *types.PreviewRequest) (types.PreviewResponse, error) {
	endpoint := routes.PreviewURL()
	var response types.PreviewResponse
	if err := c.executeRequest(ctx, http.MethodPost, endpoint, req, &response); err != nil {
		return types.PreviewResponse{}, err
	}
	return response, nil
}

// Operator methods implementation

// ListJobs lists job records with optional status filtering
func (c *APIClient) ListJobs(ctx context.Context, status string, limit int) ([]types.Job, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	endpoint := routes.ListJobsURL(q)
	var response types.JobsResponse
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []types.Job{}, err
	}
	return response.Jobs, nil
}

// Health check implementation

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	endpoint := routes.HealthCheckURL()
	var response map[string]string
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return map[string]string{}, err
	}
	return response, nil
}
