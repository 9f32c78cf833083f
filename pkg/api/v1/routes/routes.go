// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for the operator API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Page routes
	IndexPage  = "IndexPage"
	SubmitJob  = "SubmitJob"
	ResultPage = "ResultPage"

	// Job routes
	GetJobStatus = "GetJobStatus"
	ListJobs     = "ListJobs"

	// Preview route
	PreviewLatex = "PreviewLatex"

	// Health check
	HealthCheck = "HealthCheck"
)

// Page route helpers

// IndexURL returns the URL for the submission page
func IndexURL() string {
	return "/"
}

// SubmitURL returns the URL render requests are POSTed to
func SubmitURL() string {
	return "/"
}

// ResultURL returns the URL for the result page of a job
func ResultURL(jobID string) string {
	return "/result/" + jobID
}

// Job route helpers

// JobStatusURL returns the URL for polling the status of a job
func JobStatusURL(jobID string) string {
	return "/status/" + jobID
}

// ListJobsURL returns the URL for listing jobs
func ListJobsURL(queryParams url.Values) string {
	route := APIv1Prefix + "/jobs"
	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}
	return route
}

// Preview route helper

// PreviewURL returns the URL for the stateless LaTeX preview endpoint
func PreviewURL() string {
	return "/latex"
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return "/health"
}

// Artifact route helper

// VideoURL returns the delivery URL for a rendered artifact file
func VideoURL(artifact string) string {
	return "/videos/" + artifact
}

// ResultJobID extracts the job id from a result page location, as sent in the
// Location header of a successful submission.
func ResultJobID(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid result location %q: %w", location, err)
	}
	id := strings.TrimPrefix(u.Path, "/result/")
	if id == "" || id == u.Path || strings.Contains(id, "/") {
		return "", fmt.Errorf("location %q is not a result page", location)
	}
	return id, nil
}
