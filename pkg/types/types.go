// Package types defines the wire contracts of the MathVis API: the request
// and response bodies exchanged by the web pages, the status poller, the
// preview synchronizer, and programmatic API clients.
package types

import (
	"strings"
	"time"
)

// InternalErrorPrefix tags every stored job failure cause. The prefix travels
// over the status endpoint unchanged; display layers strip it before showing
// the message to a user.
const InternalErrorPrefix = "error:"

// DisplayError strips the internal prefix from a failure cause. Messages
// without the prefix are returned unchanged.
func DisplayError(msg string) string {
	if strings.HasPrefix(msg, InternalErrorPrefix) {
		return msg[len(InternalErrorPrefix):]
	}
	return msg
}

// PrefixError normalizes a failure cause to carry the internal prefix
// exactly once.
func PrefixError(msg string) string {
	if strings.HasPrefix(msg, InternalErrorPrefix) {
		return msg
	}
	return InternalErrorPrefix + msg
}

// StatusResponse is the body returned by the status endpoint.
//
// A pending (or unknown) job answers {ready: false, error: null}, a finished
// job {ready: true, error: null}, and a failed job carries the prefixed
// failure cause. There is no other shape.
type StatusResponse struct {
	Ready bool    `json:"ready"`
	Error *string `json:"error"`
}

// Failed reports whether the response describes a terminally failed job.
func (r StatusResponse) Failed() bool {
	return r.Error != nil && *r.Error != ""
}

// DisplayError returns the failure cause with the internal prefix stripped,
// or an empty string when the response does not describe a failure.
func (r StatusResponse) DisplayError() string {
	if !r.Failed() {
		return ""
	}
	return DisplayError(*r.Error)
}

// SubmitRequest carries the four form fields of a render submission plus the
// optional completion webhook.
type SubmitRequest struct {
	Integrand  string `json:"integrand"`
	Variable   string `json:"variable"`
	Lower      string `json:"lower"`
	Upper      string `json:"upper"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

// PreviewRequest is the body of a live-preview call. It mirrors the form
// fields verbatim; the endpoint is stateless.
type PreviewRequest struct {
	Integrand string `json:"integrand"`
	Variable  string `json:"variable"`
	Lower     string `json:"lower"`
	Upper     string `json:"upper"`
}

// PreviewResponse carries the typeset renderings of the preview fields. A
// field that is empty or fails to parse comes back as an empty string; the
// endpoint never errors on user input.
type PreviewResponse struct {
	Expr  string `json:"expr"`
	Lower string `json:"lower"`
	Upper string `json:"upper"`
}

// Job is the operator-facing view of a job record as returned by the job
// list endpoint.
type Job struct {
	ID          string    `json:"job_id"`
	Integrand   string    `json:"integrand"`
	Variable    string    `json:"variable"`
	Lower       string    `json:"lower"`
	Upper       string    `json:"upper"`
	Status      string    `json:"status"`
	Artifact    string    `json:"artifact,omitempty"`
	Error       string    `json:"error,omitempty"`
	WebhookURL  string    `json:"webhook_url,omitempty"`
	WebhookSent bool      `json:"webhook_sent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobsResponse wraps the job list endpoint body.
type JobsResponse struct {
	Jobs []Job `json:"jobs"`
}

// WebhookPayload is POSTed to a job's webhook URL when the job reaches a
// terminal state. It is the status body plus the job id.
type WebhookPayload struct {
	JobID string `json:"job_id"`
	StatusResponse
}
