package registry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a render job.
type Status string

// Job lifecycle states. A job is created pending and moves exactly once to
// ready or failed; terminal states never change again.
const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// ParseStatus converts a string into a Status, validating it against the
// known states.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "pending":
		return StatusPending, nil
	case "ready":
		return StatusReady, nil
	case "failed":
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("invalid job status: %s", s)
	}
}

// UnmarshalJSON implements json.Unmarshaler with validation.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("job status should be a string, got %s", data)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Job is a render job record.
//
// Error always carries the internal "error:" prefix once the job has failed;
// Artifact holds the bare file name of the rendered video once it is ready.
type Job struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Integrand   string    `json:"integrand" gorm:"not null"`
	Variable    string    `json:"variable" gorm:"not null"`
	Lower       string    `json:"lower" gorm:"not null"`
	Upper       string    `json:"upper" gorm:"not null"`
	Status      Status    `json:"status" gorm:"size:16;index"`
	Artifact    string    `json:"artifact"`
	Error       string    `json:"error"`
	WebhookURL  string    `json:"webhook_url"`
	WebhookSent bool      `json:"webhook_sent"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}
