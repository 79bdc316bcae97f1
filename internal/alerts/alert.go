package alerts

import "time"

// Type identifies the channel a detection came from.
type Type string

const (
	TypeText Type = "text"
	TypeCall Type = "call"
)

// Severity is a human-level bucket for triage.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Status is the review state of an alert. Only StatusNew is assigned today;
// the other values are reserved for review workflows.
type Status string

const (
	StatusNew       Status = "new"
	StatusReviewed  Status = "reviewed"
	StatusDismissed Status = "dismissed"
)

// Alert is one recorded detection.
type Alert struct {
	// ID is sequential within a store's lifetime and restarts at 1 after Clear.
	ID int `json:"id" example:"1"`

	// Ref is a random UUID that never repeats, even when ID does.
	Ref string `json:"ref" example:"3f0c1c9e-4a55-4b8e-9d1e-2b1f9f0a7c11"`

	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type" example:"text"`
	Content   string    `json:"content"`
	Reason    string    `json:"reason" example:"Suspicious keywords and patterns detected."`
	Severity  Severity  `json:"severity" example:"high"`
	Status    Status    `json:"status" example:"new"`
}
