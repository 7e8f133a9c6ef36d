package audit

import "time"

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one admin mutation attempt.
type Entry struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Resource   string    `bson:"resource" json:"resource"`
	ResourceID string    `bson:"resource_id,omitempty" json:"resource_id,omitempty"`
	Action     string    `bson:"action" json:"action"`
	Actor      string    `bson:"actor" json:"actor"`
	Outcome    Outcome   `bson:"outcome" json:"outcome"`
	Message    string    `bson:"message,omitempty" json:"message,omitempty"`
	RequestID  string    `bson:"request_id,omitempty" json:"request_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

type ListFilter struct {
	Resource string
	Outcome  Outcome
}
