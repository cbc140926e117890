package ports

import (
	"context"
	"time"
)

// Issue event types.
const (
	EventIssueCreated = "issue.created"
	EventIssueUpdated = "issue.updated"
	EventIssueDeleted = "issue.deleted"
)

// IssueEvent describes a committed issue mutation.
type IssueEvent struct {
	Type           string    `json:"type"`
	OrganizationID string    `json:"organization_id"`
	TeamID         string    `json:"team_id"`
	IssueID        string    `json:"issue_id"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EventPublisher hands issue events to asynchronous delivery. Publishing happens after the write
// commits, so a failure never undoes the mutation.
type EventPublisher interface {
	PublishIssueEvent(ctx context.Context, event IssueEvent) error
}

// EventDeliverer pushes one event to its final destination.
type EventDeliverer interface {
	Deliver(ctx context.Context, event IssueEvent) error
}
