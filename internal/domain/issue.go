package domain

import "time"

// IssueStatus is the workflow state of an issue.
type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "todo"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusDone       IssueStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusTodo, IssueStatusInProgress, IssueStatusDone:
		return true
	}
	return false
}

// IssuePriority is the urgency of an issue.
type IssuePriority string

const (
	IssuePriorityHigh   IssuePriority = "high"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityLow    IssuePriority = "low"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case IssuePriorityHigh, IssuePriorityMedium, IssuePriorityLow:
		return true
	}
	return false
}

// Issue is a unit of work owned by a team. Position is the manual ordering key, assigned as
// max+1 within the team at creation and never renumbered.
type Issue struct {
	ID          string
	TeamID      string
	Title       string
	Description *string
	Status      IssueStatus
	Priority    IssuePriority
	AssigneeID  *string
	DueDate     *time.Time
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LabelIDs    []string
}

// Label is a team-scoped tag. Names are not unique.
type Label struct {
	ID     string
	TeamID string
	Name   string
	Color  *string
}

// Optional tracks whether a value was supplied separately from the value itself, so that
// "set to null" and "not provided" stay distinct.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a supplied Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}
