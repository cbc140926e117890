package ports

import (
	"context"
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
)

// OrganizationRepository answers the two authorization facts: membership and team ownership.
type OrganizationRepository interface {
	IsMember(ctx context.Context, orgID, userID string) (bool, error)
	// GetTeam returns nil, nil when no team matches both ids.
	GetTeam(ctx context.Context, orgID, teamID string) (*domain.Team, error)
}

// IssueRepository persists issues. Reads return nil, nil when nothing matches.
type IssueRepository interface {
	MaxPosition(ctx context.Context, teamID string) (int, error)
	CreateIssue(ctx context.Context, issue *domain.Issue) error
	GetIssue(ctx context.Context, teamID, issueID string) (*domain.Issue, error)
	UpdateIssue(ctx context.Context, teamID, issueID string, changes IssueChanges) error
	DeleteIssue(ctx context.Context, teamID, issueID string) error
	FindIssues(ctx context.Context, q IssueQuery) ([]*domain.Issue, error)
	CountIssues(ctx context.Context, q IssueQuery) (int64, error)
}

// LabelRepository persists labels and the issue/label join rows.
type LabelRepository interface {
	ListLabels(ctx context.Context, teamID string) ([]*domain.Label, error)
	CreateLabel(ctx context.Context, label *domain.Label) error
	GetLabel(ctx context.Context, teamID, labelID string) (*domain.Label, error)
	// IssueIDsWithLabels returns the distinct ids of issues carrying any of labelIDs.
	IssueIDsWithLabels(ctx context.Context, labelIDs []string) ([]string, error)
	// LabelIDsByIssue returns label ids keyed by issue id for the given issues.
	LabelIDsByIssue(ctx context.Context, issueIDs []string) (map[string][]string, error)
	AddIssueLabels(ctx context.Context, issueID string, labelIDs []string) error
	// ReplaceIssueLabels deletes every association of issueID, then inserts labelIDs.
	ReplaceIssueLabels(ctx context.Context, issueID string, labelIDs []string) error
}

// Store is the storage collaborator. Implementations must be safe for concurrent use.
type Store interface {
	OrganizationRepository
	IssueRepository
	LabelRepository
	// WithinTx runs fn against a transaction-scoped Store; a non-nil error from fn rolls back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// IssueField names a sortable issue column.
type IssueField string

const (
	FieldPosition  IssueField = "position"
	FieldCreatedAt IssueField = "created_at"
	FieldUpdatedAt IssueField = "updated_at"
	FieldTitle     IssueField = "title"
	FieldStatus    IssueField = "status"
	FieldPriority  IssueField = "priority"
	FieldDueDate   IssueField = "due_date"
)

// Order is one ORDER BY term.
type Order struct {
	Field IssueField
	Desc  bool
}

// IssueQuery is a storage-neutral issue predicate plus ordering and paging.
// Zero-valued fields do not constrain the result.
type IssueQuery struct {
	TeamID         string
	OrganizationID string
	// IssueIDs restricts the result to these ids when non-nil; an empty non-nil slice matches nothing.
	IssueIDs  []string
	Search    string
	Status    domain.IssueStatus
	Priority  domain.IssuePriority
	Assignee  domain.Optional[*string]
	DueBefore *time.Time
	DueAfter  *time.Time
	OrderBy   []Order
	// Limit 0 means unlimited.
	Limit  int
	Offset int
}

// IssueChanges is the set of columns an update writes. Only Set fields are written.
type IssueChanges struct {
	Title       domain.Optional[string]
	Description domain.Optional[*string]
	Status      domain.Optional[domain.IssueStatus]
	Priority    domain.Optional[domain.IssuePriority]
	AssigneeID  domain.Optional[*string]
	DueDate     domain.Optional[*time.Time]
	Position    domain.Optional[int]
	UpdatedAt   time.Time
}

// Empty reports whether no column would be written.
func (c IssueChanges) Empty() bool {
	return !c.Title.Set && !c.Description.Set && !c.Status.Set && !c.Priority.Set &&
		!c.AssigneeID.Set && !c.DueDate.Set && !c.Position.Set
}
