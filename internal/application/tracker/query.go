package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
)

// IssueFilters narrows an issue listing. Every set field is ANDed with the others.
type IssueFilters struct {
	// Search is a case-insensitive substring of title or description.
	Search   string
	Status   domain.IssueStatus
	Priority domain.IssuePriority
	// Assignee with Set and a nil Value matches unassigned issues.
	Assignee  domain.Optional[*string]
	DueBefore *time.Time
	DueAfter  *time.Time
	// LabelIDs matches issues carrying any of the labels.
	LabelIDs []string
	// Sort is "<field>:<asc|desc>"; see ParseSort.
	Sort    string
	Page    int
	PerPage int
}

// IssuePage is one page of a team listing. TotalCount covers the whole filtered set.
type IssuePage struct {
	Data       []*domain.Issue
	TotalCount int64
	Page       int
	PerPage    int
}

var sortFields = map[string]ports.IssueField{
	"createdAt":  ports.FieldCreatedAt,
	"created_at": ports.FieldCreatedAt,
	"title":      ports.FieldTitle,
	"status":     ports.FieldStatus,
	"priority":   ports.FieldPriority,
	"dueDate":    ports.FieldDueDate,
	"due_date":   ports.FieldDueDate,
}

// DefaultOrder is the manual ordering used when no recognized sort is requested.
func DefaultOrder() []ports.Order {
	return []ports.Order{
		{Field: ports.FieldPosition},
		{Field: ports.FieldCreatedAt},
	}
}

// ParseSort turns "field:direction" into a single ordering term. Unknown or empty fields yield
// DefaultOrder; a direction other than "desc" sorts ascending.
func ParseSort(sort string) []ports.Order {
	field, dir, _ := strings.Cut(strings.TrimSpace(sort), ":")
	f, ok := sortFields[strings.TrimSpace(field)]
	if !ok {
		return DefaultOrder()
	}
	return []ports.Order{{Field: f, Desc: strings.EqualFold(strings.TrimSpace(dir), "desc")}}
}

// Paginate clamps page to >= 1 and perPage to [1, MaxPerPage]; a zero perPage takes defaultPerPage.
func Paginate(page, perPage, defaultPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// pastLastPage reports whether page starts beyond the total, without computing an offset that could overflow.
func pastLastPage(page, perPage int, total int64) bool {
	if page <= 1 {
		return false
	}
	pages := (total + int64(perPage) - 1) / int64(perPage)
	return int64(page-1) >= pages
}

func filterQuery(f IssueFilters) ports.IssueQuery {
	return ports.IssueQuery{
		Search:    f.Search,
		Status:    f.Status,
		Priority:  f.Priority,
		Assignee:  f.Assignee,
		DueBefore: f.DueBefore,
		DueAfter:  f.DueAfter,
	}
}

// ListTeamIssues returns one page of a team's issues and the size of the whole filtered set.
func (s *Service) ListTeamIssues(ctx context.Context, identity, orgID, teamID string, f IssueFilters) (*IssuePage, error) {
	if _, err := s.RequireTeamInOrg(ctx, identity, orgID, teamID); err != nil {
		return nil, err
	}
	page, perPage := Paginate(f.Page, f.PerPage, s.defaultPerPage)
	result := &IssuePage{Data: []*domain.Issue{}, Page: page, PerPage: perPage}

	q := filterQuery(f)
	q.TeamID = teamID
	if len(f.LabelIDs) > 0 {
		ids, err := s.store.IssueIDsWithLabels(ctx, f.LabelIDs)
		if err != nil {
			return nil, storageErr(err, "resolve label filter")
		}
		if len(ids) == 0 {
			return result, nil
		}
		q.IssueIDs = ids
	}

	total, err := s.store.CountIssues(ctx, q)
	if err != nil {
		return nil, storageErr(err, "count issues")
	}
	result.TotalCount = total
	if pastLastPage(page, perPage, total) {
		return result, nil
	}
	q.OrderBy = ParseSort(f.Sort)
	q.Limit = perPage
	q.Offset = (page - 1) * perPage
	issues, err := s.store.FindIssues(ctx, q)
	if err != nil {
		return nil, storageErr(err, "list issues")
	}
	if err := s.attachLabels(ctx, s.store, issues); err != nil {
		return nil, err
	}
	result.Data = issues
	return result, nil
}

// ListMyIssues returns every issue in the organization assigned to the caller, oldest update first.
// A caller-supplied assignee filter is an extra equality on top of the caller's own id.
func (s *Service) ListMyIssues(ctx context.Context, identity, orgID string, f IssueFilters) ([]*domain.Issue, error) {
	userID, err := s.RequireOrgMember(ctx, identity, orgID)
	if err != nil {
		return nil, err
	}
	if f.Assignee.Set && (f.Assignee.Value == nil || *f.Assignee.Value != userID) {
		return []*domain.Issue{}, nil
	}

	q := filterQuery(f)
	q.OrganizationID = orgID
	q.Assignee = domain.Some(&userID)
	q.OrderBy = []ports.Order{{Field: ports.FieldUpdatedAt}}
	issues, err := s.store.FindIssues(ctx, q)
	if err != nil {
		return nil, storageErr(err, "list assigned issues")
	}

	if len(f.LabelIDs) > 0 && len(issues) > 0 {
		ids, err := s.store.IssueIDsWithLabels(ctx, f.LabelIDs)
		if err != nil {
			return nil, storageErr(err, "resolve label filter")
		}
		labeled := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			labeled[id] = struct{}{}
		}
		kept := issues[:0]
		for _, issue := range issues {
			if _, ok := labeled[issue.ID]; ok {
				kept = append(kept, issue)
			}
		}
		issues = kept
	}
	if issues == nil {
		issues = []*domain.Issue{}
	}
	if err := s.attachLabels(ctx, s.store, issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *Service) attachLabels(ctx context.Context, store ports.LabelRepository, issues []*domain.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	ids := make([]string, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.ID)
	}
	byIssue, err := store.LabelIDsByIssue(ctx, ids)
	if err != nil {
		return storageErr(err, "load issue labels")
	}
	for _, issue := range issues {
		labels := byIssue[issue.ID]
		if labels == nil {
			labels = []string{}
		}
		issue.LabelIDs = labels
	}
	return nil
}
