package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
)

type memberKey struct {
	orgID  string
	userID string
}

type issueRow struct {
	issue domain.Issue
	seq   int64
}

type state struct {
	orgs        map[string]domain.Organization
	teams       map[string]domain.Team
	members     map[memberKey]domain.Membership
	issues      map[string]issueRow
	labels      map[string]domain.Label
	issueLabels map[string]map[string]struct{}
	seq         int64
}

func newState() *state {
	return &state{
		orgs:        make(map[string]domain.Organization),
		teams:       make(map[string]domain.Team),
		members:     make(map[memberKey]domain.Membership),
		issues:      make(map[string]issueRow),
		labels:      make(map[string]domain.Label),
		issueLabels: make(map[string]map[string]struct{}),
	}
}

func (st *state) clone() *state {
	c := newState()
	c.seq = st.seq
	for k, v := range st.orgs {
		c.orgs[k] = v
	}
	for k, v := range st.teams {
		c.teams[k] = v
	}
	for k, v := range st.members {
		c.members[k] = v
	}
	for k, v := range st.issues {
		c.issues[k] = v
	}
	for k, v := range st.labels {
		c.labels[k] = v
	}
	for k, set := range st.issueLabels {
		cs := make(map[string]struct{}, len(set))
		for id := range set {
			cs[id] = struct{}{}
		}
		c.issueLabels[k] = cs
	}
	return c
}

// Store is an in-memory ports.Store for single-instance development and tests. Transactions hold
// the write lock for their whole duration and restore a snapshot when the callback fails.
// Deleting an issue drops its label links, mirroring the ON DELETE CASCADE of the SQL schema.
type Store struct {
	mu   *sync.RWMutex
	st   *state
	inTx bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{mu: &sync.RWMutex{}, st: newState()}
}

func (s *Store) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx implements ports.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: s.st, inTx: true}); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}

// AddOrganization seeds an organization.
func (s *Store) AddOrganization(org domain.Organization) {
	defer s.lock()()
	s.st.orgs[org.ID] = org
}

// AddTeam seeds a team. The owning organization must already exist.
func (s *Store) AddTeam(team domain.Team) error {
	defer s.lock()()
	if _, ok := s.st.orgs[team.OrganizationID]; !ok {
		return fmt.Errorf("organization %s does not exist", team.OrganizationID)
	}
	s.st.teams[team.ID] = team
	return nil
}

// AddMember seeds a membership row.
func (s *Store) AddMember(m domain.Membership) error {
	defer s.lock()()
	if _, ok := s.st.orgs[m.OrganizationID]; !ok {
		return fmt.Errorf("organization %s does not exist", m.OrganizationID)
	}
	s.st.members[memberKey{m.OrganizationID, m.UserID}] = m
	return nil
}

func (s *Store) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	defer s.rlock()()
	_, ok := s.st.members[memberKey{orgID, userID}]
	return ok, nil
}

func (s *Store) GetTeam(ctx context.Context, orgID, teamID string) (*domain.Team, error) {
	defer s.rlock()()
	t, ok := s.st.teams[teamID]
	if !ok || t.OrganizationID != orgID {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) MaxPosition(ctx context.Context, teamID string) (int, error) {
	defer s.rlock()()
	maxPos := 0
	for _, row := range s.st.issues {
		if row.issue.TeamID == teamID && row.issue.Position > maxPos {
			maxPos = row.issue.Position
		}
	}
	return maxPos, nil
}

func (s *Store) CreateIssue(ctx context.Context, issue *domain.Issue) error {
	defer s.lock()()
	if _, ok := s.st.teams[issue.TeamID]; !ok {
		return fmt.Errorf("insert issue: team %s does not exist", issue.TeamID)
	}
	if _, ok := s.st.issues[issue.ID]; ok {
		return fmt.Errorf("insert issue: duplicate id %s", issue.ID)
	}
	s.st.seq++
	row := issueRow{issue: copyIssue(*issue), seq: s.st.seq}
	row.issue.LabelIDs = nil
	s.st.issues[issue.ID] = row
	return nil
}

func (s *Store) GetIssue(ctx context.Context, teamID, issueID string) (*domain.Issue, error) {
	defer s.rlock()()
	row, ok := s.st.issues[issueID]
	if !ok || row.issue.TeamID != teamID {
		return nil, nil
	}
	issue := copyIssue(row.issue)
	return &issue, nil
}

func (s *Store) UpdateIssue(ctx context.Context, teamID, issueID string, c ports.IssueChanges) error {
	defer s.lock()()
	row, ok := s.st.issues[issueID]
	if !ok || row.issue.TeamID != teamID {
		return nil
	}
	is := &row.issue
	if c.Title.Set {
		is.Title = c.Title.Value
	}
	if c.Description.Set {
		is.Description = copyString(c.Description.Value)
	}
	if c.Status.Set {
		is.Status = c.Status.Value
	}
	if c.Priority.Set {
		is.Priority = c.Priority.Value
	}
	if c.AssigneeID.Set {
		is.AssigneeID = copyString(c.AssigneeID.Value)
	}
	if c.DueDate.Set {
		is.DueDate = copyTime(c.DueDate.Value)
	}
	if c.Position.Set {
		is.Position = c.Position.Value
	}
	is.UpdatedAt = c.UpdatedAt
	s.st.issues[issueID] = row
	return nil
}

func (s *Store) DeleteIssue(ctx context.Context, teamID, issueID string) error {
	defer s.lock()()
	row, ok := s.st.issues[issueID]
	if !ok || row.issue.TeamID != teamID {
		return nil
	}
	delete(s.st.issues, issueID)
	delete(s.st.issueLabels, issueID)
	return nil
}

func (s *Store) FindIssues(ctx context.Context, q ports.IssueQuery) ([]*domain.Issue, error) {
	defer s.rlock()()
	rows := s.filter(q)
	sortRows(rows, q.OrderBy)
	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	out := make([]*domain.Issue, 0, len(rows))
	for _, row := range rows {
		issue := copyIssue(row.issue)
		out = append(out, &issue)
	}
	return out, nil
}

func (s *Store) CountIssues(ctx context.Context, q ports.IssueQuery) (int64, error) {
	defer s.rlock()()
	return int64(len(s.filter(q))), nil
}

func (s *Store) ListLabels(ctx context.Context, teamID string) ([]*domain.Label, error) {
	defer s.rlock()()
	out := make([]*domain.Label, 0)
	for _, l := range s.st.labels {
		if l.TeamID == teamID {
			label := l
			label.Color = copyString(l.Color)
			out = append(out, &label)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateLabel(ctx context.Context, label *domain.Label) error {
	defer s.lock()()
	if _, ok := s.st.teams[label.TeamID]; !ok {
		return fmt.Errorf("insert label: team %s does not exist", label.TeamID)
	}
	if _, ok := s.st.labels[label.ID]; ok {
		return fmt.Errorf("insert label: duplicate id %s", label.ID)
	}
	l := *label
	l.Color = copyString(label.Color)
	s.st.labels[label.ID] = l
	return nil
}

func (s *Store) GetLabel(ctx context.Context, teamID, labelID string) (*domain.Label, error) {
	defer s.rlock()()
	l, ok := s.st.labels[labelID]
	if !ok || l.TeamID != teamID {
		return nil, nil
	}
	l.Color = copyString(l.Color)
	return &l, nil
}

func (s *Store) IssueIDsWithLabels(ctx context.Context, labelIDs []string) ([]string, error) {
	defer s.rlock()()
	wanted := make(map[string]struct{}, len(labelIDs))
	for _, id := range labelIDs {
		wanted[id] = struct{}{}
	}
	out := make([]string, 0)
	for issueID, set := range s.st.issueLabels {
		for labelID := range set {
			if _, ok := wanted[labelID]; ok {
				out = append(out, issueID)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) LabelIDsByIssue(ctx context.Context, issueIDs []string) (map[string][]string, error) {
	defer s.rlock()()
	out := make(map[string][]string, len(issueIDs))
	for _, issueID := range issueIDs {
		set := s.st.issueLabels[issueID]
		if len(set) == 0 {
			continue
		}
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[issueID] = ids
	}
	return out, nil
}

func (s *Store) AddIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	defer s.lock()()
	return s.st.addIssueLabels(issueID, labelIDs)
}

func (s *Store) ReplaceIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	defer s.lock()()
	delete(s.st.issueLabels, issueID)
	return s.st.addIssueLabels(issueID, labelIDs)
}

func (st *state) addIssueLabels(issueID string, labelIDs []string) error {
	if _, ok := st.issues[issueID]; !ok {
		return fmt.Errorf("insert issue labels: issue %s does not exist", issueID)
	}
	set := st.issueLabels[issueID]
	pending := make(map[string]struct{}, len(labelIDs))
	for _, id := range labelIDs {
		if _, ok := st.labels[id]; !ok {
			return fmt.Errorf("insert issue labels: label %s does not exist", id)
		}
		_, linked := set[id]
		_, repeated := pending[id]
		if linked || repeated {
			return fmt.Errorf("insert issue labels: duplicate link %s/%s", issueID, id)
		}
		pending[id] = struct{}{}
	}
	if len(pending) == 0 {
		return nil
	}
	if set == nil {
		set = make(map[string]struct{}, len(pending))
		st.issueLabels[issueID] = set
	}
	for id := range pending {
		set[id] = struct{}{}
	}
	return nil
}

func (s *Store) filter(q ports.IssueQuery) []issueRow {
	var restrict map[string]struct{}
	if q.IssueIDs != nil {
		restrict = make(map[string]struct{}, len(q.IssueIDs))
		for _, id := range q.IssueIDs {
			restrict[id] = struct{}{}
		}
	}
	search := strings.ToLower(q.Search)
	var out []issueRow
	for _, row := range s.st.issues {
		is := row.issue
		if q.TeamID != "" && is.TeamID != q.TeamID {
			continue
		}
		if q.OrganizationID != "" && s.st.teams[is.TeamID].OrganizationID != q.OrganizationID {
			continue
		}
		if restrict != nil {
			if _, ok := restrict[is.ID]; !ok {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(is.Title), search) &&
			(is.Description == nil || !strings.Contains(strings.ToLower(*is.Description), search)) {
			continue
		}
		if q.Status != "" && is.Status != q.Status {
			continue
		}
		if q.Priority != "" && is.Priority != q.Priority {
			continue
		}
		if q.Assignee.Set {
			if q.Assignee.Value == nil {
				if is.AssigneeID != nil {
					continue
				}
			} else if is.AssigneeID == nil || *is.AssigneeID != *q.Assignee.Value {
				continue
			}
		}
		if q.DueBefore != nil && (is.DueDate == nil || is.DueDate.After(*q.DueBefore)) {
			continue
		}
		if q.DueAfter != nil && (is.DueDate == nil || is.DueDate.Before(*q.DueAfter)) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// sortRows orders rows like PostgreSQL would: NULL due dates sort after every value ascending and
// before every value descending. Insertion order breaks remaining ties.
func sortRows(rows []issueRow, order []ports.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compareField(&rows[i].issue, &rows[j].issue, o.Field)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return rows[i].seq < rows[j].seq
	})
}

func compareField(a, b *domain.Issue, f ports.IssueField) int {
	switch f {
	case ports.FieldPosition:
		return compareInt(a.Position, b.Position)
	case ports.FieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case ports.FieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case ports.FieldTitle:
		return strings.Compare(a.Title, b.Title)
	case ports.FieldStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case ports.FieldPriority:
		return strings.Compare(string(a.Priority), string(b.Priority))
	case ports.FieldDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func copyIssue(is domain.Issue) domain.Issue {
	is.Description = copyString(is.Description)
	is.AssigneeID = copyString(is.AssigneeID)
	is.DueDate = copyTime(is.DueDate)
	if is.LabelIDs != nil {
		is.LabelIDs = append([]string(nil), is.LabelIDs...)
	}
	return is
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

var _ ports.Store = (*Store)(nil)
