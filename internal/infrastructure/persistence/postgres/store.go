package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/persistence/db"
)

// Store implements ports.Store over gorm. A Store built by WithinTx is bound to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&db.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetTeam(ctx context.Context, orgID, teamID string) (*domain.Team, error) {
	var m db.Team
	err := s.db.WithContext(ctx).Where("id = ? AND organization_id = ?", teamID, orgID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Team{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		CreatedAt:      m.CreatedAt,
	}, nil
}

func (s *Store) MaxPosition(ctx context.Context, teamID string) (int, error) {
	var maxPos int
	err := s.db.WithContext(ctx).Model(&db.Issue{}).
		Where("team_id = ?", teamID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	return maxPos, err
}

func (s *Store) CreateIssue(ctx context.Context, issue *domain.Issue) error {
	m := issueModel(issue)
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) GetIssue(ctx context.Context, teamID, issueID string) (*domain.Issue, error) {
	var m db.Issue
	err := s.db.WithContext(ctx).Where("id = ? AND team_id = ?", issueID, teamID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return issueFromModel(&m), nil
}

func (s *Store) UpdateIssue(ctx context.Context, teamID, issueID string, c ports.IssueChanges) error {
	return s.db.WithContext(ctx).Model(&db.Issue{}).
		Where("id = ? AND team_id = ?", issueID, teamID).
		Updates(updateColumns(c)).Error
}

func (s *Store) DeleteIssue(ctx context.Context, teamID, issueID string) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND team_id = ?", issueID, teamID).
		Delete(&db.Issue{}).Error
}

func (s *Store) FindIssues(ctx context.Context, q ports.IssueQuery) ([]*domain.Issue, error) {
	tx := applyQuery(s.db.WithContext(ctx).Model(&db.Issue{}), q)
	for _, col := range orderColumns(q.OrderBy) {
		tx = tx.Order(col)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var rows []db.Issue
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Issue, 0, len(rows))
	for i := range rows {
		out = append(out, issueFromModel(&rows[i]))
	}
	return out, nil
}

func (s *Store) CountIssues(ctx context.Context, q ports.IssueQuery) (int64, error) {
	var n int64
	err := applyQuery(s.db.WithContext(ctx).Model(&db.Issue{}), q).Count(&n).Error
	return n, err
}

func (s *Store) ListLabels(ctx context.Context, teamID string) ([]*domain.Label, error) {
	var rows []db.Label
	if err := s.db.WithContext(ctx).Where("team_id = ?", teamID).Order("name, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Label, 0, len(rows))
	for i := range rows {
		out = append(out, labelFromModel(&rows[i]))
	}
	return out, nil
}

func (s *Store) CreateLabel(ctx context.Context, label *domain.Label) error {
	m := db.Label{ID: label.ID, TeamID: label.TeamID, Name: label.Name, Color: label.Color}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) GetLabel(ctx context.Context, teamID, labelID string) (*domain.Label, error) {
	var m db.Label
	err := s.db.WithContext(ctx).Where("id = ? AND team_id = ?", labelID, teamID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return labelFromModel(&m), nil
}

func (s *Store) IssueIDsWithLabels(ctx context.Context, labelIDs []string) ([]string, error) {
	ids := make([]string, 0)
	if len(labelIDs) == 0 {
		return ids, nil
	}
	err := s.db.WithContext(ctx).Model(&db.IssueLabel{}).
		Where("label_id IN ?", labelIDs).
		Distinct("issue_id").
		Order("issue_id").
		Pluck("issue_id", &ids).Error
	return ids, err
}

func (s *Store) LabelIDsByIssue(ctx context.Context, issueIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(issueIDs))
	if len(issueIDs) == 0 {
		return out, nil
	}
	var rows []db.IssueLabel
	err := s.db.WithContext(ctx).
		Where("issue_id IN ?", issueIDs).
		Order("issue_id, label_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.IssueID] = append(out[r.IssueID], r.LabelID)
	}
	return out, nil
}

func (s *Store) AddIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	if len(labelIDs) == 0 {
		return nil
	}
	rows := make([]db.IssueLabel, 0, len(labelIDs))
	for _, id := range labelIDs {
		rows = append(rows, db.IssueLabel{IssueID: issueID, LabelID: id})
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *Store) ReplaceIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	if err := s.db.WithContext(ctx).Where("issue_id = ?", issueID).Delete(&db.IssueLabel{}).Error; err != nil {
		return err
	}
	return s.AddIssueLabels(ctx, issueID, labelIDs)
}

// applyQuery adds the WHERE clauses of q. Ordering and paging are left to the caller.
func applyQuery(tx *gorm.DB, q ports.IssueQuery) *gorm.DB {
	if q.TeamID != "" {
		tx = tx.Where("team_id = ?", q.TeamID)
	}
	if q.OrganizationID != "" {
		tx = tx.Where("team_id IN (SELECT id FROM teams WHERE organization_id = ?)", q.OrganizationID)
	}
	if q.IssueIDs != nil {
		if len(q.IssueIDs) == 0 {
			tx = tx.Where("1 = 0")
		} else {
			tx = tx.Where("id IN ?", q.IssueIDs)
		}
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		tx = tx.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", string(q.Status))
	}
	if q.Priority != "" {
		tx = tx.Where("priority = ?", string(q.Priority))
	}
	if q.Assignee.Set {
		if q.Assignee.Value == nil {
			tx = tx.Where("assignee_id IS NULL")
		} else {
			tx = tx.Where("assignee_id = ?", *q.Assignee.Value)
		}
	}
	if q.DueBefore != nil {
		tx = tx.Where("due_date <= ?", *q.DueBefore)
	}
	if q.DueAfter != nil {
		tx = tx.Where("due_date >= ?", *q.DueAfter)
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using the default backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// orderColumns maps the ordering to columns and appends id so equal keys page deterministically.
func orderColumns(order []ports.Order) []clause.OrderByColumn {
	cols := make([]clause.OrderByColumn, 0, len(order)+1)
	for _, o := range order {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: string(o.Field)}, Desc: o.Desc})
	}
	return append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func updateColumns(c ports.IssueChanges) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": c.UpdatedAt}
	if c.Title.Set {
		cols["title"] = c.Title.Value
	}
	if c.Description.Set {
		cols["description"] = c.Description.Value
	}
	if c.Status.Set {
		cols["status"] = string(c.Status.Value)
	}
	if c.Priority.Set {
		cols["priority"] = string(c.Priority.Value)
	}
	if c.AssigneeID.Set {
		cols["assignee_id"] = c.AssigneeID.Value
	}
	if c.DueDate.Set {
		cols["due_date"] = c.DueDate.Value
	}
	if c.Position.Set {
		cols["position"] = c.Position.Value
	}
	return cols
}

func issueModel(is *domain.Issue) db.Issue {
	return db.Issue{
		ID:          is.ID,
		TeamID:      is.TeamID,
		Title:       is.Title,
		Description: is.Description,
		Status:      string(is.Status),
		Priority:    string(is.Priority),
		AssigneeID:  is.AssigneeID,
		DueDate:     is.DueDate,
		Position:    is.Position,
		CreatedAt:   is.CreatedAt,
		UpdatedAt:   is.UpdatedAt,
	}
}

func issueFromModel(m *db.Issue) *domain.Issue {
	return &domain.Issue{
		ID:          m.ID,
		TeamID:      m.TeamID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.IssueStatus(m.Status),
		Priority:    domain.IssuePriority(m.Priority),
		AssigneeID:  m.AssigneeID,
		DueDate:     utcPtr(m.DueDate),
		Position:    m.Position,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func labelFromModel(m *db.Label) *domain.Label {
	return &domain.Label{ID: m.ID, TeamID: m.TeamID, Name: m.Name, Color: m.Color}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ ports.Store = (*Store)(nil)
