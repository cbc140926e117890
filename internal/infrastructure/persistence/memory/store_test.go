package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.AddOrganization(domain.Organization{ID: "org1", Name: "Acme"})
	s.AddOrganization(domain.Organization{ID: "org2", Name: "Other"})
	require.NoError(t, s.AddTeam(domain.Team{ID: "team1", OrganizationID: "org1"}))
	require.NoError(t, s.AddTeam(domain.Team{ID: "team2", OrganizationID: "org2"}))
	require.NoError(t, s.AddMember(domain.Membership{OrganizationID: "org1", UserID: "u1"}))
	return s
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func addIssue(t *testing.T, s *Store, id, team, title string, pos int, due *time.Time) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateIssue(context.Background(), &domain.Issue{
		ID: id, TeamID: team, Title: title,
		Status: domain.IssueStatusTodo, Priority: domain.IssuePriorityMedium,
		Position: pos, DueDate: due,
		CreatedAt: base.Add(time.Duration(pos) * time.Minute),
		UpdatedAt: base.Add(time.Duration(pos) * time.Minute),
	}))
}

func TestMembershipAndTeams(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	ok, err := s.IsMember(ctx, "org1", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.IsMember(ctx, "org2", "u1")
	assert.False(t, ok)

	team, err := s.GetTeam(ctx, "org1", "team1")
	require.NoError(t, err)
	require.NotNil(t, team)
	team, err = s.GetTeam(ctx, "org1", "team2")
	require.NoError(t, err)
	assert.Nil(t, team)

	assert.Error(t, s.AddTeam(domain.Team{ID: "t", OrganizationID: "missing"}))
}

func TestCreateIssueRequiresTeam(t *testing.T) {
	s := seeded(t)
	err := s.CreateIssue(context.Background(), &domain.Issue{ID: "x", TeamID: "nope", Title: "x"})
	assert.Error(t, err)
}

func TestMaxPosition(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	n, err := s.MaxPosition(ctx, "team1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	addIssue(t, s, "a", "team1", "A", 1, nil)
	addIssue(t, s, "b", "team1", "B", 7, nil)
	addIssue(t, s, "c", "team2", "C", 50, nil)
	n, _ = s.MaxPosition(ctx, "team1")
	assert.Equal(t, 7, n)
}

func TestReturnedIssuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	addIssue(t, s, "a", "team1", "A", 1, nil)

	got, err := s.GetIssue(ctx, "team1", "a")
	require.NoError(t, err)
	got.Title = "mutated"

	again, _ := s.GetIssue(ctx, "team1", "a")
	assert.Equal(t, "A", again.Title)

	missing, err := s.GetIssue(ctx, "team2", "a")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateIssueWritesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	addIssue(t, s, "a", "team1", "A", 1, nil)
	require.NoError(t, s.UpdateIssue(ctx, "team1", "a", ports.IssueChanges{
		AssigneeID: domain.Some(strPtr("u1")),
		UpdatedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}))
	got, _ := s.GetIssue(ctx, "team1", "a")
	assert.Equal(t, "A", got.Title)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, "u1", *got.AssigneeID)

	require.NoError(t, s.UpdateIssue(ctx, "team1", "a", ports.IssueChanges{AssigneeID: domain.Some[*string](nil)}))
	got, _ = s.GetIssue(ctx, "team1", "a")
	assert.Nil(t, got.AssigneeID)
}

func TestDeleteIssueDropsLabelLinks(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	addIssue(t, s, "a", "team1", "A", 1, nil)
	require.NoError(t, s.CreateLabel(ctx, &domain.Label{ID: "l1", TeamID: "team1", Name: "bug"}))
	require.NoError(t, s.AddIssueLabels(ctx, "a", []string{"l1"}))

	require.NoError(t, s.DeleteIssue(ctx, "team1", "a"))
	ids, err := s.IssueIDsWithLabels(ctx, []string{"l1"})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	addIssue(t, s, "a", "team1", "Fix login bug", 1, &jan)
	addIssue(t, s, "b", "team1", "Write docs", 2, &feb)
	addIssue(t, s, "c", "team1", "Refactor", 3, nil)
	addIssue(t, s, "d", "team2", "Login page", 4, &jan)
	require.NoError(t, s.UpdateIssue(ctx, "team1", "b", ports.IssueChanges{
		AssigneeID:  domain.Some(strPtr("u1")),
		Description: domain.Some(strPtr("mentions LOGIN flow")),
	}))

	ids := func(q ports.IssueQuery) []string {
		t.Helper()
		q.OrderBy = []ports.Order{{Field: ports.FieldPosition}}
		issues, err := s.FindIssues(ctx, q)
		require.NoError(t, err)
		out := make([]string, 0, len(issues))
		for _, is := range issues {
			out = append(out, is.ID)
		}
		return out
	}

	tests := []struct {
		name string
		q    ports.IssueQuery
		want []string
	}{
		{"team", ports.IssueQuery{TeamID: "team1"}, []string{"a", "b", "c"}},
		{"organization", ports.IssueQuery{OrganizationID: "org2"}, []string{"d"}},
		{"search title or description", ports.IssueQuery{TeamID: "team1", Search: "login"}, []string{"a", "b"}},
		{"unassigned", ports.IssueQuery{TeamID: "team1", Assignee: domain.Some[*string](nil)}, []string{"a", "c"}},
		{"assignee", ports.IssueQuery{TeamID: "team1", Assignee: domain.Some(strPtr("u1"))}, []string{"b"}},
		{"due before excludes null", ports.IssueQuery{TeamID: "team1", DueBefore: timePtr(jan)}, []string{"a"}},
		{"due after", ports.IssueQuery{TeamID: "team1", DueAfter: timePtr(jan.Add(time.Hour))}, []string{"b"}},
		{"id restriction", ports.IssueQuery{TeamID: "team1", IssueIDs: []string{"c", "d"}}, []string{"c"}},
		{"empty id restriction", ports.IssueQuery{TeamID: "team1", IssueIDs: []string{}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.q))
		})
	}
}

func TestOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	addIssue(t, s, "a", "team1", "Bravo", 1, &feb)
	addIssue(t, s, "b", "team1", "Alpha", 2, nil)
	addIssue(t, s, "c", "team1", "Charlie", 3, &jan)

	order := func(o ports.Order, limit, offset int) []string {
		t.Helper()
		issues, err := s.FindIssues(ctx, ports.IssueQuery{TeamID: "team1", OrderBy: []ports.Order{o}, Limit: limit, Offset: offset})
		require.NoError(t, err)
		out := make([]string, 0, len(issues))
		for _, is := range issues {
			out = append(out, is.ID)
		}
		return out
	}

	assert.Equal(t, []string{"b", "a", "c"}, order(ports.Order{Field: ports.FieldTitle}, 0, 0))
	assert.Equal(t, []string{"c", "a", "b"}, order(ports.Order{Field: ports.FieldTitle, Desc: true}, 0, 0))
	assert.Equal(t, []string{"c", "a", "b"}, order(ports.Order{Field: ports.FieldDueDate}, 0, 0))
	assert.Equal(t, []string{"b", "a", "c"}, order(ports.Order{Field: ports.FieldDueDate, Desc: true}, 0, 0))
	assert.Equal(t, []string{"b"}, order(ports.Order{Field: ports.FieldPosition}, 1, 1))
	assert.Empty(t, order(ports.Order{Field: ports.FieldPosition}, 2, 5))

	n, err := s.CountIssues(ctx, ports.IssueQuery{TeamID: "team1"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestLabels(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	addIssue(t, s, "a", "team1", "A", 1, nil)
	addIssue(t, s, "b", "team1", "B", 2, nil)
	require.NoError(t, s.CreateLabel(ctx, &domain.Label{ID: "l2", TeamID: "team1", Name: "feature"}))
	require.NoError(t, s.CreateLabel(ctx, &domain.Label{ID: "l1", TeamID: "team1", Name: "bug", Color: strPtr("#f00")}))
	require.NoError(t, s.CreateLabel(ctx, &domain.Label{ID: "l3", TeamID: "team2", Name: "other"}))

	labels, err := s.ListLabels(ctx, "team1")
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "bug", labels[0].Name)
	assert.Equal(t, "#f00", *labels[0].Color)

	require.NoError(t, s.AddIssueLabels(ctx, "a", []string{"l1", "l2"}))
	require.NoError(t, s.AddIssueLabels(ctx, "b", []string{"l2"}))
	assert.Error(t, s.AddIssueLabels(ctx, "a", []string{"l1"}), "duplicate link")
	assert.Error(t, s.AddIssueLabels(ctx, "a", []string{"missing"}))

	ids, err := s.IssueIDsWithLabels(ctx, []string{"l1", "l2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, s.ReplaceIssueLabels(ctx, "a", []string{"l2"}))
	byIssue, err := s.LabelIDsByIssue(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"a": {"l2"}, "b": {"l2"}}, byIssue)

	require.NoError(t, s.ReplaceIssueLabels(ctx, "a", nil))
	byIssue, _ = s.LabelIDsByIssue(ctx, []string{"a"})
	assert.Empty(t, byIssue)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx ports.Store) error {
		require.NoError(t, tx.CreateIssue(ctx, &domain.Issue{ID: "a", TeamID: "team1", Title: "A", Position: 1}))
		return tx.AddIssueLabels(ctx, "a", []string{"missing"})
	})
	require.Error(t, err)

	got, err := s.GetIssue(ctx, "team1", "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	err = s.WithinTx(ctx, func(tx ports.Store) error {
		require.NoError(t, tx.CreateIssue(ctx, &domain.Issue{ID: "b", TeamID: "team1", Title: "B", Position: 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	n, _ := s.CountIssues(ctx, ports.IssueQuery{TeamID: "team1"})
	assert.Zero(t, n)

	require.NoError(t, s.WithinTx(ctx, func(tx ports.Store) error {
		return tx.CreateIssue(ctx, &domain.Issue{ID: "c", TeamID: "team1", Title: "C", Position: 1})
	}))
	got, _ = s.GetIssue(ctx, "team1", "c")
	assert.NotNil(t, got)
}
