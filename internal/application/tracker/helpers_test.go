package tracker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/persistence/memory"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
	org1  = "org-1"
	org2  = "org-2"
	team1 = "team-1"
	team2 = "team-2"
)

// fixture: alice belongs to org-1 (team-1), bob to org-2 (team-2).
func newFixture(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddOrganization(domain.Organization{ID: org1, Name: "Acme"})
	store.AddOrganization(domain.Organization{ID: org2, Name: "Globex"})
	require.NoError(t, store.AddTeam(domain.Team{ID: team1, OrganizationID: org1, Name: "Core"}))
	require.NoError(t, store.AddTeam(domain.Team{ID: team2, OrganizationID: org2, Name: "Ops"}))
	require.NoError(t, store.AddMember(domain.Membership{OrganizationID: org1, UserID: alice, Role: "owner"}))
	require.NoError(t, store.AddMember(domain.Membership{OrganizationID: org2, UserID: bob, Role: "member"}))

	clock := &tickClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	seq := 0
	svc := NewService(store, zerolog.Nop(),
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	)
	return svc, store
}

// tickClock advances one second per reading so every write gets a distinct timestamp.
type tickClock struct {
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func mustCreate(t *testing.T, svc *Service, team string, in CreateIssueInput) *domain.Issue {
	t.Helper()
	org := org1
	identity := alice
	if team == team2 {
		org, identity = org2, bob
	}
	issue, err := svc.CreateIssue(context.Background(), identity, org, team, in)
	require.NoError(t, err)
	return issue
}

func titles(issues []*domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Title)
	}
	return out
}

func strPtr(s string) *string { return &s }

// MockStore is a testify mock of ports.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) IsMember(ctx context.Context, orgID, userID string) (bool, error) {
	args := m.Called(ctx, orgID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GetTeam(ctx context.Context, orgID, teamID string) (*domain.Team, error) {
	args := m.Called(ctx, orgID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockStore) MaxPosition(ctx context.Context, teamID string) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CreateIssue(ctx context.Context, issue *domain.Issue) error {
	return m.Called(ctx, issue).Error(0)
}

func (m *MockStore) GetIssue(ctx context.Context, teamID, issueID string) (*domain.Issue, error) {
	args := m.Called(ctx, teamID, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *MockStore) UpdateIssue(ctx context.Context, teamID, issueID string, changes ports.IssueChanges) error {
	return m.Called(ctx, teamID, issueID, changes).Error(0)
}

func (m *MockStore) DeleteIssue(ctx context.Context, teamID, issueID string) error {
	return m.Called(ctx, teamID, issueID).Error(0)
}

func (m *MockStore) FindIssues(ctx context.Context, q ports.IssueQuery) ([]*domain.Issue, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Issue), args.Error(1)
}

func (m *MockStore) CountIssues(ctx context.Context, q ports.IssueQuery) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListLabels(ctx context.Context, teamID string) ([]*domain.Label, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Label), args.Error(1)
}

func (m *MockStore) CreateLabel(ctx context.Context, label *domain.Label) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockStore) GetLabel(ctx context.Context, teamID, labelID string) (*domain.Label, error) {
	args := m.Called(ctx, teamID, labelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Label), args.Error(1)
}

func (m *MockStore) IssueIDsWithLabels(ctx context.Context, labelIDs []string) ([]string, error) {
	args := m.Called(ctx, labelIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) LabelIDsByIssue(ctx context.Context, issueIDs []string) (map[string][]string, error) {
	args := m.Called(ctx, issueIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *MockStore) AddIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	return m.Called(ctx, issueID, labelIDs).Error(0)
}

func (m *MockStore) ReplaceIssueLabels(ctx context.Context, issueID string, labelIDs []string) error {
	return m.Called(ctx, issueID, labelIDs).Error(0)
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(tx ports.Store) error) error {
	m.Called(ctx)
	return fn(m)
}

var _ ports.Store = (*MockStore)(nil)
