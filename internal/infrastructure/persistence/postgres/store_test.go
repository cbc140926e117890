package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), tt.in)
	}
}

func TestOrderColumnsAppendsID(t *testing.T) {
	cols := orderColumns([]ports.Order{{Field: ports.FieldTitle, Desc: true}})
	assert.Equal(t, []clause.OrderByColumn{
		{Column: clause.Column{Name: "title"}, Desc: true},
		{Column: clause.Column{Name: "id"}},
	}, cols)
}

func TestUpdateColumnsWritesOnlySetFields(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cols := updateColumns(ports.IssueChanges{
		Title:      domain.Some("renamed"),
		AssigneeID: domain.Some[*string](nil),
		UpdatedAt:  now,
	})

	assert.Len(t, cols, 3)
	assert.Equal(t, "renamed", cols["title"])
	assert.Equal(t, now, cols["updated_at"])
	v, ok := cols["assignee_id"]
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = cols["description"]
	assert.False(t, ok)
}

func TestIssueModelRoundTrip(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.FixedZone("x", 3600))
	desc := "body"
	in := &domain.Issue{
		ID:          "i1",
		TeamID:      "t1",
		Title:       "Fix",
		Description: &desc,
		Status:      domain.IssueStatusDone,
		Priority:    domain.IssuePriorityHigh,
		DueDate:     &due,
		Position:    4,
	}
	m := issueModel(in)
	out := issueFromModel(&m)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, domain.IssueStatusDone, out.Status)
	assert.Equal(t, domain.IssuePriorityHigh, out.Priority)
	assert.Equal(t, 4, out.Position)
	assert.Equal(t, time.UTC, out.DueDate.Location())
	assert.True(t, due.Equal(*out.DueDate))
	assert.Nil(t, out.AssigneeID)
}
