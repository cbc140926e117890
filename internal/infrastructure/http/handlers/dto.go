package handlers

import (
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/tracker"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// IssueResponse is the JSON shape of an issue.
type IssueResponse struct {
	ID          string   `json:"id"`
	TeamID      string   `json:"team_id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	AssigneeID  *string  `json:"assignee_id"`
	DueDate     *string  `json:"due_date"`
	Position    int      `json:"position"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	LabelIDs    []string `json:"label_ids"`
}

// IssueListResponse is one page of a team listing.
type IssueListResponse struct {
	Data       []IssueResponse `json:"data"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
}

// LabelResponse is the JSON shape of a label.
type LabelResponse struct {
	ID     string  `json:"id"`
	TeamID string  `json:"team_id"`
	Name   string  `json:"name"`
	Color  *string `json:"color"`
}

type dataResponse struct {
	Data interface{} `json:"data"`
}

func issueResponse(is *domain.Issue) IssueResponse {
	resp := IssueResponse{
		ID:          is.ID,
		TeamID:      is.TeamID,
		Title:       is.Title,
		Description: is.Description,
		Status:      string(is.Status),
		Priority:    string(is.Priority),
		AssigneeID:  is.AssigneeID,
		DueDate:     formatTime(is.DueDate),
		Position:    is.Position,
		CreatedAt:   is.CreatedAt.Format(timeFormat),
		UpdatedAt:   is.UpdatedAt.Format(timeFormat),
		LabelIDs:    is.LabelIDs,
	}
	if resp.LabelIDs == nil {
		resp.LabelIDs = []string{}
	}
	return resp
}

func issueResponses(issues []*domain.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, is := range issues {
		out = append(out, issueResponse(is))
	}
	return out
}

func issuePageResponse(p *tracker.IssuePage) IssueListResponse {
	return IssueListResponse{
		Data:       issueResponses(p.Data),
		TotalCount: p.TotalCount,
		Page:       p.Page,
		PerPage:    p.PerPage,
	}
}

func labelResponse(l *domain.Label) LabelResponse {
	return LabelResponse{ID: l.ID, TeamID: l.TeamID, Name: l.Name, Color: l.Color}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeFormat)
	return &s
}
