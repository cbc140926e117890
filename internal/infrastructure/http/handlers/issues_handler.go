package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/tracker"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
	"github.com/rejoanahmed/starter-template-sub001/internal/infrastructure/http/middleware"
)

// IssuesHandler serves the issue routes under /organizations/{orgID}.
type IssuesHandler struct {
	svc *tracker.Service
	log zerolog.Logger
}

// NewIssuesHandler creates a handler for issue endpoints.
func NewIssuesHandler(svc *tracker.Service, log zerolog.Logger) *IssuesHandler {
	return &IssuesHandler{svc: svc, log: log}
}

type createIssueRequest struct {
	Title       string   `json:"title" validate:"max=500"`
	Description *string  `json:"description" validate:"omitempty,max=20000"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	AssigneeID  *string  `json:"assignee_id" validate:"omitempty,max=64"`
	DueDate     *string  `json:"due_date"`
	LabelIDs    []string `json:"label_ids" validate:"omitempty,dive,max=64"`
}

// ListMine handles GET /organizations/{orgID}/issues/mine.
func (h *IssuesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	f, err := parseIssueFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, "list_my_issues", err)
		return
	}
	issues, err := h.svc.ListMyIssues(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "orgID"), f)
	middleware.RecordOperation("list_my_issues", err)
	if err != nil {
		writeError(w, r, h.log, "list_my_issues", err)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: issueResponses(issues)})
}

// List handles GET /organizations/{orgID}/teams/{teamID}/issues.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseIssueFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, "list_team_issues", err)
		return
	}
	page, err := h.svc.ListTeamIssues(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), f)
	middleware.RecordOperation("list_team_issues", err)
	if err != nil {
		writeError(w, r, h.log, "list_team_issues", err)
		return
	}
	writeJSON(w, http.StatusOK, issuePageResponse(page))
}

// Get handles GET .../issues/{issueID}.
func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	issue, err := h.svc.GetIssue(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), chi.URLParam(r, "issueID"))
	middleware.RecordOperation("get_issue", err)
	if err != nil {
		writeError(w, r, h.log, "get_issue", err)
		return
	}
	writeJSON(w, http.StatusOK, issueResponse(issue))
}

// Create handles POST .../issues. Status and priority default to todo and medium.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, r, h.log, "create_issue", err)
		return
	}
	in := tracker.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.IssueStatus(req.Status),
		Priority:    domain.IssuePriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		LabelIDs:    req.LabelIDs,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			writeError(w, r, h.log, "create_issue", invalidDueDate())
			return
		}
		in.DueDate = &due
	}

	issue, err := h.svc.CreateIssue(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), in)
	middleware.RecordOperation("create_issue", err)
	if err != nil {
		writeError(w, r, h.log, "create_issue", err)
		return
	}
	writeJSON(w, http.StatusCreated, issueResponse(issue))
}

// Update handles PATCH .../issues/{issueID}. Only keys present in the body are changed; null clears
// description, assignee_id and due_date, and a null or empty label_ids removes every label.
func (h *IssuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		writeDecodeError(w, err)
		return
	}
	in, err := parsePatch(raw)
	if err != nil {
		writeError(w, r, h.log, "update_issue", err)
		return
	}

	issue, err := h.svc.UpdateIssue(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), chi.URLParam(r, "issueID"), in)
	middleware.RecordOperation("update_issue", err)
	if err != nil {
		writeError(w, r, h.log, "update_issue", err)
		return
	}
	writeJSON(w, http.StatusOK, issueResponse(issue))
}

// Delete handles DELETE .../issues/{issueID}.
func (h *IssuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteIssue(r.Context(), middleware.UserIDFromContext(r.Context()),
		chi.URLParam(r, "orgID"), chi.URLParam(r, "teamID"), chi.URLParam(r, "issueID"))
	middleware.RecordOperation("delete_issue", err)
	if err != nil {
		writeError(w, r, h.log, "delete_issue", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parsePatch decodes each known key on its own so that presence and null stay distinguishable.
// Unknown keys are ignored.
func parsePatch(raw map[string]json.RawMessage) (tracker.UpdateIssueInput, error) {
	var (
		in   tracker.UpdateIssueInput
		errs []domerrors.FieldError
	)
	bad := func(field, msg string) {
		errs = append(errs, domerrors.FieldError{Field: field, Message: msg})
	}

	if v, ok := raw["title"]; ok {
		var s string
		if isNull(v) || json.Unmarshal(v, &s) != nil {
			bad("title", "must be a string")
		} else if len(s) > 500 {
			bad("title", "must be at most 500 characters")
		} else {
			in.Title = domain.Some(s)
		}
	}
	if v, ok := raw["description"]; ok {
		s, err := nullableString(v)
		if err != nil {
			bad("description", "must be a string or null")
		} else {
			in.Description = domain.Some(s)
		}
	}
	if v, ok := raw["status"]; ok {
		var s string
		if isNull(v) || json.Unmarshal(v, &s) != nil {
			bad("status", "must be a string")
		} else {
			in.Status = domain.Some(domain.IssueStatus(s))
		}
	}
	if v, ok := raw["priority"]; ok {
		var s string
		if isNull(v) || json.Unmarshal(v, &s) != nil {
			bad("priority", "must be a string")
		} else {
			in.Priority = domain.Some(domain.IssuePriority(s))
		}
	}
	if v, ok := raw["assignee_id"]; ok {
		s, err := nullableString(v)
		if err != nil {
			bad("assignee_id", "must be a string or null")
		} else {
			in.AssigneeID = domain.Some(s)
		}
	}
	if v, ok := raw["due_date"]; ok {
		s, err := nullableString(v)
		switch {
		case err != nil:
			bad("due_date", "must be a string or null")
		case s == nil:
			in.DueDate = domain.Some[*time.Time](nil)
		default:
			due, err := parseDate(*s)
			if err != nil {
				bad("due_date", "must be an RFC 3339 timestamp or YYYY-MM-DD")
			} else {
				in.DueDate = domain.Some(&due)
			}
		}
	}
	if v, ok := raw["position"]; ok {
		var n int
		if isNull(v) || json.Unmarshal(v, &n) != nil {
			bad("position", "must be an integer")
		} else {
			in.Position = domain.Some(n)
		}
	}
	if v, ok := raw["label_ids"]; ok {
		ids := []string{}
		if !isNull(v) && json.Unmarshal(v, &ids) != nil {
			bad("label_ids", "must be an array of strings or null")
		} else {
			in.LabelIDs = domain.Some(ids)
		}
	}

	if len(errs) > 0 {
		return tracker.UpdateIssueInput{}, domerrors.NewValidation(errs...)
	}
	return in, nil
}

func isNull(v json.RawMessage) bool {
	return string(v) == "null"
}

func nullableString(v json.RawMessage) (*string, error) {
	if isNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func invalidDueDate() error {
	return domerrors.NewValidation(domerrors.FieldError{Field: "due_date", Message: "must be an RFC 3339 timestamp or YYYY-MM-DD"})
}
