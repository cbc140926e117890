package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/tracker"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

const dateOnly = "2006-01-02"

// parseIssueFilters reads listing filters from the query string. Every bad parameter is reported at once.
func parseIssueFilters(q url.Values) (tracker.IssueFilters, error) {
	var (
		f    tracker.IssueFilters
		errs []domerrors.FieldError
	)
	f.Search = strings.TrimSpace(q.Get("search"))
	f.Sort = q.Get("sort")

	if s := q.Get("status"); s != "" {
		f.Status = domain.IssueStatus(s)
		if !f.Status.Valid() {
			errs = append(errs, domerrors.FieldError{Field: "status", Message: "must be one of todo, in_progress, done"})
		}
	}
	if p := q.Get("priority"); p != "" {
		f.Priority = domain.IssuePriority(p)
		if !f.Priority.Valid() {
			errs = append(errs, domerrors.FieldError{Field: "priority", Message: "must be one of high, medium, low"})
		}
	}
	if _, ok := q["assignee_id"]; ok {
		f.Assignee = domain.Some(nullableParam(q.Get("assignee_id")))
	}
	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"due_before", &f.DueBefore}, {"due_after", &f.DueAfter}} {
		raw := q.Get(bound.name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			errs = append(errs, domerrors.FieldError{Field: bound.name, Message: "must be an RFC 3339 timestamp or YYYY-MM-DD"})
			continue
		}
		*bound.dst = &t
	}
	if raw := q.Get("label_ids"); raw != "" {
		f.LabelIDs = splitIDs(raw)
	}
	for _, n := range []struct {
		name string
		dst  *int
	}{{"page", &f.Page}, {"per_page", &f.PerPage}} {
		raw := q.Get(n.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, domerrors.FieldError{Field: n.name, Message: "must be an integer"})
			continue
		}
		*n.dst = v
	}

	if len(errs) > 0 {
		return tracker.IssueFilters{}, domerrors.NewValidation(errs...)
	}
	return f, nil
}

// nullableParam maps "" and "null" to nil.
func nullableParam(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// parseDate accepts RFC 3339 or a bare date, which is taken as midnight UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func splitIDs(raw string) []string {
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
