package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/rejoanahmed/starter-template-sub001/internal/application/ports"
	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

// CreateIssueInput describes a new issue. Empty Status and Priority take the todo/medium defaults.
type CreateIssueInput struct {
	Title       string
	Description *string
	Status      domain.IssueStatus
	Priority    domain.IssuePriority
	AssigneeID  *string
	DueDate     *time.Time
	LabelIDs    []string
}

// UpdateIssueInput is a presence-based patch: only Set fields are written. Setting Description,
// AssigneeID or DueDate to nil clears them. LabelIDs, when Set, replaces the whole label set.
type UpdateIssueInput struct {
	Title       domain.Optional[string]
	Description domain.Optional[*string]
	Status      domain.Optional[domain.IssueStatus]
	Priority    domain.Optional[domain.IssuePriority]
	AssigneeID  domain.Optional[*string]
	DueDate     domain.Optional[*time.Time]
	Position    domain.Optional[int]
	LabelIDs    domain.Optional[[]string]
}

func (in UpdateIssueInput) changes() ports.IssueChanges {
	return ports.IssueChanges{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
		Position:    in.Position,
	}
}

// GetIssue returns one issue of the team.
func (s *Service) GetIssue(ctx context.Context, identity, orgID, teamID, issueID string) (*domain.Issue, error) {
	if _, err := s.RequireTeamInOrg(ctx, identity, orgID, teamID); err != nil {
		return nil, err
	}
	issue, err := s.store.GetIssue(ctx, teamID, issueID)
	if err != nil {
		return nil, storageErr(err, "load issue")
	}
	if issue == nil {
		return nil, domerrors.NewNotFound(resourceIssue, issueID)
	}
	if err := s.attachLabels(ctx, s.store, []*domain.Issue{issue}); err != nil {
		return nil, err
	}
	return issue, nil
}

// CreateIssue inserts an issue at the end of the team's manual order together with its label links.
// Both writes share one transaction.
func (s *Service) CreateIssue(ctx context.Context, identity, orgID, teamID string, in CreateIssueInput) (*domain.Issue, error) {
	if _, err := s.RequireTeamInOrg(ctx, identity, orgID, teamID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = domain.IssueStatusTodo
	}
	if in.Priority == "" {
		in.Priority = domain.IssuePriorityMedium
	}
	if err := validateIssue(in.Title, in.Status, in.Priority); err != nil {
		return nil, err
	}

	labelIDs := uniqueIDs(in.LabelIDs)
	if err := s.checkLabels(ctx, teamID, labelIDs); err != nil {
		return nil, err
	}

	now := s.timestamp()
	issue := &domain.Issue{
		ID:          s.newID(),
		TeamID:      teamID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		maxPos, err := tx.MaxPosition(ctx, teamID)
		if err != nil {
			return storageErr(err, "compute issue position")
		}
		issue.Position = maxPos + 1
		if err := tx.CreateIssue(ctx, issue); err != nil {
			return storageErr(err, "insert issue")
		}
		if len(labelIDs) > 0 {
			if err := tx.AddIssueLabels(ctx, issue.ID, labelIDs); err != nil {
				return storageErr(err, "insert issue labels")
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "create issue")
	}
	s.publish(ctx, ports.EventIssueCreated, identity, orgID, teamID, issue.ID)
	return s.reload(ctx, teamID, issue.ID)
}

// UpdateIssue applies a patch to an issue owned by teamID. When the patch names no column the row
// write is skipped and the current row is returned.
func (s *Service) UpdateIssue(ctx context.Context, identity, orgID, teamID, issueID string, in UpdateIssueInput) (*domain.Issue, error) {
	if err := s.requireIssue(ctx, identity, orgID, teamID, issueID); err != nil {
		return nil, err
	}
	if err := validatePatch(in); err != nil {
		return nil, err
	}
	var labelIDs []string
	if in.LabelIDs.Set {
		labelIDs = uniqueIDs(in.LabelIDs.Value)
		if err := s.checkLabels(ctx, teamID, labelIDs); err != nil {
			return nil, err
		}
	}

	changes := in.changes()
	if !changes.Empty() || in.LabelIDs.Set {
		if !changes.Empty() {
			changes.UpdatedAt = s.timestamp()
		}
		err := s.store.WithinTx(ctx, func(tx ports.Store) error {
			if !changes.Empty() {
				if err := tx.UpdateIssue(ctx, teamID, issueID, changes); err != nil {
					return storageErr(err, "update issue")
				}
			}
			if in.LabelIDs.Set {
				if err := tx.ReplaceIssueLabels(ctx, issueID, labelIDs); err != nil {
					return storageErr(err, "replace issue labels")
				}
			}
			return nil
		})
		if err != nil {
			return nil, storageErr(err, "update issue")
		}
		s.publish(ctx, ports.EventIssueUpdated, identity, orgID, teamID, issueID)
	}
	return s.reload(ctx, teamID, issueID)
}

// DeleteIssue removes an issue owned by teamID. Label links go with it at the storage layer.
func (s *Service) DeleteIssue(ctx context.Context, identity, orgID, teamID, issueID string) error {
	if err := s.requireIssue(ctx, identity, orgID, teamID, issueID); err != nil {
		return err
	}
	if err := s.store.DeleteIssue(ctx, teamID, issueID); err != nil {
		return storageErr(err, "delete issue")
	}
	s.publish(ctx, ports.EventIssueDeleted, identity, orgID, teamID, issueID)
	return nil
}

// requireIssue runs the cascade and checks issueID exists inside teamID in one predicate.
func (s *Service) requireIssue(ctx context.Context, identity, orgID, teamID, issueID string) error {
	if _, err := s.RequireTeamInOrg(ctx, identity, orgID, teamID); err != nil {
		return err
	}
	existing, err := s.store.GetIssue(ctx, teamID, issueID)
	if err != nil {
		return storageErr(err, "load issue")
	}
	if existing == nil {
		return domerrors.NewNotFound(resourceIssue, issueID)
	}
	return nil
}

func (s *Service) reload(ctx context.Context, teamID, issueID string) (*domain.Issue, error) {
	issue, err := s.store.GetIssue(ctx, teamID, issueID)
	if err != nil {
		return nil, storageErr(err, "reload issue")
	}
	if issue == nil {
		s.log.Error().Str("team_id", teamID).Str("issue_id", issueID).Msg("issue missing after write")
		return nil, domerrors.NewInternal("issue missing after write", nil)
	}
	if err := s.attachLabels(ctx, s.store, []*domain.Issue{issue}); err != nil {
		return nil, err
	}
	return issue, nil
}

// checkLabels rejects label ids that do not belong to teamID, so an issue never links another team's label.
func (s *Service) checkLabels(ctx context.Context, teamID string, labelIDs []string) error {
	var errs []domerrors.FieldError
	for _, id := range labelIDs {
		label, err := s.store.GetLabel(ctx, teamID, id)
		if err != nil {
			return storageErr(err, "load label")
		}
		if label == nil {
			errs = append(errs, domerrors.FieldError{Field: "label_ids", Message: "unknown label " + id})
		}
	}
	if len(errs) > 0 {
		return domerrors.NewValidation(errs...)
	}
	return nil
}

func validateIssue(title string, status domain.IssueStatus, priority domain.IssuePriority) error {
	return fieldErrors(checkTitle(title), checkStatus(status), checkPriority(priority))
}

func validatePatch(in UpdateIssueInput) error {
	var checks []*domerrors.FieldError
	if in.Title.Set {
		checks = append(checks, checkTitle(in.Title.Value))
	}
	if in.Status.Set {
		checks = append(checks, checkStatus(in.Status.Value))
	}
	if in.Priority.Set {
		checks = append(checks, checkPriority(in.Priority.Value))
	}
	return fieldErrors(checks...)
}

func checkTitle(title string) *domerrors.FieldError {
	if strings.TrimSpace(title) == "" {
		return &domerrors.FieldError{Field: "title", Message: "is required"}
	}
	return nil
}

func checkStatus(status domain.IssueStatus) *domerrors.FieldError {
	if !status.Valid() {
		return &domerrors.FieldError{Field: "status", Message: "must be one of todo, in_progress, done"}
	}
	return nil
}

func checkPriority(priority domain.IssuePriority) *domerrors.FieldError {
	if !priority.Valid() {
		return &domerrors.FieldError{Field: "priority", Message: "must be one of high, medium, low"}
	}
	return nil
}

func fieldErrors(checks ...*domerrors.FieldError) error {
	var errs []domerrors.FieldError
	for _, fe := range checks {
		if fe != nil {
			errs = append(errs, *fe)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return domerrors.NewValidation(errs...)
}

// uniqueIDs drops empty and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
