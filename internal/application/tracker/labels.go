package tracker

import (
	"context"
	"strings"

	"github.com/rejoanahmed/starter-template-sub001/internal/domain"
	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

// CreateLabelInput describes a new label. Color is optional.
type CreateLabelInput struct {
	Name  string
	Color *string
}

// ListLabels returns every label of the team.
func (s *Service) ListLabels(ctx context.Context, identity, orgID, teamID string) ([]*domain.Label, error) {
	if _, err := s.RequireTeamInOrg(ctx, identity, orgID, teamID); err != nil {
		return nil, err
	}
	labels, err := s.store.ListLabels(ctx, teamID)
	if err != nil {
		return nil, storageErr(err, "list labels")
	}
	if labels == nil {
		labels = []*domain.Label{}
	}
	return labels, nil
}

// CreateLabel inserts a label for the team and returns the stored row.
func (s *Service) CreateLabel(ctx context.Context, identity, orgID, teamID string, in CreateLabelInput) (*domain.Label, error) {
	if _, err := s.RequireTeamInOrg(ctx, identity, orgID, teamID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domerrors.NewValidation(domerrors.FieldError{Field: "name", Message: "is required"})
	}
	label := &domain.Label{
		ID:     s.newID(),
		TeamID: teamID,
		Name:   name,
		Color:  in.Color,
	}
	if err := s.store.CreateLabel(ctx, label); err != nil {
		return nil, storageErr(err, "create label")
	}
	created, err := s.store.GetLabel(ctx, teamID, label.ID)
	if err != nil {
		return nil, storageErr(err, "reload label")
	}
	if created == nil {
		s.log.Error().Str("team_id", teamID).Str("label_id", label.ID).Msg("label missing after write")
		return nil, domerrors.NewInternal("label missing after write", nil)
	}
	return created, nil
}
