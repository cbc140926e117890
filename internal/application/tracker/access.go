package tracker

import (
	"context"

	"github.com/google/uuid"

	domerrors "github.com/rejoanahmed/starter-template-sub001/internal/domain/errors"
)

const (
	resourceTeam  = "Team"
	resourceIssue = "Issue"
)

// RequireOrgMember checks that identity is a member of orgID and returns the verified user id.
// An empty identity is rejected before any storage access.
func (s *Service) RequireOrgMember(ctx context.Context, identity, orgID string) (string, error) {
	if identity == "" {
		return "", domerrors.ErrUnauthorized
	}
	ok, err := s.store.IsMember(ctx, orgID, identity)
	if err != nil {
		return "", storageErr(err, "check organization membership")
	}
	if !ok {
		return "", domerrors.NewForbidden("not a member of this organization")
	}
	return identity, nil
}

// RequireTeamInOrg runs RequireOrgMember, then checks that teamID belongs to orgID. A team of another
// organization is reported as NotFound, never Forbidden, so tenants cannot probe each other's teams.
func (s *Service) RequireTeamInOrg(ctx context.Context, identity, orgID, teamID string) (string, error) {
	if _, err := s.RequireOrgMember(ctx, identity, orgID); err != nil {
		return "", err
	}
	team, err := s.store.GetTeam(ctx, orgID, teamID)
	if err != nil {
		return "", storageErr(err, "load team")
	}
	if team == nil {
		return "", domerrors.NewNotFound(resourceTeam, teamID)
	}
	return team.ID, nil
}

func newUUID() string {
	return uuid.NewString()
}
