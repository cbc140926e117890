package domain

import "time"

// Organization is the tenant root. The tracker only references it.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Team belongs to exactly one organization and owns its issues and labels.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
}

// Membership links a user to an organization. Its existence is the only authorization fact; Role is informational.
type Membership struct {
	OrganizationID string
	UserID         string
	Role           string
	CreatedAt      time.Time
}
