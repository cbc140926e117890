package db

import (
	"time"
)

type Organization struct {
	ID        string    `gorm:"size:64;primaryKey"`
	Name      string    `gorm:"size:200;not null"`
	CreatedAt time.Time `gorm:"not null"`

	Teams   []Team               `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
	Members []OrganizationMember `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}

func (Organization) TableName() string { return "organizations" }

type OrganizationMember struct {
	OrganizationID string    `gorm:"size:64;primaryKey"`
	UserID         string    `gorm:"primaryKey;size:255"`
	Role           string    `gorm:"size:50;not null;default:'member'"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (OrganizationMember) TableName() string { return "organization_members" }

type Team struct {
	ID             string    `gorm:"size:64;primaryKey"`
	OrganizationID string    `gorm:"size:64;not null;index"`
	Name           string    `gorm:"size:200;not null"`
	CreatedAt      time.Time `gorm:"not null"`

	Issues []Issue `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Labels []Label `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

func (Team) TableName() string { return "teams" }

type Issue struct {
	ID          string     `gorm:"size:64;primaryKey"`
	TeamID      string     `gorm:"size:64;not null"`
	Title       string     `gorm:"not null"`
	Description *string    `gorm:"type:text"`
	Status      string     `gorm:"size:20;not null;default:'todo'"`
	Priority    string     `gorm:"size:20;not null;default:'medium'"`
	AssigneeID  *string    `gorm:"size:255"`
	DueDate     *time.Time `gorm:"type:timestamptz"`
	Position    int        `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`

	IssueLabels []IssueLabel `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`
}

func (Issue) TableName() string { return "issues" }

type Label struct {
	ID     string  `gorm:"size:64;primaryKey"`
	TeamID string  `gorm:"size:64;not null;index"`
	Name   string  `gorm:"size:100;not null"`
	Color  *string `gorm:"size:20"`

	IssueLabels []IssueLabel `gorm:"foreignKey:LabelID;constraint:OnDelete:CASCADE"`
}

func (Label) TableName() string { return "labels" }

type IssueLabel struct {
	IssueID string `gorm:"size:64;primaryKey"`
	LabelID string `gorm:"size:64;primaryKey;index"`
}

func (IssueLabel) TableName() string { return "issue_labels" }
