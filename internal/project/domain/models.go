// Package domain contains persistence models for projects.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProjectStatus represents project lifecycle states. quote_sent and
// quote_accepted are written only by the projector.
type ProjectStatus string

const (
	ProjectStatusPending       ProjectStatus = "pending"
	ProjectStatusQuoteSent     ProjectStatus = "quote_sent"
	ProjectStatusQuoteAccepted ProjectStatus = "quote_accepted"
	ProjectStatusInProgress    ProjectStatus = "in_progress"
	ProjectStatusCompleted     ProjectStatus = "completed"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusQuoteSent, ProjectStatusQuoteAccepted,
		ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	default:
		return false
	}
}

// Project groups documents for one client.
type Project struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	OwnerID     snowflake.ID  `gorm:"not null;index" json:"owner_id"`
	ClientID    snowflake.ID  `gorm:"not null;index" json:"client_id"`
	Name        string        `gorm:"not null" json:"name"`
	Description *string       `gorm:"type:text" json:"description,omitempty"`
	Status      ProjectStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
