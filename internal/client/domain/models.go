// Package domain contains persistence models for clients.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Client is a billable counterparty owned by one user.
type Client struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OwnerID   snowflake.ID      `gorm:"not null;index" json:"owner_id"`
	Name      string            `gorm:"not null" json:"name"`
	Email     string            `gorm:"not null" json:"email"`
	Company   *string           `gorm:"type:text" json:"company,omitempty"`
	Address   *string           `gorm:"type:text" json:"address,omitempty"`
	Phone     *string           `gorm:"type:text" json:"phone,omitempty"`
	Notes     *string           `gorm:"type:text" json:"notes,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
