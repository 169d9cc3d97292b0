package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateProjectRequest struct {
	ClientID    string
	Name        string
	Description *string
}

type UpdateProjectRequest struct {
	Name        *string
	Description *string
	Status      *ProjectStatus
}

type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (Project, error)
	List(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id string) (Project, error)
	Update(ctx context.Context, id string, req UpdateProjectRequest) (Project, error)
	Delete(ctx context.Context, id string) error

	// Reproject recomputes the project's status from its quote set. Called by
	// the quote lifecycle after update, delete, status change and send; quote
	// creation alone does not trigger it.
	Reproject(ctx context.Context, projectID snowflake.ID) error
}

var (
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidClient = errors.New("invalid_client")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrNotFound      = errors.New("project_not_found")
)
