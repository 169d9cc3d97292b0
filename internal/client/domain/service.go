package domain

import (
	"context"
	"errors"
)

type CreateClientRequest struct {
	Name    string
	Email   string
	Company *string
	Address *string
	Phone   *string
	Notes   *string
}

type UpdateClientRequest struct {
	Name    *string
	Email   *string
	Company *string
	Address *string
	Phone   *string
	Notes   *string
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (Client, error)
	List(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id string) (Client, error)
	Update(ctx context.Context, id string, req UpdateClientRequest) (Client, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("client_not_found")
)
