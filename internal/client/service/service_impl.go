package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/usercontext"
	"github.com/facturio/facturio/pkg/db/option"
	"github.com/facturio/facturio/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	clientrepo repository.Repository[domain.Client]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("client.service"),
		genID: p.GenID,
		clock: p.Clock,

		clientrepo: repository.ProvideStore[domain.Client](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateClientRequest) (domain.Client, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.Client{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Client{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Client{}, domain.ErrInvalidEmail
	}

	now := s.clock.Now()
	client := domain.Client{
		ID:        s.genID.Generate(),
		OwnerID:   ownerID,
		Name:      name,
		Email:     email,
		Company:   req.Company,
		Address:   req.Address,
		Phone:     req.Phone,
		Notes:     req.Notes,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.clientrepo.Create(ctx, &client); err != nil {
		return domain.Client{}, err
	}

	return client, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.clientrepo.Find(ctx, &domain.Client{OwnerID: ownerID},
		option.WithOrder("created_at DESC"))
	if err != nil {
		return nil, err
	}

	clients := make([]domain.Client, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		clients = append(clients, *item)
	}
	return clients, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Client, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.Client{}, err
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Client{}, domain.ErrInvalidID
	}

	item, err := s.clientrepo.FindOne(ctx, &domain.Client{ID: clientID, OwnerID: ownerID})
	if err != nil {
		return domain.Client{}, err
	}
	if item == nil {
		return domain.Client{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateClientRequest) (domain.Client, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Client{}, domain.ErrInvalidName
		}
		current.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			return domain.Client{}, domain.ErrInvalidEmail
		}
		current.Email = email
	}
	if req.Company != nil {
		current.Company = req.Company
	}
	if req.Address != nil {
		current.Address = req.Address
	}
	if req.Phone != nil {
		current.Phone = req.Phone
	}
	if req.Notes != nil {
		current.Notes = req.Notes
	}
	current.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&current).Error; err != nil {
		return domain.Client{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.clientrepo.Delete(ctx, current.ID.String())
}

func ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, domain.ErrInvalidOwner
	}
	return snowflake.ID(ownerID), nil
}
