package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/project/domain"
	quotedomain "github.com/facturio/facturio/internal/quote/domain"
	"github.com/facturio/facturio/internal/usercontext"
	"github.com/facturio/facturio/pkg/db/option"
	"github.com/facturio/facturio/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
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

	projectrepo repository.Repository[domain.Project]
	clientrepo  repository.Repository[clientdomain.Client]
	quoterepo   repository.Repository[quotedomain.Quote]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		clock: p.Clock,

		projectrepo: repository.ProvideStore[domain.Project](p.DB),
		clientrepo:  repository.ProvideStore[clientdomain.Client](p.DB),
		quoterepo:   repository.ProvideStore[quotedomain.Quote](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.Project{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}

	clientID, err := snowflake.ParseString(strings.TrimSpace(req.ClientID))
	if err != nil {
		return domain.Project{}, domain.ErrInvalidClient
	}

	client, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: clientID, OwnerID: ownerID})
	if err != nil {
		return domain.Project{}, err
	}
	if client == nil {
		return domain.Project{}, domain.ErrInvalidClient
	}

	now := s.clock.Now()
	project := domain.Project{
		ID:          s.genID.Generate(),
		OwnerID:     ownerID,
		ClientID:    clientID,
		Name:        name,
		Description: req.Description,
		Status:      domain.ProjectStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectrepo.Create(ctx, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Project, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.projectrepo.Find(ctx, &domain.Project{OwnerID: ownerID},
		option.WithOrder("created_at DESC"))
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		projects = append(projects, *item)
	}
	return projects, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Project, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.Project{}, err
	}

	projectID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Project{}, domain.ErrInvalidID
	}

	item, err := s.projectrepo.FindOne(ctx, &domain.Project{ID: projectID, OwnerID: ownerID})
	if err != nil {
		return domain.Project{}, err
	}
	if item == nil {
		return domain.Project{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateProjectRequest) (domain.Project, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Project{}, domain.ErrInvalidName
		}
		current.Name = name
	}
	if req.Description != nil {
		current.Description = req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return domain.Project{}, domain.ErrInvalidStatus
		}
		current.Status = *req.Status
	}
	current.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(&current).Error; err != nil {
		return domain.Project{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.projectrepo.Delete(ctx, current.ID.String())
}

func (s *Service) Reproject(ctx context.Context, projectID snowflake.ID) error {
	project, err := s.projectrepo.FindOne(ctx, &domain.Project{ID: projectID})
	if err != nil {
		return err
	}
	if project == nil {
		// Project deleted underneath the quote lifecycle; nothing to project.
		return nil
	}

	items, err := s.quoterepo.Find(ctx, &quotedomain.Quote{ProjectID: projectID})
	if err != nil {
		return err
	}

	quotes := make([]quotedomain.Quote, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotes = append(quotes, *item)
	}

	status, changed := domain.Derive(project.Status, quotes)
	if !changed {
		return nil
	}

	s.log.Info("project status projected",
		zap.String("project_id", projectID.String()),
		zap.String("status", string(status)),
	)
	return s.db.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ?", projectID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": s.clock.Now(),
		}).Error
}

func ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, domain.ErrInvalidOwner
	}
	return snowflake.ID(ownerID), nil
}
