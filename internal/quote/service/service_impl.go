package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/numbering"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	"github.com/facturio/facturio/internal/providers/email"
	"github.com/facturio/facturio/internal/providers/pdf"
	"github.com/facturio/facturio/internal/quote/domain"
	taxdomain "github.com/facturio/facturio/internal/tax/domain"
	taxservice "github.com/facturio/facturio/internal/tax/service"
	"github.com/facturio/facturio/internal/usercontext"
	"github.com/facturio/facturio/pkg/db"
	"github.com/facturio/facturio/pkg/db/option"
	"github.com/facturio/facturio/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Numbers    *numbering.Allocator
	ProjectSvc projectdomain.Service
	Email      email.Provider
	PDF        pdf.Renderer
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	numbers    *numbering.Allocator
	projectSvc projectdomain.Service
	email      email.Provider
	pdf        pdf.Renderer

	quoterepo   repository.Repository[domain.Quote]
	itemrepo    repository.Repository[domain.QuoteItem]
	projectrepo repository.Repository[projectdomain.Project]
	clientrepo  repository.Repository[clientdomain.Client]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("quote.service"),
		genID: p.GenID,
		clock: p.Clock,

		numbers:    p.Numbers,
		projectSvc: p.ProjectSvc,
		email:      p.Email,
		pdf:        p.PDF,

		quoterepo:   repository.ProvideStore[domain.Quote](p.DB),
		itemrepo:    repository.ProvideStore[domain.QuoteItem](p.DB),
		projectrepo: repository.ProvideStore[projectdomain.Project](p.DB),
		clientrepo:  repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Quote, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.quoterepo.Find(ctx, &domain.Quote{OwnerID: ownerID},
		option.WithOrder("created_at DESC"))
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotes = append(quotes, *item)
	}
	return quotes, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.QuoteWithItems, error) {
	quote, err := s.loadOwned(ctx, id)
	if err != nil {
		return domain.QuoteWithItems{}, err
	}

	items, err := s.loadItems(ctx, quote.ID)
	if err != nil {
		return domain.QuoteWithItems{}, err
	}
	return domain.QuoteWithItems{Quote: quote, Items: items}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.QuoteWithItems, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.QuoteWithItems{}, err
	}

	if err := validateLines(req.Lines); err != nil {
		return domain.QuoteWithItems{}, err
	}

	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil {
		return domain.QuoteWithItems{}, domain.ErrProjectForbidden
	}
	project, err := s.projectrepo.FindOne(ctx, &projectdomain.Project{ID: projectID, OwnerID: ownerID})
	if err != nil {
		return domain.QuoteWithItems{}, err
	}
	if project == nil {
		return domain.QuoteWithItems{}, domain.ErrProjectForbidden
	}

	totals, err := taxservice.DocumentTotals(toLineInputs(req.Lines), req.CountryCode, req.TaxRateKey)
	if err != nil {
		return domain.QuoteWithItems{}, err
	}

	now := s.clock.Now()
	quote := domain.Quote{
		ID:          s.genID.Generate(),
		OwnerID:     ownerID,
		ClientID:    project.ClientID,
		ProjectID:   projectID,
		Status:      domain.QuoteStatusDraft,
		CountryCode: strings.ToUpper(strings.TrimSpace(req.CountryCode)),
		TaxRateKey:  strings.TrimSpace(req.TaxRateKey),
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Total:       totals.Total,
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items, err := s.buildItems(quote.ID, req.Lines, quote.CountryCode, quote.TaxRateKey, now)
	if err != nil {
		return domain.QuoteWithItems{}, err
	}

	release := s.numbers.Acquire(ownerID, numbering.KindQuote)
	defer release()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbers.Next(tx, ownerID, numbering.KindQuote)
		if err != nil {
			return err
		}
		quote.Number = number

		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.QuoteWithItems{}, numbering.ErrConflict
		}
		return domain.QuoteWithItems{}, err
	}

	s.log.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number),
	)
	return domain.QuoteWithItems{Quote: quote, Items: items}, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateQuoteRequest) (domain.QuoteWithItems, error) {
	quote, err := s.loadOwned(ctx, id)
	if err != nil {
		return domain.QuoteWithItems{}, err
	}

	if req.CountryCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.CountryCode))
		if _, err := taxdomain.Lookup(code); err != nil {
			return domain.QuoteWithItems{}, err
		}
		quote.CountryCode = code
	}
	if req.TaxRateKey != nil {
		quote.TaxRateKey = strings.TrimSpace(*req.TaxRateKey)
	}
	if req.Notes != nil {
		quote.Notes = req.Notes
	}
	if req.PaymentType != nil {
		quote.PaymentType = req.PaymentType
	}
	quote.UpdatedAt = s.clock.Now()

	var items []domain.QuoteItem
	if req.Lines != nil {
		if err := validateLines(req.Lines); err != nil {
			return domain.QuoteWithItems{}, err
		}
		totals, err := taxservice.DocumentTotals(toLineInputs(req.Lines), quote.CountryCode, quote.TaxRateKey)
		if err != nil {
			return domain.QuoteWithItems{}, err
		}
		quote.Subtotal = totals.Subtotal
		quote.TaxAmount = totals.TaxAmount
		quote.Total = totals.Total

		items, err = s.buildItems(quote.ID, req.Lines, quote.CountryCode, quote.TaxRateKey, quote.UpdatedAt)
		if err != nil {
			return domain.QuoteWithItems{}, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Lines != nil {
			if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.QuoteItem{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Save(&quote).Error
	})
	if err != nil {
		return domain.QuoteWithItems{}, err
	}

	if err := s.projectSvc.Reproject(ctx, quote.ProjectID); err != nil {
		s.log.Warn("project reprojection failed", zap.Error(err))
	}

	if req.Lines == nil {
		items, err = s.loadItems(ctx, quote.ID)
		if err != nil {
			return domain.QuoteWithItems{}, err
		}
	}
	return domain.QuoteWithItems{Quote: quote, Items: items}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	quote, err := s.loadOwned(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Quote{}, "id = ?", quote.ID).Error
	})
	if err != nil {
		return err
	}

	if err := s.projectSvc.Reproject(ctx, quote.ProjectID); err != nil {
		s.log.Warn("project reprojection failed", zap.Error(err))
	}
	return nil
}

func (s *Service) SetStatus(ctx context.Context, id string, status domain.QuoteStatus) (domain.Quote, error) {
	if !status.Valid() {
		return domain.Quote{}, domain.ErrInvalidStatus
	}

	quote, err := s.loadOwned(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	quote.Status = status
	quote.UpdatedAt = s.clock.Now()
	if err := s.db.WithContext(ctx).Save(&quote).Error; err != nil {
		return domain.Quote{}, err
	}

	if err := s.projectSvc.Reproject(ctx, quote.ProjectID); err != nil {
		s.log.Warn("project reprojection failed", zap.Error(err))
	}
	return quote, nil
}

func (s *Service) SendEmail(ctx context.Context, id string, recipient string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !strings.Contains(recipient, "@") {
		return domain.ErrInvalidRecipient
	}

	quote, err := s.loadOwned(ctx, id)
	if err != nil {
		return err
	}
	items, err := s.loadItems(ctx, quote.ID)
	if err != nil {
		return err
	}
	client, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: quote.ClientID, OwnerID: quote.OwnerID})
	if err != nil {
		return err
	}

	clientName := ""
	if client != nil {
		clientName = client.Name
	}

	document, err := s.pdf.Render(ctx, renderData(quote, items, clientName, recipient))
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Quote %s", quote.Number)
	body := fmt.Sprintf("<p>Please find attached quote %s.</p>", quote.Number)
	attachment := email.Attachment{
		Filename:    quote.Number + ".pdf",
		ContentType: "application/pdf",
		Content:     document,
	}
	if err := s.email.Send(ctx, []string{recipient}, subject, body, attachment); err != nil {
		return err
	}

	if quote.Status != domain.QuoteStatusSent {
		quote.Status = domain.QuoteStatusSent
		quote.UpdatedAt = s.clock.Now()
		if err := s.db.WithContext(ctx).Save(&quote).Error; err != nil {
			return err
		}
	}

	if err := s.projectSvc.Reproject(ctx, quote.ProjectID); err != nil {
		s.log.Warn("project reprojection failed", zap.Error(err))
	}
	return nil
}

func (s *Service) loadOwned(ctx context.Context, id string) (domain.Quote, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	quoteID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Quote{}, domain.ErrInvalidID
	}

	// Scoping by owner hides other owners' quotes as not-found rather than
	// forbidden.
	item, err := s.quoterepo.FindOne(ctx, &domain.Quote{ID: quoteID, OwnerID: ownerID})
	if err != nil {
		return domain.Quote{}, err
	}
	if item == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) loadItems(ctx context.Context, quoteID snowflake.ID) ([]domain.QuoteItem, error) {
	rows, err := s.itemrepo.Find(ctx, &domain.QuoteItem{QuoteID: quoteID},
		option.WithOrder("id ASC"))
	if err != nil {
		return nil, err
	}

	items := make([]domain.QuoteItem, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) buildItems(quoteID snowflake.ID, lines []domain.LineItemInput, countryCode, rateKey string, now time.Time) ([]domain.QuoteItem, error) {
	items := make([]domain.QuoteItem, 0, len(lines))
	for _, line := range lines {
		lt, err := taxservice.LineTotals(line.Quantity, line.UnitPrice, countryCode, rateKey)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.QuoteItem{
			ID:          s.genID.Generate(),
			QuoteID:     quoteID,
			Description: strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    lt.Subtotal,
			TaxAmount:   lt.TaxAmount,
			Total:       lt.Total,
			CreatedAt:   now,
		})
	}
	return items, nil
}

func validateLines(lines []domain.LineItemInput) error {
	if len(lines) == 0 {
		return domain.ErrNoLines
	}
	for _, line := range lines {
		if strings.TrimSpace(line.Description) == "" {
			return domain.ErrInvalidLine
		}
		if line.Quantity <= 0 {
			return domain.ErrInvalidLine
		}
		if line.UnitPrice < 0 {
			return domain.ErrInvalidLine
		}
	}
	return nil
}

func toLineInputs(lines []domain.LineItemInput) []taxdomain.LineInput {
	out := make([]taxdomain.LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, taxdomain.LineInput{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}
	return out
}

func renderData(quote domain.Quote, items []domain.QuoteItem, clientName, recipient string) pdf.DocumentData {
	regime, err := taxdomain.Lookup(quote.CountryCode)
	symbol := ""
	if err == nil {
		symbol = regime.CurrencySymbol
	}

	rows := make([]pdf.LineRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, pdf.LineRow{
			Description: item.Description,
			Quantity:    fmt.Sprintf("%g", item.Quantity),
			UnitPrice:   formatMoney(item.UnitPrice, symbol),
			Total:       formatMoney(item.Total, symbol),
		})
	}

	notes := ""
	if quote.Notes != nil {
		notes = *quote.Notes
	}

	return pdf.DocumentData{
		Title:      "Quote",
		Number:     quote.Number,
		IssueDate:  quote.CreatedAt.Format("2006-01-02"),
		ClientName: clientName,
		Recipient:  recipient,
		Items:      rows,
		Subtotal:   formatMoney(quote.Subtotal, symbol),
		TaxAmount:  formatMoney(quote.TaxAmount, symbol),
		Total:      formatMoney(quote.Total, symbol),
		Notes:      notes,
	}
}

func formatMoney(v float64, symbol string) string {
	if symbol == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, symbol)
}

func ownerFromContext(ctx context.Context) (snowflake.ID, error) {
	ownerID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || ownerID == 0 {
		return 0, domain.ErrInvalidOwner
	}
	return snowflake.ID(ownerID), nil
}
