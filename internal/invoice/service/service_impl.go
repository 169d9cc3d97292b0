package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/invoice/domain"
	"github.com/facturio/facturio/internal/numbering"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	"github.com/facturio/facturio/internal/providers/email"
	"github.com/facturio/facturio/internal/providers/pdf"
	quotedomain "github.com/facturio/facturio/internal/quote/domain"
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

// conversionWindow bounds how long a quote stays convertible after its
// creation date. Later edits or the acceptance write itself do not extend it.
const conversionWindow = 30 * 24 * time.Hour

// defaultPaymentTerm is applied when an invoice is created without a due date.
const defaultPaymentTerm = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Numbers *numbering.Allocator
	Email   email.Provider
	PDF     pdf.Renderer
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	numbers *numbering.Allocator
	email   email.Provider
	pdf     pdf.Renderer

	invoicerepo   repository.Repository[domain.Invoice]
	itemrepo      repository.Repository[domain.InvoiceItem]
	projectrepo   repository.Repository[projectdomain.Project]
	clientrepo    repository.Repository[clientdomain.Client]
	quoterepo     repository.Repository[quotedomain.Quote]
	quoteitemrepo repository.Repository[quotedomain.QuoteItem]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		numbers: p.Numbers,
		email:   p.Email,
		pdf:     p.PDF,

		invoicerepo:   repository.ProvideStore[domain.Invoice](p.DB),
		itemrepo:      repository.ProvideStore[domain.InvoiceItem](p.DB),
		projectrepo:   repository.ProvideStore[projectdomain.Project](p.DB),
		clientrepo:    repository.ProvideStore[clientdomain.Client](p.DB),
		quoterepo:     repository.ProvideStore[quotedomain.Quote](p.DB),
		quoteitemrepo: repository.ProvideStore[quotedomain.QuoteItem](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Invoice, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.invoicerepo.Find(ctx, &domain.Invoice{OwnerID: ownerID},
		option.WithOrder("created_at DESC"))
	if err != nil {
		return nil, err
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		invoices = append(invoices, *row)
	}
	return invoices, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.InvoiceWithItems, error) {
	invoice, err := s.loadOwned(ctx, id)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	items, err := s.loadItems(ctx, invoice.ID)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	return domain.InvoiceWithItems{Invoice: invoice, Items: items}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceWithItems, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	if err := validateLines(req.Lines); err != nil {
		return domain.InvoiceWithItems{}, err
	}

	projectID, err := snowflake.ParseString(strings.TrimSpace(req.ProjectID))
	if err != nil {
		return domain.InvoiceWithItems{}, domain.ErrProjectForbidden
	}
	project, err := s.projectrepo.FindOne(ctx, &projectdomain.Project{ID: projectID, OwnerID: ownerID})
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	if project == nil {
		return domain.InvoiceWithItems{}, domain.ErrProjectForbidden
	}

	totals, err := taxservice.DocumentTotals(toLineInputs(req.Lines), req.CountryCode, req.TaxRateKey)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	now := s.clock.Now()
	dueAt := now.Add(defaultPaymentTerm)
	if req.DueAt != nil {
		dueAt = *req.DueAt
	}

	invoice := domain.Invoice{
		ID:          s.genID.Generate(),
		OwnerID:     ownerID,
		ClientID:    project.ClientID,
		ProjectID:   projectID,
		Status:      domain.InvoiceStatusDraft,
		CountryCode: strings.ToUpper(strings.TrimSpace(req.CountryCode)),
		TaxRateKey:  strings.TrimSpace(req.TaxRateKey),
		Subtotal:    totals.Subtotal,
		TaxAmount:   totals.TaxAmount,
		Total:       totals.Total,
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
		DueAt:       dueAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items, err := s.buildItems(invoice.ID, req.Lines, invoice.CountryCode, invoice.TaxRateKey, now)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	if err := s.persistNew(ctx, &invoice, items); err != nil {
		return domain.InvoiceWithItems{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
	)
	return domain.InvoiceWithItems{Invoice: invoice, Items: items}, nil
}

func (s *Service) ConvertFromQuote(ctx context.Context, quoteID string) (domain.InvoiceWithItems, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	qid, err := snowflake.ParseString(strings.TrimSpace(quoteID))
	if err != nil {
		return domain.InvoiceWithItems{}, quotedomain.ErrInvalidID
	}
	quote, err := s.quoterepo.FindOne(ctx, &quotedomain.Quote{ID: qid, OwnerID: ownerID})
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	if quote == nil {
		return domain.InvoiceWithItems{}, quotedomain.ErrNotFound
	}

	if quote.Status != quotedomain.QuoteStatusAccepted {
		return domain.InvoiceWithItems{}, domain.ErrQuoteNotAccepted
	}

	now := s.clock.Now()
	if now.Sub(quote.CreatedAt) > conversionWindow {
		return domain.InvoiceWithItems{}, domain.ErrQuoteTooOld
	}

	quoteItems, err := s.quoteitemrepo.Find(ctx, &quotedomain.QuoteItem{QuoteID: quote.ID},
		option.WithOrder("id ASC"))
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	// Monetary fields are copied as persisted, never recomputed: the invoice
	// must bill exactly what the client accepted.
	invoice := domain.Invoice{
		ID:          s.genID.Generate(),
		OwnerID:     ownerID,
		ClientID:    quote.ClientID,
		ProjectID:   quote.ProjectID,
		QuoteID:     &quote.ID,
		Status:      domain.InvoiceStatusDraft,
		CountryCode: quote.CountryCode,
		TaxRateKey:  quote.TaxRateKey,
		Subtotal:    quote.Subtotal,
		TaxAmount:   quote.TaxAmount,
		Total:       quote.Total,
		Notes:       quote.Notes,
		PaymentType: quote.PaymentType,
		DueAt:       now.Add(defaultPaymentTerm),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	items := make([]domain.InvoiceItem, 0, len(quoteItems))
	for _, qi := range quoteItems {
		if qi == nil {
			continue
		}
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			Description: qi.Description,
			Quantity:    qi.Quantity,
			UnitPrice:   qi.UnitPrice,
			Subtotal:    qi.Subtotal,
			TaxAmount:   qi.TaxAmount,
			Total:       qi.Total,
			CreatedAt:   now,
		})
	}

	if err := s.persistNew(ctx, &invoice, items); err != nil {
		return domain.InvoiceWithItems{}, err
	}

	s.log.Info("quote converted to invoice",
		zap.String("quote_id", quote.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
	)
	return domain.InvoiceWithItems{Invoice: invoice, Items: items}, nil
}

// persistNew allocates the invoice number and writes the invoice with its
// items in one transaction.
func (s *Service) persistNew(ctx context.Context, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	release := s.numbers.Acquire(invoice.OwnerID, numbering.KindInvoice)
	defer release()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbers.Next(tx, invoice.OwnerID, numbering.KindInvoice)
		if err != nil {
			return err
		}
		invoice.Number = number

		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return numbering.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateInvoiceRequest) (domain.InvoiceWithItems, error) {
	invoice, err := s.loadOwned(ctx, id)
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return domain.InvoiceWithItems{}, domain.ErrInvoicePaid
	}

	if req.CountryCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.CountryCode))
		if _, err := taxdomain.Lookup(code); err != nil {
			return domain.InvoiceWithItems{}, err
		}
		invoice.CountryCode = code
	}
	if req.TaxRateKey != nil {
		invoice.TaxRateKey = strings.TrimSpace(*req.TaxRateKey)
	}
	if req.Notes != nil {
		invoice.Notes = req.Notes
	}
	if req.PaymentType != nil {
		invoice.PaymentType = req.PaymentType
	}
	if req.DueAt != nil {
		invoice.DueAt = *req.DueAt
	}
	invoice.UpdatedAt = s.clock.Now()

	var items []domain.InvoiceItem
	if req.Lines != nil {
		if err := validateLines(req.Lines); err != nil {
			return domain.InvoiceWithItems{}, err
		}
		totals, err := taxservice.DocumentTotals(toLineInputs(req.Lines), invoice.CountryCode, invoice.TaxRateKey)
		if err != nil {
			return domain.InvoiceWithItems{}, err
		}
		invoice.Subtotal = totals.Subtotal
		invoice.TaxAmount = totals.TaxAmount
		invoice.Total = totals.Total

		items, err = s.buildItems(invoice.ID, req.Lines, invoice.CountryCode, invoice.TaxRateKey, invoice.UpdatedAt)
		if err != nil {
			return domain.InvoiceWithItems{}, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Lines != nil {
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Save(&invoice).Error
	})
	if err != nil {
		return domain.InvoiceWithItems{}, err
	}

	if req.Lines == nil {
		items, err = s.loadItems(ctx, invoice.ID)
		if err != nil {
			return domain.InvoiceWithItems{}, err
		}
	}
	return domain.InvoiceWithItems{Invoice: invoice, Items: items}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoice, err := s.loadOwned(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return domain.ErrInvoicePaid
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Invoice{}, "id = ?", invoice.ID).Error
	})
}

func (s *Service) SetStatus(ctx context.Context, id string, status domain.InvoiceStatus) (domain.Invoice, error) {
	if !status.Valid() {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	invoice, err := s.loadOwned(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice.Status = status
	invoice.UpdatedAt = s.clock.Now()
	if err := s.db.WithContext(ctx).Save(&invoice).Error; err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) SendEmail(ctx context.Context, id string, recipient string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !strings.Contains(recipient, "@") {
		return domain.ErrInvalidRecipient
	}

	invoice, err := s.loadOwned(ctx, id)
	if err != nil {
		return err
	}
	items, err := s.loadItems(ctx, invoice.ID)
	if err != nil {
		return err
	}
	client, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: invoice.ClientID, OwnerID: invoice.OwnerID})
	if err != nil {
		return err
	}

	clientName := ""
	if client != nil {
		clientName = client.Name
	}

	document, err := s.pdf.Render(ctx, renderData(invoice, items, clientName, recipient))
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Invoice %s", invoice.Number)
	body := fmt.Sprintf("<p>Please find attached invoice %s.</p>", invoice.Number)
	attachment := email.Attachment{
		Filename:    invoice.Number + ".pdf",
		ContentType: "application/pdf",
		Content:     document,
	}
	if err := s.email.Send(ctx, []string{recipient}, subject, body, attachment); err != nil {
		return err
	}

	if invoice.Status != domain.InvoiceStatusSent {
		invoice.Status = domain.InvoiceStatusSent
		invoice.UpdatedAt = s.clock.Now()
		if err := s.db.WithContext(ctx).Save(&invoice).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadOwned(ctx context.Context, id string) (domain.Invoice, error) {
	ownerID, err := ownerFromContext(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	row, err := s.invoicerepo.FindOne(ctx, &domain.Invoice{ID: invoiceID, OwnerID: ownerID})
	if err != nil {
		return domain.Invoice{}, err
	}
	if row == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *row, nil
}

func (s *Service) loadItems(ctx context.Context, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	rows, err := s.itemrepo.Find(ctx, &domain.InvoiceItem{InvoiceID: invoiceID},
		option.WithOrder("id ASC"))
	if err != nil {
		return nil, err
	}

	items := make([]domain.InvoiceItem, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) buildItems(invoiceID snowflake.ID, lines []domain.LineItemInput, countryCode, rateKey string, now time.Time) ([]domain.InvoiceItem, error) {
	items := make([]domain.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		lt, err := taxservice.LineTotals(line.Quantity, line.UnitPrice, countryCode, rateKey)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoiceID,
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

func renderData(invoice domain.Invoice, items []domain.InvoiceItem, clientName, recipient string) pdf.DocumentData {
	regime, err := taxdomain.Lookup(invoice.CountryCode)
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
	if invoice.Notes != nil {
		notes = *invoice.Notes
	}

	return pdf.DocumentData{
		Title:      "Invoice",
		Number:     invoice.Number,
		IssueDate:  invoice.CreatedAt.Format("2006-01-02"),
		DueDate:    invoice.DueAt.Format("2006-01-02"),
		ClientName: clientName,
		Recipient:  recipient,
		Items:      rows,
		Subtotal:   formatMoney(invoice.Subtotal, symbol),
		TaxAmount:  formatMoney(invoice.TaxAmount, symbol),
		Total:      formatMoney(invoice.Total, symbol),
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
