package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/clock"
	"github.com/facturio/facturio/internal/invoice/domain"
	"github.com/facturio/facturio/internal/numbering"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	"github.com/facturio/facturio/internal/providers/email"
	"github.com/facturio/facturio/internal/providers/pdf"
	quotedomain "github.com/facturio/facturio/internal/quote/domain"
	"github.com/facturio/facturio/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	svc   domain.Service
	clk   *clock.FakeClock
	owner snowflake.ID
	ctx   context.Context

	client   clientdomain.Client
	project  projectdomain.Project
	quoteSeq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&projectdomain.Project{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:      db,
		Log:     zaptest.NewLogger(t),
		GenID:   node,
		Clock:   clk,
		Numbers: numbering.New(),
		Email:   &email.NoOpProvider{},
		PDF:     &pdf.NoOpRenderer{},
	})

	owner := snowflake.ID(7001)
	f := &fixture{
		db:    db,
		node:  node,
		svc:   svc,
		clk:   clk,
		owner: owner,
		ctx:   usercontext.WithUserID(context.Background(), int64(owner)),
	}

	f.client = clientdomain.Client{
		ID:      node.Generate(),
		OwnerID: owner,
		Name:    "Martin Conseil",
		Email:   "contact@martin.example",
	}
	require.NoError(t, db.Create(&f.client).Error)

	f.project = projectdomain.Project{
		ID:       node.Generate(),
		OwnerID:  owner,
		ClientID: f.client.ID,
		Name:     "Refonte intranet",
		Status:   projectdomain.ProjectStatusPending,
	}
	require.NoError(t, db.Create(&f.project).Error)

	return f
}

func (f *fixture) createInvoice(t *testing.T) domain.InvoiceWithItems {
	t.Helper()
	inv, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
		ProjectID:   f.project.ID.String(),
		CountryCode: "FR",
		TaxRateKey:  "STANDARD",
		Lines: []domain.LineItemInput{
			{Description: "Développement", Quantity: 5, UnitPrice: 500},
		},
	})
	require.NoError(t, err)
	return inv
}

// seedAcceptedQuote writes an accepted quote with one persisted line,
// bypassing the quote service so timestamps stay under test control. The
// acceptance write is recent; only the creation date varies.
func (f *fixture) seedAcceptedQuote(t *testing.T, createdAt time.Time) quotedomain.Quote {
	t.Helper()

	f.quoteSeq++
	quote := quotedomain.Quote{
		ID:          f.node.Generate(),
		OwnerID:     f.owner,
		Number:      fmt.Sprintf("Q-%04d", f.quoteSeq),
		ClientID:    f.client.ID,
		ProjectID:   f.project.ID,
		Status:      quotedomain.QuoteStatusAccepted,
		CountryCode: "FR",
		TaxRateKey:  "STANDARD",
		Subtotal:    950.00,
		TaxAmount:   190.00,
		Total:       1140.00,
		CreatedAt:   createdAt,
		UpdatedAt:   f.clk.Now(),
	}
	require.NoError(t, f.db.Create(&quote).Error)

	items := []quotedomain.QuoteItem{
		{
			ID: f.node.Generate(), QuoteID: quote.ID,
			Description: "Développement", Quantity: 2, UnitPrice: 400,
			Subtotal: 800.00, TaxAmount: 160.00, Total: 960.00,
		},
		{
			ID: f.node.Generate(), QuoteID: quote.ID,
			Description: "Maintenance", Quantity: 1, UnitPrice: 150,
			Subtotal: 150.00, TaxAmount: 30.00, Total: 180.00,
		},
	}
	require.NoError(t, f.db.Create(&items).Error)
	return quote
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t)

	assert.Equal(t, "F-0001", inv.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	assert.Nil(t, inv.QuoteID)
	assert.InDelta(t, 2500.00, inv.Subtotal, 1e-9)
	assert.InDelta(t, 500.00, inv.TaxAmount, 1e-9)
	assert.InDelta(t, 3000.00, inv.Total, 1e-9)

	// Default payment term: issuance plus thirty days.
	assert.Equal(t, f.clk.Now().Add(30*24*time.Hour), inv.DueAt)
}

func TestCreateInvoiceExplicitDueDate(t *testing.T) {
	f := newFixture(t)

	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	inv, err := f.svc.Create(f.ctx, domain.CreateInvoiceRequest{
		ProjectID:   f.project.ID.String(),
		CountryCode: "FR",
		DueAt:       &due,
		Lines: []domain.LineItemInput{
			{Description: "Conseil", Quantity: 1, UnitPrice: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, due, inv.DueAt)
}

func TestConvertFromQuote(t *testing.T) {
	f := newFixture(t)
	quote := f.seedAcceptedQuote(t, f.clk.Now().Add(-10*24*time.Hour))

	inv, err := f.svc.ConvertFromQuote(f.ctx, quote.ID.String())
	require.NoError(t, err)

	assert.Equal(t, "F-0001", inv.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status)
	require.NotNil(t, inv.QuoteID)
	assert.Equal(t, quote.ID, *inv.QuoteID)

	// Totals and lines are carried over exactly as persisted on the quote.
	assert.Equal(t, quote.Subtotal, inv.Subtotal)
	assert.Equal(t, quote.TaxAmount, inv.TaxAmount)
	assert.Equal(t, quote.Total, inv.Total)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Développement", inv.Items[0].Description)
	assert.Equal(t, 960.00, inv.Items[0].Total)
	assert.Equal(t, "Maintenance", inv.Items[1].Description)
	assert.Equal(t, 180.00, inv.Items[1].Total)
}

func TestConvertFromQuoteNotAccepted(t *testing.T) {
	f := newFixture(t)
	quote := f.seedAcceptedQuote(t, f.clk.Now())
	require.NoError(t, f.db.Model(&quotedomain.Quote{}).
		Where("id = ?", quote.ID).
		Update("status", quotedomain.QuoteStatusSent).Error)

	_, err := f.svc.ConvertFromQuote(f.ctx, quote.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuoteNotAccepted)
}

func TestConvertFromQuoteTooOld(t *testing.T) {
	f := newFixture(t)
	quote := f.seedAcceptedQuote(t, f.clk.Now().Add(-31*24*time.Hour))

	_, err := f.svc.ConvertFromQuote(f.ctx, quote.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuoteTooOld)
}

func TestConvertWindowAnchoredToCreation(t *testing.T) {
	f := newFixture(t)

	// Created 40 days ago; edited and accepted yesterday. The recent write
	// must not reopen the window.
	quote := f.seedAcceptedQuote(t, f.clk.Now().Add(-40*24*time.Hour))
	require.NoError(t, f.db.Model(&quotedomain.Quote{}).
		Where("id = ?", quote.ID).
		Update("updated_at", f.clk.Now().Add(-24*time.Hour)).Error)

	_, err := f.svc.ConvertFromQuote(f.ctx, quote.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuoteTooOld)

	// A quote created inside the window converts even when the clock later
	// moves past it, but not before.
	fresh := f.seedAcceptedQuote(t, f.clk.Now())
	f.clk.Set(f.clk.Now().Add(29 * 24 * time.Hour))
	_, err = f.svc.ConvertFromQuote(f.ctx, fresh.ID.String())
	require.NoError(t, err)

	f.clk.Set(f.clk.Now().Add(2 * 24 * time.Hour))
	stale := f.seedAcceptedQuote(t, f.clk.Now().Add(-31*24*time.Hour))
	_, err = f.svc.ConvertFromQuote(f.ctx, stale.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuoteTooOld)
}

func TestConvertFromQuoteForeignOwner(t *testing.T) {
	f := newFixture(t)
	quote := f.seedAcceptedQuote(t, f.clk.Now())

	otherCtx := usercontext.WithUserID(context.Background(), 999)
	_, err := f.svc.ConvertFromQuote(otherCtx, quote.ID.String())
	assert.ErrorIs(t, err, quotedomain.ErrNotFound)
}

func TestPaidInvoiceIsFrozen(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t)

	_, err := f.svc.SetStatus(f.ctx, inv.ID.String(), domain.InvoiceStatusPaid)
	require.NoError(t, err)

	notes := "relance"
	_, err = f.svc.Update(f.ctx, inv.ID.String(), domain.UpdateInvoiceRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrInvoicePaid)

	err = f.svc.Delete(f.ctx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrInvoicePaid)

	// Status changes stay allowed on a paid invoice.
	updated, err := f.svc.SetStatus(f.ctx, inv.ID.String(), domain.InvoiceStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, updated.Status)
}

func TestUpdateInvoiceReplacesLines(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t)

	updated, err := f.svc.Update(f.ctx, inv.ID.String(), domain.UpdateInvoiceRequest{
		Lines: []domain.LineItemInput{
			{Description: "Audit", Quantity: 1, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.InDelta(t, 1000.00, updated.Subtotal, 1e-9)
	assert.InDelta(t, 1200.00, updated.Total, 1e-9)

	var count int64
	require.NoError(t, f.db.Model(&domain.InvoiceItem{}).
		Where("invoice_id = ?", inv.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInvoiceNumbersSequentialAndSeparateFromQuotes(t *testing.T) {
	f := newFixture(t)
	f.seedAcceptedQuote(t, f.clk.Now())

	for i := 1; i <= 3; i++ {
		inv := f.createInvoice(t)
		assert.Equal(t, fmt.Sprintf("F-%04d", i), inv.Number)
	}
}

func TestSendEmailMarksInvoiceSent(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t)

	require.NoError(t, f.svc.SendEmail(f.ctx, inv.ID.String(), "contact@martin.example"))

	got, err := f.svc.GetByID(f.ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, got.Status)

	// Resending from any other status promotes back to sent, same as quotes.
	_, err = f.svc.SetStatus(f.ctx, inv.ID.String(), domain.InvoiceStatusOverdue)
	require.NoError(t, err)
	require.NoError(t, f.svc.SendEmail(f.ctx, inv.ID.String(), "contact@martin.example"))

	got, err = f.svc.GetByID(f.ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, got.Status)
}

func TestInvoiceOwnerScoping(t *testing.T) {
	f := newFixture(t)
	inv := f.createInvoice(t)

	otherCtx := usercontext.WithUserID(context.Background(), 999)
	_, err := f.svc.GetByID(otherCtx, inv.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	invoices, err := f.svc.List(otherCtx)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}
