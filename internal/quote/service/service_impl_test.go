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
	"github.com/facturio/facturio/internal/numbering"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	projectservice "github.com/facturio/facturio/internal/project/service"
	"github.com/facturio/facturio/internal/providers/email"
	"github.com/facturio/facturio/internal/providers/pdf"
	"github.com/facturio/facturio/internal/quote/domain"
	"github.com/facturio/facturio/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type capturingEmail struct {
	sent int
	to   []string
}

func (c *capturingEmail) Send(ctx context.Context, to []string, subject, htmlBody string, attachments ...email.Attachment) error {
	c.sent++
	c.to = to
	return nil
}

type fixture struct {
	db       *gorm.DB
	svc      domain.Service
	projects projectdomain.Service
	email    *capturingEmail
	clk      *clock.FakeClock
	owner    snowflake.ID
	ctx      context.Context

	client  clientdomain.Client
	project projectdomain.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&clientdomain.Client{},
		&projectdomain.Project{},
		&domain.Quote{},
		&domain.QuoteItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)

	projects := projectservice.New(projectservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
	})

	mail := &capturingEmail{}
	svc := New(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      clk,
		Numbers:    numbering.New(),
		ProjectSvc: projects,
		Email:      mail,
		PDF:        &pdf.NoOpRenderer{},
	})

	owner := snowflake.ID(4242)
	ctx := usercontext.WithUserID(context.Background(), int64(owner))

	f := &fixture{
		db:       db,
		svc:      svc,
		projects: projects,
		email:    mail,
		clk:      clk,
		owner:    owner,
		ctx:      ctx,
	}

	f.client = clientdomain.Client{
		ID:      node.Generate(),
		OwnerID: owner,
		Name:    "Dupont SARL",
		Email:   "compta@dupont.example",
	}
	require.NoError(t, db.Create(&f.client).Error)

	f.project = projectdomain.Project{
		ID:       node.Generate(),
		OwnerID:  owner,
		ClientID: f.client.ID,
		Name:     "Site vitrine",
		Status:   projectdomain.ProjectStatusPending,
	}
	require.NoError(t, db.Create(&f.project).Error)

	return f
}

func (f *fixture) createQuote(t *testing.T, lines ...domain.LineItemInput) domain.QuoteWithItems {
	t.Helper()
	if len(lines) == 0 {
		lines = []domain.LineItemInput{
			{Description: "Développement", Quantity: 2, UnitPrice: 400},
		}
	}
	q, err := f.svc.Create(f.ctx, domain.CreateQuoteRequest{
		ProjectID:   f.project.ID.String(),
		Lines:       lines,
		CountryCode: "FR",
		TaxRateKey:  "STANDARD",
	})
	require.NoError(t, err)
	return q
}

func (f *fixture) projectStatus(t *testing.T) projectdomain.ProjectStatus {
	t.Helper()
	var p projectdomain.Project
	require.NoError(t, f.db.First(&p, "id = ?", f.project.ID).Error)
	return p.Status
}

func TestCreateQuote(t *testing.T) {
	f := newFixture(t)

	q := f.createQuote(t,
		domain.LineItemInput{Description: "Développement", Quantity: 2, UnitPrice: 400},
		domain.LineItemInput{Description: "Maintenance", Quantity: 1, UnitPrice: 150},
	)

	assert.Equal(t, "Q-0001", q.Number)
	assert.Equal(t, domain.QuoteStatusDraft, q.Status)
	assert.Equal(t, f.client.ID, q.ClientID)
	assert.Len(t, q.Items, 2)

	assert.InDelta(t, 950.00, q.Subtotal, 1e-9)
	assert.InDelta(t, 190.00, q.TaxAmount, 1e-9)
	assert.InDelta(t, 1140.00, q.Total, 1e-9)
	assert.InDelta(t, q.Subtotal+q.TaxAmount, q.Total, 1e-9)

	// Creation alone never touches the project status.
	assert.Equal(t, projectdomain.ProjectStatusPending, f.projectStatus(t))
}

func TestCreateQuoteSequentialNumbers(t *testing.T) {
	f := newFixture(t)

	for i := 1; i <= 3; i++ {
		q := f.createQuote(t)
		assert.Equal(t, fmt.Sprintf("Q-%04d", i), q.Number)
	}
}

func TestCreateQuoteValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreateQuoteRequest{
		ProjectID:   f.project.ID.String(),
		CountryCode: "FR",
	})
	assert.ErrorIs(t, err, domain.ErrNoLines)

	_, err = f.svc.Create(f.ctx, domain.CreateQuoteRequest{
		ProjectID:   f.project.ID.String(),
		CountryCode: "FR",
		Lines: []domain.LineItemInput{
			{Description: "Conseil", Quantity: 0, UnitPrice: 100},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLine)

	_, err = f.svc.Create(f.ctx, domain.CreateQuoteRequest{
		ProjectID:   f.project.ID.String(),
		CountryCode: "FR",
		Lines: []domain.LineItemInput{
			{Description: "   ", Quantity: 1, UnitPrice: 100},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLine)
}

func TestCreateQuoteForeignProject(t *testing.T) {
	f := newFixture(t)

	otherCtx := usercontext.WithUserID(context.Background(), 999)
	_, err := f.svc.Create(otherCtx, domain.CreateQuoteRequest{
		ProjectID:   f.project.ID.String(),
		CountryCode: "FR",
		Lines: []domain.LineItemInput{
			{Description: "Conseil", Quantity: 1, UnitPrice: 100},
		},
	})
	assert.ErrorIs(t, err, domain.ErrProjectForbidden)
}

func TestGetQuoteOwnerScoped(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	got, err := f.svc.GetByID(f.ctx, q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, q.Number, got.Number)
	assert.Len(t, got.Items, 1)

	otherCtx := usercontext.WithUserID(context.Background(), 999)
	_, err = f.svc.GetByID(otherCtx, q.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateQuoteReplacesLines(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	updated, err := f.svc.Update(f.ctx, q.ID.String(), domain.UpdateQuoteRequest{
		Lines: []domain.LineItemInput{
			{Description: "Audit", Quantity: 3, UnitPrice: 0.33},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Audit", updated.Items[0].Description)

	// Per-line rounding then document summation: 3 x 0.33 at 20%.
	assert.InDelta(t, 0.99, updated.Subtotal, 1e-9)
	assert.InDelta(t, 0.20, updated.TaxAmount, 1e-9)
	assert.InDelta(t, 1.19, updated.Total, 1e-9)

	var count int64
	require.NoError(t, f.db.Model(&domain.QuoteItem{}).
		Where("quote_id = ?", q.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateQuotePreservesLinesWhenNil(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	notes := "validité 30 jours"
	updated, err := f.svc.Update(f.ctx, q.ID.String(), domain.UpdateQuoteRequest{
		Notes: &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, q.Subtotal, updated.Subtotal)
	assert.Equal(t, q.Total, updated.Total)
	assert.Len(t, updated.Items, 1)
	require.NotNil(t, updated.Quote.Notes)
	assert.Equal(t, notes, *updated.Quote.Notes)
}

func TestSetStatusDrivesProjectStatus(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	_, err := f.svc.SetStatus(f.ctx, q.ID.String(), domain.QuoteStatusSent)
	require.NoError(t, err)
	assert.Equal(t, projectdomain.ProjectStatusQuoteSent, f.projectStatus(t))

	_, err = f.svc.SetStatus(f.ctx, q.ID.String(), domain.QuoteStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, projectdomain.ProjectStatusQuoteAccepted, f.projectStatus(t))
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	_, err := f.svc.SetStatus(f.ctx, q.ID.String(), domain.QuoteStatus("archived"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDeleteQuoteDoesNotRevertProject(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	_, err := f.svc.SetStatus(f.ctx, q.ID.String(), domain.QuoteStatusAccepted)
	require.NoError(t, err)
	require.Equal(t, projectdomain.ProjectStatusQuoteAccepted, f.projectStatus(t))

	require.NoError(t, f.svc.Delete(f.ctx, q.ID.String()))

	// Projection never demotes: the accepted state sticks even with the
	// quote gone.
	assert.Equal(t, projectdomain.ProjectStatusQuoteAccepted, f.projectStatus(t))

	var count int64
	require.NoError(t, f.db.Model(&domain.QuoteItem{}).
		Where("quote_id = ?", q.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSendEmailMarksQuoteSent(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	require.NoError(t, f.svc.SendEmail(f.ctx, q.ID.String(), "compta@dupont.example"))
	assert.Equal(t, 1, f.email.sent)
	assert.Equal(t, []string{"compta@dupont.example"}, f.email.to)

	got, err := f.svc.GetByID(f.ctx, q.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, got.Status)
	assert.Equal(t, projectdomain.ProjectStatusQuoteSent, f.projectStatus(t))
}

func TestSendEmailRejectsBadRecipient(t *testing.T) {
	f := newFixture(t)
	q := f.createQuote(t)

	err := f.svc.SendEmail(f.ctx, q.ID.String(), "not-an-address")
	assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
	assert.Zero(t, f.email.sent)
}

func TestListQuotesOwnerScoped(t *testing.T) {
	f := newFixture(t)
	f.createQuote(t)
	f.createQuote(t)

	quotes, err := f.svc.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	otherCtx := usercontext.WithUserID(context.Background(), 999)
	quotes, err = f.svc.List(otherCtx)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
