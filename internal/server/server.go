package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/facturio/facturio/internal/client/domain"
	"github.com/facturio/facturio/internal/config"
	invoicedomain "github.com/facturio/facturio/internal/invoice/domain"
	projectdomain "github.com/facturio/facturio/internal/project/domain"
	quotedomain "github.com/facturio/facturio/internal/quote/domain"
	taxdomain "github.com/facturio/facturio/internal/tax/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	ClientSvc  clientdomain.Service
	ProjectSvc projectdomain.Service
	QuoteSvc   quotedomain.Service
	InvoiceSvc invoicedomain.Service
	TaxSvc     taxdomain.Service
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	clientSvc  clientdomain.Service
	projectSvc projectdomain.Service
	quoteSvc   quotedomain.Service
	invoiceSvc invoicedomain.Service
	taxSvc     taxdomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		clientSvc:  p.ClientSvc,
		projectSvc: p.ProjectSvc,
		quoteSvc:   p.QuoteSvc,
		invoiceSvc: p.InvoiceSvc,
		taxSvc:     p.TaxSvc,
	}

	s.registerAPIRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", s.AuthRequired())

	// -------- Tax --------
	v1.GET("/tax/regimes", s.ListTaxRegimes)
	v1.GET("/tax/regimes/:country", s.GetTaxRegime)
	v1.POST("/tax/amount", s.PreviewTaxAmount)
	v1.POST("/tax/line-totals", s.PreviewLineTotals)
	v1.POST("/tax/preview", s.PreviewTaxTotals)

	// -------- Clients --------
	v1.GET("/clients", s.ListClients)
	v1.POST("/clients", s.CreateClient)
	v1.GET("/clients/:id", s.GetClientByID)
	v1.PATCH("/clients/:id", s.UpdateClient)
	v1.DELETE("/clients/:id", s.DeleteClient)

	// -------- Projects --------
	v1.GET("/projects", s.ListProjects)
	v1.POST("/projects", s.CreateProject)
	v1.GET("/projects/:id", s.GetProjectByID)
	v1.PATCH("/projects/:id", s.UpdateProject)
	v1.DELETE("/projects/:id", s.DeleteProject)

	// -------- Quotes --------
	v1.GET("/quotes", s.ListQuotes)
	v1.POST("/quotes", s.CreateQuote)
	v1.GET("/quotes/:id", s.GetQuoteByID)
	v1.PATCH("/quotes/:id", s.UpdateQuote)
	v1.DELETE("/quotes/:id", s.DeleteQuote)
	v1.POST("/quotes/:id/status", s.SetQuoteStatus)
	v1.POST("/quotes/:id/send", s.SendQuote)
	v1.POST("/quotes/:id/convert", s.ConvertQuote)

	// -------- Invoices --------
	v1.GET("/invoices", s.ListInvoices)
	v1.POST("/invoices", s.CreateInvoice)
	v1.GET("/invoices/:id", s.GetInvoiceByID)
	v1.PATCH("/invoices/:id", s.UpdateInvoice)
	v1.DELETE("/invoices/:id", s.DeleteInvoice)
	v1.POST("/invoices/:id/status", s.SetInvoiceStatus)
	v1.POST("/invoices/:id/send", s.SendInvoice)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
