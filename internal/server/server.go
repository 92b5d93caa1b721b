package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/klinikita/billing/internal/catalog"
	catalogdomain "github.com/klinikita/billing/internal/catalog/domain"
	"github.com/klinikita/billing/internal/config"
	"github.com/klinikita/billing/internal/insurance"
	insurancedomain "github.com/klinikita/billing/internal/insurance/domain"
	"github.com/klinikita/billing/internal/invoice"
	invoicedomain "github.com/klinikita/billing/internal/invoice/domain"
	"github.com/klinikita/billing/internal/observability"
	obslogger "github.com/klinikita/billing/internal/observability/logger"
	obsmetrics "github.com/klinikita/billing/internal/observability/metrics"
	obstracing "github.com/klinikita/billing/internal/observability/tracing"
	"github.com/klinikita/billing/internal/patient"
	patientdomain "github.com/klinikita/billing/internal/patient/domain"
	"github.com/klinikita/billing/internal/prescription"
	prescriptiondomain "github.com/klinikita/billing/internal/prescription/domain"
	"github.com/klinikita/billing/internal/providers/pdf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	patient.Module,
	insurance.Module,
	catalog.Module,
	prescription.Module,
	invoice.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterAPIRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(log *zap.Logger, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyError,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	patientSvc      patientdomain.Service
	insuranceSvc    insurancedomain.Service
	catalogSvc      catalogdomain.Service
	prescriptionSvc prescriptiondomain.Service
	invoiceSvc      invoicedomain.Service
	receipts        pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	PatientSvc      patientdomain.Service
	InsuranceSvc    insurancedomain.Service
	CatalogSvc      catalogdomain.Service
	PrescriptionSvc prescriptiondomain.Service
	InvoiceSvc      invoicedomain.Service
	Receipts        pdf.Provider
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		patientSvc:      p.PatientSvc,
		insuranceSvc:    p.InsuranceSvc,
		catalogSvc:      p.CatalogSvc,
		prescriptionSvc: p.PrescriptionSvc,
		invoiceSvc:      p.InvoiceSvc,
		receipts:        p.Receipts,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.GET("/patients", s.SearchPatients)
	api.GET("/insurances", s.ListInsurances)
	api.GET("/master-data", s.SearchMasterCatalog)
	api.GET("/prescriptions/outstanding", s.ClaimOutstandingPrescription)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoice)
	api.GET("/invoices/:id/receipt", s.GetInvoiceReceipt)
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
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
