package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ocrasesorias/facturas/internal/billing"
	billingStore "github.com/ocrasesorias/facturas/internal/billing/store"
	"github.com/ocrasesorias/facturas/internal/config"
	"github.com/ocrasesorias/facturas/internal/database"
	"github.com/ocrasesorias/facturas/internal/extraction"
	"github.com/ocrasesorias/facturas/internal/extractor"
	"github.com/ocrasesorias/facturas/internal/gate"
	facturasHttp "github.com/ocrasesorias/facturas/internal/http"
	"github.com/ocrasesorias/facturas/internal/http/billingapi"
	"github.com/ocrasesorias/facturas/internal/http/invoices"
	"github.com/ocrasesorias/facturas/internal/invoice"
	invoiceStore "github.com/ocrasesorias/facturas/internal/invoice/store"
	"github.com/ocrasesorias/facturas/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		files     = storage.New(cfg.Storage.Endpoint, cfg.Storage.ServiceKey, cfg.Storage.SignedURLTTL)
		extClient = extractor.New(cfg.Extractor.URL, cfg.Extractor.Timeout)
		extGate   = gate.New(cfg.Extractor.MaxInFlight)
	)

	var (
		invoiceRepo = invoiceStore.New(db)

		billingService = billing.NewService(billingStore.New(db))
		invoiceService = invoice.NewService(invoiceRepo, files)

		extractionService = extraction.NewService(
			invoiceRepo, extClient, files, billingService, extGate, cfg.Extractor.ToleranceCents)
	)

	var (
		invoicesH = invoices.NewHandler(invoiceService, extractionService, cfg.Storage.Bucket)
		billingH  = billingapi.NewHandler(billingService)
	)

	router := facturasHttp.New(invoicesH, billingH, cfg.Auth.JWTSecret, cfg.Server.AllowedOrigins)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
