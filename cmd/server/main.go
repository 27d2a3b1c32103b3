package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"chaincatalog/internal/auth"
	"chaincatalog/internal/config"
	"chaincatalog/internal/handler"
	"chaincatalog/internal/metrics"
	"chaincatalog/internal/middleware"
	"chaincatalog/internal/repository"
	"chaincatalog/internal/repository/bolt"
	"chaincatalog/internal/service/actionlog"
	"chaincatalog/internal/service/catalog"
	"chaincatalog/internal/service/catalog/templates"
	"chaincatalog/internal/service/exportimport"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logOutput, closeLog, err := config.LogOutput(cfg)
	if err != nil {
		log.Fatalf("Failed to set up log output: %v", err)
	}
	defer closeLog()

	logger := config.NewLogger(cfg, logOutput)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage", cfg.Storage,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer backend.Close()
	store, txManager := backend.Store, backend.TxManager

	actionLogStorage, err := bolt.Open(cfg.ActionLogPath)
	if err != nil {
		log.Fatalf("Failed to open action log: %v", err)
	}
	defer actionLogStorage.Close()
	actionLogger := actionlog.NewLogger(actionLogStorage, logger)

	m := metrics.New()

	// Live deployments are owned by the runtime; only the stored records are removed here
	cleaner := catalog.DeploymentCleanerFunc(func(ctx context.Context, chainID string) error {
		logger.Debug("deployment cleanup requested", "chain_id", chainID)
		return nil
	})

	resolver := templates.NewDefaultResolver(store.Templates(), logger)
	folderService := catalog.NewFolderService(store, txManager, cleaner, actionLogger, logger)
	chainService := catalog.NewChainService(store, txManager, cleaner, resolver, actionLogger, logger)
	templateService := catalog.NewTemplateService(store, actionLogger, logger)

	layout := exportimport.TemplateLayout(cfg)
	exportImportService := exportimport.NewTemplateExportImportService(
		store,
		txManager,
		templateService,
		exportimport.NewSerializer(layout),
		exportimport.NewExtractor(layout, cfg.MaxUploadMB<<20, logger),
		actionLogger,
		m,
		exportimport.Options{TempDir: cfg.ImportTempDir, ArchiveExtension: config.ArchiveExtension},
		logger,
	)

	handlers := &handler.Handlers{
		Folders:      handler.NewFolderHandler(folderService, logger),
		Chains:       handler.NewChainHandler(chainService, logger),
		Templates:    handler.NewTemplateHandler(templateService, logger),
		ExportImport: handler.NewExportImportHandler(exportImportService, config.ArchiveExtension, cfg.MaxUploadMB, logger),
		ActionLogs:   handler.NewActionLogHandler(actionLogger, logger),
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)
	mux.Handle("GET /metrics", m.Handler())

	var verifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(cfg.JWKSURL, cfg.JWTRole, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("JWKS_URL not set, authentication disabled")
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(verifier, logger, "/health", "/metrics")(h)
	h = middleware.Recovery(logger)(h)
	h = m.HTTPMiddleware(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  60 * time.Second, // archive uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
