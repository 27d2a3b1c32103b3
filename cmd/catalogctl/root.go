package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"chaincatalog/internal/auth"
	"chaincatalog/internal/config"
	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/repository"
	"chaincatalog/internal/repository/bolt"
	"chaincatalog/internal/service/actionlog"
	"chaincatalog/internal/service/catalog"
	"chaincatalog/internal/service/exportimport"
)

type rootOptions struct {
	storage string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Export, import and inspect chain catalog template archives",
		Long: `catalogctl works directly against the catalog storage configured through
the environment (DATABASE_URL, TABLE_PREFIX, STORAGE). Archives use the same
layout as the HTTP API.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "storage backend override (postgres or memory)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newExportCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newInspectCmd(opts))
	return cmd
}

// session is everything a command needs to run one export or import
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	service catalogSvc.TemplateExportImportService
	close   func()
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) config() *config.Config {
	cfg := config.Load()
	if o.storage != "" {
		cfg.Storage = o.storage
	}
	return cfg
}

// openSession wires the export/import service. dryRun forces an empty
// in-memory store and skips the audit log.
func (o *rootOptions) openSession(ctx context.Context, errOut io.Writer, dryRun bool) (*session, error) {
	cfg := o.config()
	if dryRun {
		cfg.Storage = repository.StorageMemory
	}
	logger := o.logger(errOut)

	backend, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers := []func(){backend.Close}

	var audit catalogSvc.ActionLogger = discardAudit{}
	if !dryRun {
		storage, err := bolt.Open(cfg.ActionLogPath)
		if err != nil {
			backend.Close()
			return nil, err
		}
		closers = append(closers, func() { _ = storage.Close() })
		audit = actionlog.NewLogger(storage, logger)
	}

	layout := exportimport.TemplateLayout(cfg)
	service := exportimport.NewTemplateExportImportService(
		backend.Store,
		backend.TxManager,
		catalog.NewTemplateService(backend.Store, audit, logger),
		exportimport.NewSerializer(layout),
		exportimport.NewExtractor(layout, cfg.MaxUploadMB<<20, logger),
		audit,
		nil,
		exportimport.Options{TempDir: cfg.ImportTempDir, ArchiveExtension: config.ArchiveExtension},
		logger,
	)

	return &session{
		cfg:     cfg,
		logger:  logger,
		service: service,
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

// withOperator tags audit records with the local account
func withOperator(ctx context.Context) context.Context {
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	if name == "" {
		return ctx
	}
	return auth.WithUserID(ctx, fmt.Sprintf("cli:%s", name))
}

type discardAudit struct{}

func (discardAudit) LogAction(ctx context.Context, action models.ActionLog) {}

func (discardAudit) List(ctx context.Context, limit int) ([]models.ActionLog, error) {
	return nil, nil
}
