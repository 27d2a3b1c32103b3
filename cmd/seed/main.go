package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"chaincatalog/internal/config"
	models "chaincatalog/internal/domain/models/catalog"
	catalogSvc "chaincatalog/internal/domain/services/catalog"
	"chaincatalog/internal/repository/postgres"
	postgresCatalog "chaincatalog/internal/repository/postgres/catalog"
	"chaincatalog/internal/service/catalog"
	"chaincatalog/internal/service/catalog/templates"
)

// seedAudit drops audit records; seeding is not a user action
type seedAudit struct{}

func (seedAudit) LogAction(ctx context.Context, action models.ActionLog) {}

func (seedAudit) List(ctx context.Context, limit int) ([]models.ActionLog, error) {
	return nil, nil
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	clearData := flag.Bool("clear-data", false, "Clear all catalog data (keep schema)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.RunSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	log.Println("⚠️  Clearing existing catalog data...")
	if err := clearCatalog(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	store := postgresCatalog.NewStore(repoConfig)
	txManager := postgresCatalog.NewTransactionManager(repoConfig)

	audit := seedAudit{}
	resolver := templates.NewDefaultResolver(store.Templates(), logger)
	folderService := catalog.NewFolderService(store, txManager, nil, audit, logger)
	chainService := catalog.NewChainService(store, txManager, nil, resolver, audit, logger)
	templateService := catalog.NewTemplateService(store, audit, logger)

	log.Println("📝 Seeding templates, folders and chains...")
	if err := seedCatalog(ctx, folderService, chainService, templateService); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	log.Println("✅ Seeding complete")
}

// clearCatalog empties every catalog table; cascades take care of children
func clearCatalog(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	query := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables.All(), ", "))
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate catalog tables: %w", err)
	}
	return nil
}

type seedFolder struct {
	name    string
	chains  []string
	folders []seedFolder
}

var seedTree = []seedFolder{
	{
		name:   "Integrations",
		chains: []string{"Order intake"},
		folders: []seedFolder{
			{name: "Billing", chains: []string{"Invoice sync", "Payment reconciliation"}},
			{name: "Shipping", chains: []string{"Carrier webhook"}},
		},
	},
	{
		name:   "Sandbox",
		chains: []string{"Echo"},
	},
}

var seedTemplates = []models.Template{
	{
		ID:          "order-to-invoice",
		Name:        "Order to invoice",
		Description: "Maps an order payload onto the invoice schema",
		Properties: map[string]any{
			"source": map[string]any{"type": "json", "schema": "order"},
			"target": map[string]any{"type": "json", "schema": "invoice"},
		},
	},
	{
		ID:   "carrier-status",
		Name: "Carrier status",
		Properties: map[string]any{
			"source": map[string]any{"type": "xml"},
			"target": map[string]any{"type": "json"},
		},
	},
}

func seedCatalog(ctx context.Context, folders catalogSvc.FolderService, chains catalogSvc.ChainService, tmpls catalogSvc.TemplateService) error {
	for i := range seedTemplates {
		if _, err := tmpls.CreateTemplate(ctx, &seedTemplates[i]); err != nil {
			return fmt.Errorf("template %s: %w", seedTemplates[i].ID, err)
		}
		log.Printf("  📄 template %s", seedTemplates[i].ID)
	}

	type pending struct {
		node     seedFolder
		parentID *string
	}
	queue := make([]pending, 0, len(seedTree))
	for _, node := range seedTree {
		queue = append(queue, pending{node: node})
	}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		folder, err := folders.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{
			Name:           next.node.name,
			ParentFolderID: next.parentID,
		})
		if err != nil {
			return fmt.Errorf("folder %s: %w", next.node.name, err)
		}
		log.Printf("  📁 %s", folder.Name)

		for _, name := range next.node.chains {
			chain, err := chains.CreateChain(ctx, &catalogSvc.CreateChainRequest{
				Name:           name,
				ParentFolderID: &folder.ID,
			})
			if err != nil {
				return fmt.Errorf("chain %s: %w", name, err)
			}
			if err := seedElements(ctx, chains, chain.ID); err != nil {
				return err
			}
			log.Printf("    🔗 %s", chain.Name)
		}

		for _, child := range next.node.folders {
			queue = append(queue, pending{node: child, parentID: &folder.ID})
		}
	}
	return nil
}

// seedElements gives every chain a service call whose response is mapped by a template
func seedElements(ctx context.Context, chains catalogSvc.ChainService, chainID string) error {
	_, err := chains.AddElement(ctx, chainID, &catalogSvc.CreateElementRequest{
		Type: models.ElementTypeServiceCall,
		Name: "Call backend",
		Properties: map[string]any{
			models.PropertyAfter: []any{
				map[string]any{
					models.PropertyType:                 models.ElementTypeMapper2,
					templates.PropertyMappingTemplateID: seedTemplates[0].ID,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("element for chain %s: %w", chainID, err)
	}
	return nil
}
