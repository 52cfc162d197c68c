package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"auditcore/internal/config"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
	"auditcore/internal/repository/postgres"
	postgresLifecycle "auditcore/internal/repository/postgres/lifecycle"
	serviceLifecycle "auditcore/internal/service/lifecycle"
	"auditcore/internal/workflowdef"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Demo identities used when seeding sample data outside production.
const (
	demoOwnerID    = "00000000-0000-0000-0000-000000000001"
	demoReviewerID = "00000000-0000-0000-0000-000000000002"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	clearData := flag.Bool("clear-data", false, "Clear all documents and workflows (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Clear existing data before (re)seeding, or exit if that is all we do
	log.Println("🧹 Clearing existing lifecycle data...")
	if err := clearLifecycleData(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create repositories and services
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresLifecycle.NewDocumentRepository(repoConfig)
	versionRepo := postgresLifecycle.NewVersionRepository(repoConfig)
	workflowRepo := postgresLifecycle.NewWorkflowRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	templates, err := workflowdef.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load workflow templates: %v", err)
	}

	registry := serviceLifecycle.NewDocumentRegistry(docRepo, logger)
	sessions := serviceLifecycle.NewSessionCache(5 * time.Minute)
	versionStore := serviceLifecycle.NewVersionStore(docRepo, versionRepo, txManager, sessions, logger)
	engine := serviceLifecycle.NewWorkflowEngine(docRepo, workflowRepo, templates, logger)

	// Seed demo documents with version history and a running workflow
	log.Println("📝 Seeding demo documents...")

	for i, seed := range getSeedDocuments() {
		doc, err := registry.RegisterDocument(ctx, &lifecycleSvc.RegisterDocumentRequest{
			Title:   seed.title,
			OwnerID: demoOwnerID,
		})
		if err != nil {
			log.Printf("❌ Failed to register document '%s': %v", seed.title, err)
			continue
		}

		for _, content := range seed.versions {
			if _, err := versionStore.CreateVersion(ctx, &lifecycleSvc.CreateVersionRequest{
				DocumentID: doc.ID,
				CreatedBy:  demoOwnerID,
				Content:    stringPtr(content),
			}); err != nil {
				log.Printf("❌ Failed to create version for '%s': %v", seed.title, err)
			}
		}

		if seed.workflowTemplate != "" {
			if _, err := engine.StartWorkflow(ctx, &lifecycleSvc.StartWorkflowRequest{
				DocumentID: doc.ID,
				TemplateID: seed.workflowTemplate,
			}); err != nil {
				log.Printf("❌ Failed to start workflow for '%s': %v", seed.title, err)
			}
		}

		log.Printf("✅ Seeded document %d: %s (ID: %s, versions: %d)",
			i+1, seed.title, doc.ID, len(seed.versions))
	}

	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create documents table
	createDocuments := `
		CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			title TEXT NOT NULL,
			owner_id UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDocuments); err != nil {
		return err
	}

	// Create document versions table
	createVersions := `
		CREATE TABLE IF NOT EXISTS ` + tables.Versions + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			version_number INTEGER NOT NULL,
			content TEXT,
			file_reference JSONB,
			notes TEXT,
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(document_id, version_number)
		)
	`
	if _, err := pool.Exec(ctx, createVersions); err != nil {
		return err
	}

	// Create document workflows table
	createWorkflows := `
		CREATE TABLE IF NOT EXISTS ` + tables.Workflows + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			template_id TEXT NOT NULL,
			current_step INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'in_progress',
			started_at TIMESTAMPTZ DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			timeout_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createWorkflows); err != nil {
		return err
	}

	// Create workflow history table
	createHistory := `
		CREATE TABLE IF NOT EXISTS ` + tables.History + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			workflow_id UUID NOT NULL REFERENCES ` + tables.Workflows + `(id) ON DELETE CASCADE,
			step_number INTEGER NOT NULL,
			action TEXT NOT NULL,
			performed_by UUID NOT NULL,
			performed_at TIMESTAMPTZ DEFAULT NOW(),
			notes TEXT,
			status TEXT NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, createHistory); err != nil {
		return err
	}

	// Create indexes. The partial unique index is load-bearing: it is what
	// guarantees at most one in-progress workflow per document.
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `versions_document ON ` + tables.Versions + `(document_id, version_number DESC)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_` + tablePrefix + `workflows_one_active ON ` + tables.Workflows + `(document_id) WHERE status = 'in_progress'`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `workflows_document ON ` + tables.Workflows + `(document_id, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `workflows_timeout ON ` + tables.Workflows + `(timeout_at) WHERE status = 'in_progress'`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `history_workflow ON ` + tables.History + `(workflow_id, performed_at)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.History,
		tables.Workflows,
		tables.Versions,
		tables.Documents,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearLifecycleData removes all rows; cascades cover versions, workflows
// and history.
func clearLifecycleData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	_, err := pool.Exec(ctx, "DELETE FROM "+tables.Documents)
	return err
}

type seedDocument struct {
	title            string
	versions         []string
	workflowTemplate string
}

func getSeedDocuments() []seedDocument {
	return []seedDocument{
		{
			title: "Q2 Financial Controls Review",
			versions: []string{
				"Initial draft of the Q2 financial controls review. Scope covers revenue recognition and procurement approvals.",
				"Revised draft incorporating feedback from the controls team. Added procurement sampling methodology.",
				"Final draft submitted for approval. All open comments resolved.",
			},
			workflowTemplate: "standard-audit",
		},
		{
			title: "Vendor Onboarding Compliance Checklist",
			versions: []string{
				"First pass at the vendor onboarding checklist covering sanctions screening and data handling terms.",
				"Added contract retention requirements per legal review.",
			},
			workflowTemplate: "expedited-review",
		},
		{
			title: "Access Control Policy",
			versions: []string{
				"Baseline access control policy draft. Quarterly entitlement reviews, least privilege defaults.",
			},
		},
	}
}

// stringPtr returns a pointer to a string
func stringPtr(s string) *string {
	return &s
}
