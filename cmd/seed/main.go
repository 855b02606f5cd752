// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"imprint/internal/core/id"
	"imprint/internal/core/tenant"
	"imprint/internal/infrastructure/storage/postgres"
	"imprint/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed admin user
	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedTenantRegistry(ctx, dbURL, log); err != nil {
			log.Warnw("failed to seed tenant registry", "error", err)
		}
		if err := seedDemoData(ctx, pool, log, adminUserID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@imprint.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND NOT deletion_mark`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now()

	// Create admin user
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			is_active, is_admin, email_verified, email_verified_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', true, true, true, $4, 1)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, granted_by)
			VALUES ($1, $2, NULL)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, adminUserID id.ID) error {
	log.Info("seeding demo data...")

	// 1. Seed Organization (Root entity)
	// Required for documents in later stages
	orgID := id.New()
	orgCode := "ORG-001"
	commandTag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_organizations (id, code, name, full_name, version, deletion_mark, attributes)
		VALUES ($1, $2, $3, $4, 1, false, '{}')
		ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
	`, orgID, orgCode, "Meridian Press", "Meridian Press Publishing Ltd")
	if err != nil {
		log.Warnw("failed to seed organization", "error", err)
	}

	orgAvailable := err == nil
	if orgAvailable && commandTag.RowsAffected() == 0 {
		err = pool.Pool.QueryRow(ctx, `
			SELECT id FROM cat_organizations WHERE code = $1 AND deletion_mark = FALSE
		`, orgCode).Scan(&orgID)
		if err != nil {
			log.Warnw("failed to fetch existing organization", "code", orgCode, "error", err)
			orgAvailable = false
		}
	}

	if orgAvailable && !id.IsNil(adminUserID) && !id.IsNil(orgID) {
		_, orgErr := pool.Pool.Exec(ctx, `
			INSERT INTO user_organizations (user_id, organization_id, is_default)
			VALUES ($1, $2, true)
			ON CONFLICT (user_id, organization_id) DO NOTHING
		`, adminUserID, orgID)
		if orgErr != nil {
			log.Warnw("failed to link admin user to organization", "error", orgErr)
		}
	}

	// 2. Seed Authors
	authors := []struct {
		name  string
		kind  string
		email string
	}{
		{"Нора Вейл", "author", "nora.veil@example.com"},
		{"Джеймс Холлоуэй", "author", "j.holloway@example.com"},
		{"Мария Санчес", "contact", "m.sanchez@example.com"},
	}

	// Map code -> UUID for contract references
	authorIDs := make(map[string]id.ID)

	for i, a := range authors {
		aid := id.New()
		code := fmt.Sprintf("AU-%03d", i+1)
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_authors (id, code, name, kind, email, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, aid, code, a.name, a.kind, a.email)
		if err != nil {
			log.Warnw("failed to seed author", "name", a.name, "error", err)
			continue
		}

		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_authors
				WHERE code = $1 AND deletion_mark = FALSE
			`, code).Scan(&aid)
			if err != nil {
				log.Warnw("failed to fetch existing author id", "code", code, "error", err)
				continue
			}
		}

		authorIDs[code] = aid
	}

	// 3. Seed Titles
	titles := []struct {
		name      string
		isbn      string
		language  string
		listPrice int64 // minor units
	}{
		{"Стеклянные реки", "978-5-0460-0001-1", "ru", 79900},
		{"Полночный архив", "978-5-0460-0002-8", "ru", 64900},
		{"Письма с перевала", "978-5-0460-0003-5", "ru", 54900},
	}

	titleIDs := make(map[string]id.ID)

	for i, t := range titles {
		tid := id.New()
		code := fmt.Sprintf("TI-%05d", i+1)
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_titles (id, code, name, isbn, language, list_price, out_of_print, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, false, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, tid, code, t.name, t.isbn, t.language, t.listPrice)
		if err != nil {
			log.Warnw("failed to seed title", "name", t.name, "error", err)
			continue
		}

		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_titles
				WHERE code = $1 AND deletion_mark = FALSE
			`, code).Scan(&tid)
			if err != nil {
				log.Warnw("failed to fetch existing title id", "code", code, "error", err)
				continue
			}
		}

		titleIDs[code] = tid
	}

	// 4. Seed Contracts with tier schedules
	contracts := []struct {
		name       string
		authorCode string
		titleCode  string
		mode       string
		advance    int64 // minor units
	}{
		{"Вейл / Стеклянные реки", "AU-001", "TI-00001", "period", 50000},
		{"Холлоуэй / Полночный архив", "AU-002", "TI-00002", "lifetime", 100000},
		{"Санчес / Письма с перевала", "AU-003", "TI-00003", "period", 0},
	}

	for i, ct := range contracts {
		authorID, aok := authorIDs[ct.authorCode]
		titleID, tok := titleIDs[ct.titleCode]
		if !aok || !tok {
			continue
		}

		ctID := id.New()
		code := fmt.Sprintf("CT-%03d", i+1)
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_contracts (id, code, name, author_id, title_id, mode, advance_amount, active, version, deletion_mark, attributes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, 1, false, '{}')
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, ctID, code, ct.name, authorID, titleID, ct.mode, ct.advance)
		if err != nil {
			log.Warnw("failed to seed contract", "name", ct.name, "error", err)
			continue
		}
		if commandTag.RowsAffected() == 0 {
			// Already seeded; tiers exist too.
			continue
		}

		// Standard two-tier schedule per format: 10% below 1000 units,
		// 15% above.
		for _, format := range []string{"ebook", "paperback", "hardcover", "audiobook"} {
			_, err = pool.Pool.Exec(ctx, `
				INSERT INTO cat_contract_tiers (line_id, contract_id, format, tier_no, min_quantity, max_quantity, rate)
				VALUES ($1, $2, $3, 1, 0, 1000, 0.10), ($4, $2, $3, 2, 1000, NULL, 0.15)
			`, id.New(), ctID, format, id.New())
			if err != nil {
				log.Warnw("failed to seed contract tiers", "contract", code, "format", format, "error", err)
			}
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}

func seedTenantRegistry(ctx context.Context, dbURL string, log *logger.Logger) error {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		log.Warn("META_DATABASE_URL is not set; skipping tenant registry seed")
		return nil
	}

	metaPool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		return fmt.Errorf("connect meta database: %w", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		return fmt.Errorf("ping meta database: %w", err)
	}

	tenantSlug := os.Getenv("TENANT_SLUG")
	if tenantSlug == "" {
		tenantSlug = "demo"
	}

	tenantName := os.Getenv("TENANT_NAME")
	if tenantName == "" {
		tenantName = "Demo Tenant"
	}

	tenantPlan := os.Getenv("TENANT_PLAN")
	if tenantPlan == "" {
		tenantPlan = string(tenant.PlanStandard)
	}

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("parse tenant database url: %w", err)
	}

	dbHost := dbConfig.ConnConfig.Host
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := int(dbConfig.ConnConfig.Port)
	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbConfig.ConnConfig.Database
	if dbName == "" {
		dbName = "imprint"
	}

	var existingID string
	err = metaPool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, tenantSlug).Scan(&existingID)
	if err == nil {
		log.Infow("tenant already exists in registry", "slug", tenantSlug, "tenant_id", existingID)
		return nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check tenant exists: %w", err)
	}

	registry := tenant.NewPostgresRegistry(metaPool)
	newTenant := &tenant.Tenant{
		Slug:        tenantSlug,
		DisplayName: tenantName,
		DBName:      dbName,
		DBHost:      dbHost,
		DBPort:      dbPort,
		Status:      tenant.StatusActive,
		Plan:        tenant.Plan(tenantPlan),
		Settings:    map[string]any{},
	}

	if err := registry.Create(ctx, newTenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	log.Infow("tenant seeded in registry", "slug", tenantSlug, "tenant_id", newTenant.ID)
	return nil
}
