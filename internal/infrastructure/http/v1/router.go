// Package v1 provides HTTP API version 1.
package v1

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"imprint/internal/core/numerator"
	"imprint/internal/core/security"
	"imprint/internal/core/tenant"
	"imprint/internal/domain/audit"
	"imprint/internal/domain/auth"
	"imprint/internal/domain/catalogs/author"
	"imprint/internal/domain/catalogs/contract"
	"imprint/internal/domain/catalogs/organization"
	"imprint/internal/domain/catalogs/title"
	"imprint/internal/domain/documents/returns_batch"
	"imprint/internal/domain/documents/sales_batch"
	"imprint/internal/domain/posting"
	"imprint/internal/domain/registers/ledger"
	"imprint/internal/domain/reports"
	"imprint/internal/domain/royalty"
	"imprint/internal/domain/statements"
	"imprint/internal/infrastructure/http/v1/handlers"
	"imprint/internal/infrastructure/http/v1/middleware"
	"imprint/internal/infrastructure/render"
	"imprint/internal/infrastructure/storage/postgres"
	"imprint/internal/infrastructure/storage/postgres/catalog_repo"
	"imprint/internal/infrastructure/storage/postgres/document_repo"
	"imprint/internal/infrastructure/storage/postgres/register_repo"
	"imprint/internal/infrastructure/storage/postgres/report_repo"
	"imprint/internal/metadata"
	"imprint/pkg/logger"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// MetadataRegistry stores entity definitions
	MetadataRegistry *metadata.Registry

	// DispatchRules gates automatic statement delivery. Optional.
	DispatchRules *security.RuleEngine

	// BatchWorkers bounds the statement batch worker pool. Zero uses the
	// orchestrator default.
	BatchWorkers int
}

// NewRouter creates and configures the Gin router for multi-tenant architecture.
func NewRouter(cfg RouterConfig) *gin.Engine {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandlerMultiTenant(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/tenants", healthHandler.TenantsStats) // Admin endpoint for tenant stats
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes - need TenantDB middleware BEFORE auth
		registerAuthRoutes(v1, cfg)

		// Protected endpoints - TenantDB runs first, then Auth
		protected := v1.Group("")
		protected.Use(middleware.TenantDB(cfg.TenantManager)) // 1. Resolve tenant, get DB pool
		protected.Use(middleware.Auth(cfg.JWTValidator))      // 2. Validate JWT
		protected.Use(middleware.UserContext())               // 3. Add UserID to context for domain layer

		// Apply idempotency middleware for mutating operations
		if cfg.IdempotencyEnabled {
			protected.Use(idempotencyMiddleware(10 * time.Minute))
		}

		// Register entity routes
		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
		registerStatementRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
		registerMetaRoutes(protected, cfg)
	}

	return router
}

// idempotencyMiddleware creates idempotency middleware that uses tenant pool + TxManager from context.
func idempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		pool := tenant.MustGetPool(ctx)
		txm := postgres.MustGetTxManager(ctx)
		store := postgres.NewIdempotencyStoreFromRawPool(pool, txm, ttl)
		middleware.Idempotency(store)(c)
	}
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need tenant for DB access)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.TenantDB(cfg.TenantManager))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.TenantDB(cfg.TenantManager))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// Note: Repos and services are created once but TxManager is obtained from context per-request

	// --- AUTHORS ---
	{
		repo := catalog_repo.NewAuthorRepo()
		service := author.NewService(repo, cfg.Numerator)
		handler := handlers.NewAuthorHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/authors"), handler, "catalog:author")
	}

	// --- TITLES ---
	{
		repo := catalog_repo.NewTitleRepo()
		service := title.NewService(repo, cfg.Numerator)
		handler := handlers.NewTitleHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/titles"), handler, "catalog:title")
	}

	// --- CONTRACTS ---
	{
		repo := catalog_repo.NewContractRepo()
		service := contract.NewService(repo, cfg.Numerator)
		handler := handlers.NewContractHandler(baseHandler, service)

		group := catalogs.Group("/contracts")
		RegisterCatalogRoutes(group, handler, "catalog:contract")
		group.GET("/by-author/:authorId", middleware.RequirePermission("catalog:contract:read"), handler.ByAuthor)
		group.POST("/:id/deactivate", middleware.RequirePermission("catalog:contract:update"), handler.Deactivate)
	}

	// --- ORGANIZATIONS ---
	{
		repo := catalog_repo.NewOrganizationRepo()
		service := organization.NewService(repo, cfg.Numerator)
		handler := handlers.NewOrganizationHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/organizations"), handler, "catalog:organization")
	}
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	// Create shared dependencies for documents
	ledgerRepo := register_repo.NewLedgerRepo()
	ledgerService := ledger.NewService(ledgerRepo)
	postingEngine := posting.NewEngine(ledgerService)

	// --- SALES BATCH ---
	{
		repo := document_repo.NewSalesBatchRepo()
		service := sales_batch.NewService(repo, postingEngine, cfg.Numerator, nil)

		// Register audit hooks
		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *sales_batch.SalesBatch) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *sales_batch.SalesBatch) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewSalesBatchHandler(baseHandler, service)
		RegisterDocumentRoutes(docsGroup.Group("/sales-batches"), handler, "document:sales_batch")
	}

	// --- RETURNS BATCH ---
	{
		repo := document_repo.NewReturnsBatchRepo()
		service := returns_batch.NewService(repo, postingEngine, cfg.Numerator, nil)

		// Register audit hooks
		service.Hooks().OnBeforeCreate(func(ctx context.Context, doc *returns_batch.ReturnsBatch) error {
			audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
			return nil
		})
		service.Hooks().OnBeforeUpdate(func(ctx context.Context, doc *returns_batch.ReturnsBatch) error {
			audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
			return nil
		})

		handler := handlers.NewReturnsBatchHandler(baseHandler, service)
		group := docsGroup.Group("/returns-batches")
		RegisterDocumentRoutes(group, handler, "document:returns_batch")
		group.POST("/:id/approve", middleware.RequirePermission("document:returns_batch:approve"), handler.Approve)
	}
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	// Sales ledger register
	{
		ledgerRepo := register_repo.NewLedgerRepo()
		ledgerService := ledger.NewService(ledgerRepo)
		ledgerHandler := handlers.NewLedgerHandler(baseHandler, ledgerService)

		ledgerGroup := registers.Group("/ledger")
		ledgerGroup.GET("/balances", middleware.RequirePermission("register:ledger:read"), ledgerHandler.GetBalances)
		ledgerGroup.GET("/movements", middleware.RequirePermission("register:ledger:read"), ledgerHandler.GetMovements)
		ledgerGroup.POST("/recalculate", middleware.RequirePermission("register:ledger:admin"), ledgerHandler.Recalculate)
	}
}

// registerStatementRoutes registers the statement calculation endpoints.
func registerStatementRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	// Calculation engine over the contract catalog and the sales ledger.
	// Recoupment history comes from previously persisted statements.
	statementRepo := document_repo.NewStatementRepo()
	ledgerService := ledger.NewService(register_repo.NewLedgerRepo())
	contractService := contract.NewService(catalog_repo.NewContractRepo(), cfg.Numerator)
	authorService := author.NewService(catalog_repo.NewAuthorRepo(), cfg.Numerator)

	composer := royalty.NewComposer(contractService, ledgerService, statements.NewRecoupmentSource(statementRepo))
	orchestrator := royalty.NewOrchestrator(composer, cfg.BatchWorkers)
	events := postgres.NewStatementEventPublisher(postgres.NewOutboxPublisher(nil))

	service := statements.NewService(
		statementRepo,
		composer,
		orchestrator,
		contractService,
		contractService,
		authorService,
		cfg.Numerator,
		events,
		cfg.DispatchRules,
		nil, // TxManager from context (DB-per-tenant)
	)

	handler := handlers.NewStatementHandler(baseHandler, service, render.NewPDFRenderer())

	group := rg.Group("/statements")
	group.POST("/preview", middleware.RequirePermission("statement:preview"), handler.Preview)
	group.POST("", middleware.RequirePermission("statement:generate"), handler.Generate)
	group.POST("/batch", middleware.RequirePermission("statement:generate"), handler.GenerateBatch)
	group.POST("/batch/preview", middleware.RequirePermission("statement:preview"), handler.PreviewBatch)
	group.GET("", middleware.RequirePermission("statement:read"), handler.List)
	group.GET("/:id", middleware.RequirePermission("statement:read"), handler.Get)
	group.GET("/:id/pdf", middleware.RequirePermission("statement:read"), handler.Download)
	group.GET("/by-number/:number", middleware.RequirePermission("statement:read"), handler.GetByNumber)
	group.POST("/:id/send", middleware.RequirePermission("statement:send"), handler.MarkSent)
	group.POST("/:id/void", middleware.RequirePermission("statement:void"), handler.Void)
}

// registerMetaRoutes registers metadata/schema endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.MetadataRegistry == nil {
		return
	}

	handler := handlers.NewMetadataHandler(cfg.MetadataRegistry)
	meta := rg.Group("/meta")
	{
		meta.GET("", handler.ListEntities)
		meta.GET("/:name", handler.GetEntity)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportsGroup := rg.Group("/reports")
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo()
	reportService := reports.NewService(reportRepo)
	reportHandler := handlers.NewReportsHandler(baseHandler, reportService)

	reportsGroup.GET("/sales-summary", middleware.RequirePermission("report:sales:read"), reportHandler.GetSalesSummary)
	reportsGroup.GET("/royalty-liability", middleware.RequirePermission("report:royalty:read"), reportHandler.GetRoyaltyLiability)
	reportsGroup.GET("/document-journal", middleware.RequirePermission("report:documents:read"), reportHandler.GetDocumentJournal)
}
