// Package main is the entry point for the Imprint background worker.
// Multi-tenant architecture: processes jobs for all tenants.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"imprint/internal/core/security"
	"imprint/internal/core/tenant"
	"imprint/internal/domain/catalogs/author"
	"imprint/internal/domain/catalogs/contract"
	"imprint/internal/domain/registers/ledger"
	"imprint/internal/domain/royalty"
	"imprint/internal/domain/statements"
	"imprint/internal/infrastructure/cache"
	"imprint/internal/infrastructure/notify"
	infranumerator "imprint/internal/infrastructure/numerator"
	"imprint/internal/infrastructure/render"
	"imprint/internal/infrastructure/storage/postgres"
	"imprint/internal/infrastructure/storage/postgres/catalog_repo"
	"imprint/internal/infrastructure/storage/postgres/document_repo"
	"imprint/internal/infrastructure/storage/postgres/register_repo"
	"imprint/pkg/logger"
)

const outboxBatchSize = 100

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting imprint multi-tenant worker")

	// Connect to meta-database
	metaPool, err := pgxpool.New(ctx, mustEnv("META_DATABASE_URL"))
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer metaPool.Close()

	// Create tenant registry and manager
	registry := tenant.NewPostgresRegistry(metaPool)

	managerCfg := tenant.DefaultManagerConfig()
	managerCfg.DBUser = mustEnv("TENANT_DB_USER")
	managerCfg.DBPassword = mustEnv("TENANT_DB_PASSWORD")
	managerCfg.PoolIdleTimeout = 10 * time.Minute // Shorter for worker

	manager := tenant.NewManager(managerCfg, registry, log)
	defer manager.Close()

	dispatchRules, err := security.NewRuleEngine()
	if err != nil {
		log.Fatalw("failed to compile dispatch rules", "error", err)
	}
	if expr := getEnv("STATEMENT_DISPATCH_RULE", ""); expr != "" {
		if err := dispatchRules.SetRule(security.RuleStatementDispatch, expr); err != nil {
			log.Fatalw("invalid STATEMENT_DISPATCH_RULE", "error", err)
		}
	}

	// Start multi-tenant worker
	worker := NewMultiTenantWorker(manager, dispatchRules, newMailer(log), log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// newMailer builds the statement mailer. Without SMTP settings the worker
// only logs deliveries, which is what dev and preview environments want.
func newMailer(log *logger.Logger) statements.Mailer {
	host := getEnv("SMTP_HOST", "")
	if host == "" {
		log.Info("SMTP_HOST not set, statement delivery will be logged only")
		return notify.NewLogMailer()
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     host,
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     mustEnv("SMTP_FROM"),
	})
}

// MultiTenantWorker processes background jobs for all tenants.
type MultiTenantWorker struct {
	manager *tenant.Manager
	rules   *security.RuleEngine
	mailer  statements.Mailer
	log     *logger.Logger
}

func NewMultiTenantWorker(manager *tenant.Manager, rules *security.RuleEngine, mailer statements.Mailer, log *logger.Logger) *MultiTenantWorker {
	return &MultiTenantWorker{
		manager: manager,
		rules:   rules,
		mailer:  mailer,
		log:     log.WithComponent("worker"),
	}
}

// Run starts worker goroutines for all active tenants.
func (w *MultiTenantWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	var wg sync.WaitGroup
	tenantContexts := make(map[string]context.CancelFunc) // tenant_id(UUID) -> cancel
	var mu sync.Mutex

	// Initial start
	w.refreshTenants(ctx, &wg, tenantContexts, &mu)

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, cancel := range tenantContexts {
				cancel()
			}
			mu.Unlock()
			wg.Wait()
			return

		case <-ticker.C:
			w.refreshTenants(ctx, &wg, tenantContexts, &mu)
		}
	}
}

func (w *MultiTenantWorker) refreshTenants(ctx context.Context, wg *sync.WaitGroup, tenantContexts map[string]context.CancelFunc, mu *sync.Mutex) {
	tenants, err := w.manager.GetActiveTenants(ctx)
	if err != nil {
		w.log.Errorw("failed to get active tenants", "error", err)
		return
	}

	activeTenants := make(map[string]*tenant.Tenant, len(tenants))
	for _, t := range tenants {
		activeTenants[t.ID] = t
	}

	mu.Lock()
	defer mu.Unlock()

	for tenantID, cancel := range tenantContexts {
		if _, active := activeTenants[tenantID]; !active {
			cancel()
			delete(tenantContexts, tenantID)
			w.log.Infow("stopped worker for inactive tenant", "tenant_id", tenantID)
		}
	}

	for _, t := range tenants {
		if _, exists := tenantContexts[t.ID]; !exists {
			tenantCtx, tenantCancel := context.WithCancel(ctx)
			tenantContexts[t.ID] = tenantCancel

			wg.Add(1)
			go func(t *tenant.Tenant) {
				defer wg.Done()
				w.runTenantWorker(tenantCtx, t)
			}(t)

			w.log.Infow("started worker for tenant", "tenant_id", t.ID)
		}
	}
}

func (w *MultiTenantWorker) runTenantWorker(ctx context.Context, t *tenant.Tenant) {
	mp, err := w.manager.GetPool(ctx, t.ID)
	if err != nil {
		w.log.Errorw("failed to get pool for tenant", "tenant_id", t.ID, "error", err)
		return
	}

	txManager := postgres.NewTxManagerFromRawPool(mp.Pool())

	// The domain layer resolves its pool and transaction manager from
	// context, same as a request would.
	ctx = tenant.WithPool(ctx, mp.Pool())
	ctx = tenant.WithTxManager(ctx, txManager)

	// Feature flags are tenant-scoped; the cache invalidates itself via
	// LISTEN/NOTIFY so a dispatch pause takes effect without a restart.
	schemaCache := cache.NewSchemaCache(mp.Pool())
	if err := schemaCache.Start(ctx); err != nil {
		w.log.Errorw("failed to start schema cache", "tenant_id", t.ID, "error", err)
		return
	}
	defer schemaCache.Stop()
	flags := cache.NewCacheBackedFlags(schemaCache)

	relay := postgres.NewOutboxRelay(mp.Pool(), outboxBatchSize, w.newStatementEventHandler(txManager, flags))

	pollInterval := 500 * time.Millisecond
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("stopping worker for tenant", "tenant_id", t.ID)
			return
		case <-ticker.C:
			if n, err := relay.ProcessBatch(ctx); err != nil {
				w.log.Errorw("outbox batch failed", "tenant_id", t.ID, "error", err)
			} else if n > 0 {
				w.log.Debugw("processed outbox batch", "tenant_id", t.ID, "count", n)
			}
		case <-cleanupTicker.C:
			if _, err := relay.MoveToDLQ(ctx); err != nil {
				w.log.Errorw("move to DLQ failed", "tenant_id", t.ID, "error", err)
			}
			w.cleanupSessions(ctx, mp.Pool(), t.ID)
			w.cleanupIdempotency(ctx, mp.Pool(), t.ID)
		}
	}
}

// newStatementEventHandler wires the statement dispatcher for one tenant.
// Generated statements are rendered to PDF and mailed when the dispatch
// rule allows; everything else in the outbox is acknowledged untouched.
func (w *MultiTenantWorker) newStatementEventHandler(txManager *postgres.TxManager, flags security.FeatureFlagProvider) postgres.OutboxHandler {
	statementRepo := document_repo.NewStatementRepo()
	ledgerService := ledger.NewService(register_repo.NewLedgerRepo())
	numeratorService := infranumerator.NewFromContext()
	contractService := contract.NewService(catalog_repo.NewContractRepo(), numeratorService)
	authorService := author.NewService(catalog_repo.NewAuthorRepo(), numeratorService)

	composer := royalty.NewComposer(contractService, ledgerService, statements.NewRecoupmentSource(statementRepo))

	service := statements.NewService(
		statementRepo,
		composer,
		royalty.NewOrchestrator(composer, 0),
		contractService,
		contractService,
		authorService,
		numeratorService,
		postgres.NewStatementEventPublisher(postgres.NewOutboxPublisher(txManager)),
		w.rules,
		txManager,
	)

	dispatcher := statements.NewDispatcher(service, render.NewPDFRenderer(), w.mailer)

	return &statementEventHandler{dispatcher: dispatcher, flags: flags, log: w.log}
}

type statementEventHandler struct {
	dispatcher *statements.Dispatcher
	flags      security.FeatureFlagProvider
	log        *logger.Logger
}

func (h *statementEventHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	switch msg.EventType {
	case statements.EventStatementGenerated:
		if h.flags.IsEnabled(ctx, security.FlagStatementDispatchPaused) {
			// Kill switch: leave the statement in draft, it can still be
			// sent manually. The event is acknowledged, not retried.
			h.log.Infow("statement dispatch paused, skipping", "statement_id", msg.AggregateID)
			return nil
		}
		return h.dispatcher.Dispatch(ctx, msg.AggregateID)
	default:
		// sent/voided events have no worker-side effect yet
		return nil
	}
}

func (w *MultiTenantWorker) cleanupSessions(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	result, err := pool.Exec(ctx, `
		DELETE FROM auth_refresh_tokens
		WHERE expires_at < NOW() OR revoked = true
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up expired sessions", "tenant_id", tenantID, "count", result.RowsAffected())
	}
}

func (w *MultiTenantWorker) cleanupIdempotency(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	result, err := pool.Exec(ctx, `
		DELETE FROM sys_idempotency
		WHERE created_at < NOW() - INTERVAL '24 hours'
	`)
	if err != nil {
		return
	}

	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up idempotency keys", "tenant_id", tenantID, "count", result.RowsAffected())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
