package statements

import (
	"context"
	"fmt"
	"time"

	"imprint/internal/core/apperror"
	"imprint/internal/core/id"
	"imprint/internal/core/numerator"
	"imprint/internal/core/security"
	"imprint/internal/core/tenant"
	"imprint/internal/core/tx"
	"imprint/internal/core/types"
	"imprint/internal/domain"
	"imprint/internal/domain/royalty"
	"imprint/pkg/logger"
)

// NumeratorStrategy for statement numbers. Statements are legal documents;
// gaps in the sequence raise audit questions, so strict DB-level numbering.
const NumeratorStrategy = numerator.StrategyStrict

// PayeeResolver resolves the payee identity snapshot for an author.
// Implemented by the author catalog service.
type PayeeResolver interface {
	GetPayee(ctx context.Context, authorID id.ID) (royalty.PayeeIdentity, error)
}

// ContractLister enumerates active contract terms for batch runs.
// Implemented by the contract catalog service.
type ContractLister interface {
	ListActiveTerms(ctx context.Context) ([]*royalty.ContractTerms, error)
}

// Service generates, previews and manages royalty statements.
// Preview and Generate run the exact same calculation path; Generate
// additionally persists the result and assigns a statement number.
type Service struct {
	repo         Repository
	composer     *royalty.Composer
	orchestrator *royalty.Orchestrator
	contracts    royalty.ContractRepository
	contractList ContractLister
	payees       PayeeResolver
	numerator    numerator.Generator
	events       EventPublisher       // Optional. If nil, no events are published.
	rules        *security.RuleEngine // Optional. If nil, dispatch is never automatic.
	txManager    tx.Manager           // Optional. If nil, obtained from context (DB-per-tenant).
}

// NewService creates a statement service.
func NewService(
	repo Repository,
	composer *royalty.Composer,
	orchestrator *royalty.Orchestrator,
	contracts royalty.ContractRepository,
	contractList ContractLister,
	payees PayeeResolver,
	numerator numerator.Generator,
	events EventPublisher,
	rules *security.RuleEngine,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:         repo,
		composer:     composer,
		orchestrator: orchestrator,
		contracts:    contracts,
		contractList: contractList,
		payees:       payees,
		numerator:    numerator,
		events:       events,
		rules:        rules,
		txManager:    txManager,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Preview runs the calculation without persisting anything. The returned
// calculations are byte-for-byte what Generate would store.
func (s *Service) Preview(ctx context.Context, req royalty.ComposeRequest) (*royalty.StatementCalculations, error) {
	if err := validatePeriod(req.Period); err != nil {
		return nil, err
	}
	return s.composer.Compose(ctx, req)
}

// Generate runs the calculation and persists the statement. A non-void
// statement already covering the contract+period is a conflict: void it
// first to re-run a period.
func (s *Service) Generate(ctx context.Context, req royalty.ComposeRequest) (*Statement, error) {
	if err := validatePeriod(req.Period); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForPeriod(ctx, req.AuthorID, req.ContractID, req.Period)
	if err != nil {
		return nil, fmt.Errorf("check existing statement: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("statement already exists for this contract and period").
			WithDetail("contract_id", req.ContractID.String()).
			WithDetail("period_start", req.Period.Start).
			WithDetail("period_end", req.Period.End)
	}

	calc, err := s.composer.Compose(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.persist(ctx, calc)
}

// persist is the shared tail of Generate and GenerateBatch: snapshot the
// payee, assign a number, write the statement and queue the event in one
// transaction.
func (s *Service) persist(ctx context.Context, calc *royalty.StatementCalculations) (*Statement, error) {
	terms, err := s.contracts.GetTerms(ctx, calc.ContractID)
	if err != nil {
		return nil, fmt.Errorf("resolve contract terms: %w", err)
	}

	payee, err := s.payees.GetPayee(ctx, calc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("resolve payee: %w", err)
	}

	st := NewStatement(calc, payee, terms.TitleID)
	if err := st.Validate(ctx); err != nil {
		return nil, err
	}

	cfg := numerator.DefaultConfig("RS")
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate statement number: %w", err)
	}
	st.Number = number

	txManager, err := s.getTxManager(ctx)
	if err != nil {
		return nil, err
	}

	err = txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, st); err != nil {
			return err
		}
		return s.publish(txCtx, st, EventStatementGenerated)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "statement generated",
		"statement_id", st.ID,
		"number", st.Number,
		"author_id", st.AuthorID,
		"contract_id", st.ContractID,
		"net_payable", st.NetPayable,
		"warnings", len(st.Calculations.Warnings),
	)
	return st, nil
}

// BatchItem is the per-contract result of a batch run.
type BatchItem struct {
	AuthorID    id.ID  `json:"authorId"`
	ContractID  id.ID  `json:"contractId"`
	StatementID *id.ID `json:"statementId,omitempty"`
	Number      string `json:"number,omitempty"`
	Skipped     bool   `json:"skipped"`
	Error       string `json:"error,omitempty"`
}

// BatchReport summarizes a batch run over all active contracts.
type BatchReport struct {
	Requested int         `json:"requested"`
	Generated int         `json:"generated"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Items     []BatchItem `json:"items"`
}

// GenerateBatch runs the period for every active contract. One contract's
// failure never aborts the run: calculation errors come back from the
// orchestrator per-author, and a persistence failure is recorded on its
// item while the rest of the batch proceeds. Contracts that already have
// a statement for the period are skipped, so re-running a partially failed
// batch only fills the gaps.
func (s *Service) GenerateBatch(ctx context.Context, period royalty.PeriodBounds) (*BatchReport, error) {
	reqs, skipped, err := s.collectRequests(ctx, period)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		Requested: len(reqs) + len(skipped),
		Skipped:   len(skipped),
		Items:     skipped,
	}

	result := s.orchestrator.Run(ctx, reqs)
	for _, out := range result.Outcomes {
		item := BatchItem{AuthorID: out.AuthorID, ContractID: out.ContractID}
		switch {
		case out.Err != nil:
			item.Error = out.Err.Error()
			report.Failed++
		default:
			st, err := s.persist(ctx, out.Calculations)
			if err != nil {
				item.Error = err.Error()
				report.Failed++
			} else {
				item.StatementID = &st.ID
				item.Number = st.Number
				report.Generated++
			}
		}
		report.Items = append(report.Items, item)
	}

	logger.Info(ctx, "statement batch run finished",
		"period_start", period.Start,
		"period_end", period.End,
		"requested", report.Requested,
		"generated", report.Generated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// PreviewBatch composes the period for every active contract without
// persisting. Used for pre-close review runs.
func (s *Service) PreviewBatch(ctx context.Context, period royalty.PeriodBounds) (royalty.BatchResult, error) {
	if err := validatePeriod(period); err != nil {
		return royalty.BatchResult{}, err
	}
	terms, err := s.contractList.ListActiveTerms(ctx)
	if err != nil {
		return royalty.BatchResult{}, fmt.Errorf("list active contracts: %w", err)
	}
	reqs := make([]royalty.ComposeRequest, 0, len(terms))
	for _, t := range terms {
		reqs = append(reqs, royalty.ComposeRequest{AuthorID: t.AuthorID, ContractID: t.ContractID, Period: period})
	}
	return s.orchestrator.Run(ctx, reqs), nil
}

func (s *Service) collectRequests(ctx context.Context, period royalty.PeriodBounds) ([]royalty.ComposeRequest, []BatchItem, error) {
	if err := validatePeriod(period); err != nil {
		return nil, nil, err
	}

	terms, err := s.contractList.ListActiveTerms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list active contracts: %w", err)
	}

	var (
		reqs    []royalty.ComposeRequest
		skipped []BatchItem
	)
	for _, t := range terms {
		exists, err := s.repo.ExistsForPeriod(ctx, t.AuthorID, t.ContractID, period)
		if err != nil {
			return nil, nil, fmt.Errorf("check existing statement: %w", err)
		}
		if exists {
			skipped = append(skipped, BatchItem{AuthorID: t.AuthorID, ContractID: t.ContractID, Skipped: true})
			continue
		}
		reqs = append(reqs, royalty.ComposeRequest{AuthorID: t.AuthorID, ContractID: t.ContractID, Period: period})
	}
	return reqs, skipped, nil
}

// GetByID retrieves a statement by ID.
func (s *Service) GetByID(ctx context.Context, statementID id.ID) (*Statement, error) {
	return s.repo.GetByID(ctx, statementID)
}

// GetByNumber retrieves a statement by number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Statement, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List retrieves statements with filtering and pagination.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Statement], error) {
	return s.repo.List(ctx, filter)
}

// ListByAuthor retrieves an author's statements.
func (s *Service) ListByAuthor(ctx context.Context, authorID id.ID, filter domain.ListFilter) (domain.ListResult[*Statement], error) {
	return s.repo.ListByAuthor(ctx, authorID, filter)
}

// MarkSent records delivery to the payee.
func (s *Service) MarkSent(ctx context.Context, statementID id.ID) (*Statement, error) {
	return s.transition(ctx, statementID, EventStatementSent, func(st *Statement) error {
		return st.MarkSent()
	})
}

// Void cancels a statement. Its recouped amount stops counting toward the
// contract's advance, so a corrected statement for the same period can be
// generated afterwards.
func (s *Service) Void(ctx context.Context, statementID id.ID, reason string) (*Statement, error) {
	if reason == "" {
		return nil, apperror.NewValidation("void reason is required").
			WithDetail("field", "reason")
	}
	return s.transition(ctx, statementID, EventStatementVoided, func(st *Statement) error {
		return st.Void(reason)
	})
}

func (s *Service) transition(ctx context.Context, statementID id.ID, eventType string, apply func(*Statement) error) (*Statement, error) {
	txManager, err := s.getTxManager(ctx)
	if err != nil {
		return nil, err
	}

	var st *Statement
	err = txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		st, err = s.repo.GetForUpdate(txCtx, statementID)
		if err != nil {
			return err
		}
		if err := apply(st); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, st); err != nil {
			return err
		}
		return s.publish(txCtx, st, eventType)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "statement transition",
		"statement_id", st.ID,
		"number", st.Number,
		"status", st.Status,
	)
	return st, nil
}

// ShouldDispatch evaluates the tenant's dispatch rule for a statement.
// Without a configured rule engine nothing is dispatched automatically.
func (s *Service) ShouldDispatch(ctx context.Context, st *Statement) (bool, error) {
	if s.rules == nil {
		return false, nil
	}
	return s.rules.Eval(ctx, security.RuleStatementDispatch, map[string]any{
		"net_payable":   int64(st.NetPayable),
		"gross_royalty": int64(st.GrossRoyalty),
		"recouped":      int64(st.Recouped),
		"warnings":      st.WarningCodes(),
		"has_email":     st.Payee.Email != "",
		"is_split":      st.Calculations.IsSplitStatement(),
		"mode":          tierModeOf(st),
	})
}

func tierModeOf(st *Statement) string {
	if st.Calculations.IsLifetimeStatement() {
		return string(royalty.ModeLifetime)
	}
	return string(royalty.ModePeriod)
}

func (s *Service) publish(ctx context.Context, st *Statement, eventType string) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, st.ID, eventType, statementEvent{
		StatementID: st.ID,
		Number:      st.Number,
		AuthorID:    st.AuthorID,
		ContractID:  st.ContractID,
		Period:      st.Period(),
		Status:      st.Status,
		NetPayable:  st.NetPayable,
	})
}

// statementEvent is the outbox payload for statement lifecycle events.
type statementEvent struct {
	StatementID id.ID                `json:"statementId"`
	Number      string               `json:"number"`
	AuthorID    id.ID                `json:"authorId"`
	ContractID  id.ID                `json:"contractId"`
	Period      royalty.PeriodBounds `json:"period"`
	Status      Status               `json:"status"`
	NetPayable  types.MinorUnits     `json:"netPayable"`
}

func validatePeriod(p royalty.PeriodBounds) error {
	if p.Start.IsZero() || p.End.IsZero() {
		return apperror.NewValidation("statement period is required").
			WithDetail("field", "period")
	}
	if !p.End.After(p.Start) {
		return apperror.NewValidation("period end must be after period start").
			WithDetail("period_start", p.Start).
			WithDetail("period_end", p.End)
	}
	return nil
}

// RecoupmentSource adapts the statement repository to the calculation
// engine's recoupment history interface. Void statements are excluded by
// the repository query.
type RecoupmentSource struct {
	repo Repository
}

// NewRecoupmentSource creates the engine-facing recoupment adapter.
func NewRecoupmentSource(repo Repository) *RecoupmentSource {
	return &RecoupmentSource{repo: repo}
}

// GetPreviouslyRecouped implements royalty.RecoupmentRepository.
func (r *RecoupmentSource) GetPreviouslyRecouped(ctx context.Context, authorID, contractID id.ID) (types.MinorUnits, error) {
	return r.repo.SumRecouped(ctx, authorID, contractID)
}

var _ royalty.RecoupmentRepository = (*RecoupmentSource)(nil)
