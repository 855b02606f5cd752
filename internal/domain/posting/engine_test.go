package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imprint/internal/core/apperror"
	"imprint/internal/core/entity"
	"imprint/internal/core/id"
	"imprint/internal/core/tenant"
	"imprint/internal/domain/registers/ledger"
	"imprint/internal/domain/royalty"
)

// fakeTxManager runs the function directly; commit/rollback behavior is
// represented by the returned error.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeLedgerRepo struct {
	created []entity.LedgerMovement

	deletedRecorder id.ID
	deletedBefore   int
	deletes         int
}

func (f *fakeLedgerRepo) CreateMovements(_ context.Context, movements []entity.LedgerMovement) error {
	f.created = append(f.created, movements...)
	return nil
}

func (f *fakeLedgerRepo) DeleteMovementsByRecorder(_ context.Context, recorderID id.ID, beforeVersion int) error {
	f.deletes++
	f.deletedRecorder = recorderID
	f.deletedBefore = beforeVersion
	return nil
}

func (f *fakeLedgerRepo) GetMovementsByRecorder(_ context.Context, _ id.ID) ([]entity.LedgerMovement, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) GetPeriodTotals(_ context.Context, _, _ id.ID, _ string, _, _ time.Time) (ledger.PeriodTotals, error) {
	return ledger.PeriodTotals{}, nil
}

func (f *fakeLedgerRepo) GetTotalsBefore(_ context.Context, _, _ id.ID, _ string, _ time.Time) (ledger.CumulativeTotals, error) {
	return ledger.CumulativeTotals{}, nil
}

func (f *fakeLedgerRepo) GetBalance(_ context.Context, _, _ id.ID, _ string) (entity.LedgerBalance, error) {
	return entity.LedgerBalance{}, nil
}

func (f *fakeLedgerRepo) GetBalancesByAuthor(_ context.Context, _ id.ID) ([]entity.LedgerBalance, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) GetMovementHistory(_ context.Context, _ id.ID, _ ledger.MovementFilter) ([]entity.LedgerMovement, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) RecalculateBalances(_ context.Context, _, _ *id.ID) error {
	return nil
}

var _ ledger.Repository = (*fakeLedgerRepo)(nil)

// testDoc is a minimal postable document producing one sale movement per
// posting.
type testDoc struct {
	entity.Document

	canPostErr error
	genErr     error
}

func (d *testDoc) GetDocumentType() string { return "TestDoc" }

func (d *testDoc) CanPost(ctx context.Context) error {
	return d.canPostErr
}

func (d *testDoc) GenerateMovements(ctx context.Context) (*MovementSet, error) {
	if d.genErr != nil {
		return nil, d.genErr
	}
	set := NewMovementSet()
	set.AddLedger(entity.NewLedgerMovement(
		d.ID, d.GetDocumentType(), d.PostedVersion+1,
		d.Date, entity.RecordTypeReceipt,
		id.New(), id.New(), id.New(),
		string(royalty.FormatEbook),
		10, 25_000,
	))
	return set, nil
}

var _ Postable = (*testDoc)(nil)

type engineFixture struct {
	ctx    context.Context
	repo   *fakeLedgerRepo
	txm    *fakeTxManager
	engine *Engine
	doc    *testDoc
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	repo := &fakeLedgerRepo{}
	txm := &fakeTxManager{}
	return &engineFixture{
		ctx:    tenant.WithTxManager(context.Background(), txm),
		repo:   repo,
		txm:    txm,
		engine: NewEngine(ledger.NewService(repo)),
		doc:    &testDoc{Document: entity.NewDocument("org-main")},
	}
}

func noopUpdate(ctx context.Context) error { return nil }

func TestPost_FirstPosting(t *testing.T) {
	f := newEngineFixture(t)

	updated := false
	err := f.engine.Post(f.ctx, f.doc, func(ctx context.Context) error {
		updated = true
		return nil
	})
	require.NoError(t, err)

	assert.True(t, updated)
	assert.True(t, f.doc.Posted)
	assert.Equal(t, 1, f.doc.PostedVersion)
	assert.Equal(t, 1, f.txm.calls)

	require.Len(t, f.repo.created, 1)
	assert.Equal(t, f.doc.ID, f.repo.created[0].RecorderID)
	assert.Equal(t, 1, f.repo.created[0].RecorderVersion)

	// No earlier versions to clean up on a first posting.
	assert.Zero(t, f.repo.deletes)
}

func TestPost_RepostCleansOlderVersions(t *testing.T) {
	f := newEngineFixture(t)
	f.doc.Posted = true
	f.doc.PostedVersion = 2

	err := f.engine.Post(f.ctx, f.doc, noopUpdate)
	require.NoError(t, err)

	assert.Equal(t, 3, f.doc.PostedVersion)
	require.Len(t, f.repo.created, 1)
	assert.Equal(t, 3, f.repo.created[0].RecorderVersion)

	assert.Equal(t, 1, f.repo.deletes)
	assert.Equal(t, f.doc.ID, f.repo.deletedRecorder)
	assert.Equal(t, 3, f.repo.deletedBefore)
}

func TestPost_CanPostFailureSkipsTransaction(t *testing.T) {
	f := newEngineFixture(t)
	f.doc.canPostErr = apperror.NewValidation("lines required")

	err := f.engine.Post(f.ctx, f.doc, noopUpdate)
	assert.Error(t, err)
	assert.Zero(t, f.txm.calls)
	assert.Empty(t, f.repo.created)
	assert.False(t, f.doc.Posted)
}

func TestPost_GenerateMovementsError(t *testing.T) {
	f := newEngineFixture(t)
	f.doc.genErr = errors.New("bad line")

	err := f.engine.Post(f.ctx, f.doc, noopUpdate)
	assert.Error(t, err)
	assert.Zero(t, f.txm.calls)
}

func TestPost_UpdateDocError(t *testing.T) {
	f := newEngineFixture(t)

	err := f.engine.Post(f.ctx, f.doc, func(ctx context.Context) error {
		return errors.New("conflict")
	})
	assert.Error(t, err)
}

func TestPost_MissingTxManager(t *testing.T) {
	f := newEngineFixture(t)

	err := f.engine.Post(context.Background(), f.doc, noopUpdate)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInternal, appErr.Code)
}

func TestUnpost(t *testing.T) {
	f := newEngineFixture(t)
	f.doc.Posted = true
	f.doc.PostedVersion = 2

	err := f.engine.Unpost(f.ctx, f.doc, noopUpdate)
	require.NoError(t, err)

	assert.False(t, f.doc.Posted)

	// All versions up to and including the current one are removed.
	assert.Equal(t, 1, f.repo.deletes)
	assert.Equal(t, f.doc.ID, f.repo.deletedRecorder)
	assert.Equal(t, 3, f.repo.deletedBefore)
}

func TestUnpost_NotPosted(t *testing.T) {
	f := newEngineFixture(t)

	err := f.engine.Unpost(f.ctx, f.doc, noopUpdate)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDocumentNotPosted, appErr.Code)
	assert.Zero(t, f.repo.deletes)
}
