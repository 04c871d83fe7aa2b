package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"pitaka/internal/events"
	"pitaka/internal/lock"
	"pitaka/internal/models"
	"pitaka/internal/store"
	"pitaka/internal/testutil"
)

// recordingPublisher captures published events. Setting err makes every
// publish fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// testLedger wires the three services over one in-memory database, sharing
// the lock table the way the API does.
type testLedger struct {
	db         *gorm.DB
	allowances AllowanceServicer
	entries    EntryServicer
	goals      GoalServicer
	publisher  *recordingPublisher
	locks      *lock.Keyed
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.NewGormStore(db)
	locks := &lock.Keyed{}
	pub := &recordingPublisher{}
	return &testLedger{
		db:         db,
		allowances: NewAllowanceService(st, locks, WithPublisher(pub)),
		entries:    NewEntryService(st, locks, WithPublisher(pub)),
		goals:      NewGoalService(st, locks, WithPublisher(pub)),
		publisher:  pub,
		locks:      locks,
	}
}

// unavailableStore fails every read of allowances and goals.
type unavailableStore struct {
	store.LedgerStore
}

var errConnRefused = errors.New("dial tcp: connection refused")

func (unavailableStore) GetAllowance(context.Context, string) (*models.Allowance, error) {
	return nil, errors.Join(store.ErrUnavailable, errConnRefused)
}

func (unavailableStore) ListAllowances(context.Context, string) ([]models.Allowance, error) {
	return nil, errors.Join(store.ErrUnavailable, errConnRefused)
}

func (unavailableStore) ListGoals(context.Context, string) ([]models.Goal, error) {
	return nil, errors.Join(store.ErrUnavailable, errConnRefused)
}
