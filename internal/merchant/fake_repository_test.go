package merchant_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/repository"
)

// fakeRepo is an in-memory repository.Merchant. The purchase transaction
// emulates the row lock: GetPlayerForUpdate takes a per-player mutex that is
// held until Commit or Rollback, so concurrent purchases against the same
// player serialize exactly like they do against Postgres.
type fakeRepo struct {
	mu sync.Mutex

	settings *domain.MerchantSettings
	items    []domain.MerchantItem

	rotations   []domain.MerchantRotation
	entries     map[uuid.UUID][]domain.RotationEntry
	nextEntryID int64

	players   map[string]*domain.Player
	purchases []domain.MerchantPurchase
	instances []domain.BallInstance

	rowLocks map[string]*sync.Mutex

	beginErr  error
	commitErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		entries:  make(map[uuid.UUID][]domain.RotationEntry),
		players:  make(map[string]*domain.Player),
		rowLocks: make(map[string]*sync.Mutex),
	}
}

func (r *fakeRepo) GetSettings(ctx context.Context) (*domain.MerchantSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return &domain.MerchantSettings{Enabled: false}, nil
	}
	s := *r.settings
	return &s, nil
}

func (r *fakeRepo) GetEnabledItems(ctx context.Context) ([]domain.MerchantItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MerchantItem
	for _, item := range r.items {
		if item.Enabled {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetActiveRotation(ctx context.Context, now time.Time) (*domain.MerchantRotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rotations) - 1; i >= 0; i-- {
		if r.rotations[i].ActiveAt(now) {
			rot := r.rotations[i]
			return &rot, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) CreateRotation(ctx context.Context, rotation *domain.MerchantRotation, items []domain.MerchantItem) ([]domain.RotationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rotations = append(r.rotations, *rotation)

	entries := make([]domain.RotationEntry, 0, len(items))
	for _, item := range items {
		r.nextEntryID++
		entries = append(entries, domain.RotationEntry{
			ID:            r.nextEntryID,
			RotationID:    rotation.ID,
			Item:          item,
			PriceSnapshot: item.Price,
		})
	}
	r.entries[rotation.ID] = entries

	if r.settings != nil {
		at := rotation.StartsAt
		r.settings.LastRotationAt = &at
	}

	out := make([]domain.RotationEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *fakeRepo) GetRotationEntries(ctx context.Context, rotationID uuid.UUID) ([]domain.RotationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[rotationID]
	out := make([]domain.RotationEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func (r *fakeRepo) GetLastPurchase(ctx context.Context, playerID string) (*domain.MerchantPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *domain.MerchantPurchase
	for i := range r.purchases {
		p := r.purchases[i]
		if p.PlayerID != playerID {
			continue
		}
		if last == nil || p.CreatedAt.After(last.CreatedAt) {
			last = &p
		}
	}
	if last == nil {
		return nil, nil
	}
	out := *last
	return &out, nil
}

func (r *fakeRepo) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (r *fakeRepo) BeginPurchaseTx(ctx context.Context) (repository.PurchaseTx, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beginErr != nil {
		return nil, r.beginErr
	}
	return &fakeTx{repo: r}, nil
}

func (r *fakeRepo) rowLock(playerID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mu, ok := r.rowLocks[playerID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	r.rowLocks[playerID] = mu
	return mu
}

// fakeTx stages writes and applies them on Commit. Nothing staged is visible
// to reads until then.
type fakeTx struct {
	repo *fakeRepo

	rowMu        *sync.Mutex
	lockedPlayer string

	newBalance *int64
	instance   *domain.BallInstance
	purchase   *domain.MerchantPurchase

	closed bool
}

func (t *fakeTx) GetPlayerForUpdate(ctx context.Context, playerID string) (*domain.Player, error) {
	mu := t.repo.rowLock(playerID)
	mu.Lock()

	t.repo.mu.Lock()
	p, ok := t.repo.players[playerID]
	if !ok {
		t.repo.mu.Unlock()
		mu.Unlock()
		return nil, domain.ErrPlayerNotFound
	}
	out := *p
	t.repo.mu.Unlock()

	t.rowMu = mu
	t.lockedPlayer = playerID
	return &out, nil
}

func (t *fakeTx) UpdatePlayerBalance(ctx context.Context, playerID string, balance int64) error {
	t.newBalance = &balance
	return nil
}

func (t *fakeTx) CreateBallInstance(ctx context.Context, instance *domain.BallInstance) error {
	staged := *instance
	t.instance = &staged
	return nil
}

func (t *fakeTx) CreatePurchase(ctx context.Context, purchase *domain.MerchantPurchase) error {
	staged := *purchase
	t.purchase = &staged
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	if t.repo.commitErr != nil {
		t.release()
		return t.repo.commitErr
	}

	t.repo.mu.Lock()
	if t.newBalance != nil {
		if p, ok := t.repo.players[t.lockedPlayer]; ok {
			p.Balance = *t.newBalance
		}
	}
	if t.instance != nil {
		t.repo.instances = append(t.repo.instances, *t.instance)
	}
	if t.purchase != nil {
		t.repo.purchases = append(t.repo.purchases, *t.purchase)
	}
	t.repo.mu.Unlock()

	t.release()
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.release()
	return nil
}

func (t *fakeTx) release() {
	t.closed = true
	if t.rowMu != nil {
		t.rowMu.Unlock()
		t.rowMu = nil
	}
}

// --- shared fixtures ---

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func enabledSettings() *domain.MerchantSettings {
	return &domain.MerchantSettings{
		Enabled:                 true,
		ItemsPerRotation:        3,
		RotationMinutes:         60,
		PurchaseCooldownSeconds: 300,
	}
}

func catalogItems(n int) []domain.MerchantItem {
	items := make([]domain.MerchantItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, domain.MerchantItem{
			ID:      i,
			Label:   "Ball " + string(rune('A'+i-1)),
			Enabled: true,
			Weight:  1,
			Price:   int64(100 * i),
			BallID:  1000 + i,
		})
	}
	return items
}
