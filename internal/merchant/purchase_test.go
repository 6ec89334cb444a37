package merchant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/merchant"
)

// buyFixture wires a service over the fake repo with one active rotation and
// one funded player.
type buyFixture struct {
	repo    *fakeRepo
	svc     merchant.Service
	entries []domain.RotationEntry
	now     time.Time
	setNow  func(time.Time)
}

func newBuyFixture(t *testing.T, balance int64) *buyFixture {
	t.Helper()

	repo := newFakeRepo()
	repo.settings = enabledSettings()
	repo.items = catalogItems(5)
	repo.players["player-1"] = &domain.Player{ID: "player-1", Balance: balance}

	now := fixedNow
	clock := func() time.Time { return now }

	svc := merchant.NewService(repo, merchant.WithClock(clock), merchant.WithRand(seededRand(13)))

	rotation, err := svc.EnsureRotation(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rotation)

	entries, err := svc.GetRotationEntries(context.Background(), rotation.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	return &buyFixture{
		repo:    repo,
		svc:     svc,
		entries: entries,
		now:     now,
		setNow:  func(t time.Time) { now = t },
	}
}

func TestBuy_Success(t *testing.T) {
	f := newBuyFixture(t, 10_000)
	entry := f.entries[0]

	result, err := f.svc.Buy(context.Background(), "player-1", entry.ID, "guild-9")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, entry.ID, result.Entry.ID)
	assert.Equal(t, 10_000-entry.PriceSnapshot, result.NewBalance)

	// Granted collectible matches the offered item and is tradeable.
	assert.Equal(t, "player-1", result.Instance.PlayerID)
	assert.Equal(t, entry.Item.BallID, result.Instance.BallID)
	assert.Equal(t, "guild-9", result.Instance.ServerID)
	assert.True(t, result.Instance.Tradeable)

	// All three effects landed together.
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Equal(t, 10_000-entry.PriceSnapshot, f.repo.players["player-1"].Balance)
	require.Len(t, f.repo.instances, 1)
	require.Len(t, f.repo.purchases, 1)
	assert.Equal(t, entry.ID, f.repo.purchases[0].EntryID)
}

func TestBuy_MerchantDisabled(t *testing.T) {
	f := newBuyFixture(t, 10_000)
	f.repo.mu.Lock()
	f.repo.settings.Enabled = false
	f.repo.mu.Unlock()

	_, err := f.svc.Buy(context.Background(), "player-1", f.entries[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrMerchantUnavailable)
}

func TestBuy_NoActiveRotation(t *testing.T) {
	repo := newFakeRepo()
	repo.settings = enabledSettings()
	repo.items = catalogItems(5)
	repo.players["player-1"] = &domain.Player{ID: "player-1", Balance: 10_000}

	svc := merchant.NewService(repo, merchant.WithClock(fixedClock), merchant.WithRand(seededRand(1)))

	_, err := svc.Buy(context.Background(), "player-1", 1, "")
	assert.ErrorIs(t, err, domain.ErrMerchantUnavailable)
}

func TestBuy_UnknownEntry(t *testing.T) {
	f := newBuyFixture(t, 10_000)

	_, err := f.svc.Buy(context.Background(), "player-1", 999, "")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestBuy_StaleEntryAfterRollover(t *testing.T) {
	f := newBuyFixture(t, 10_000)
	staleEntry := f.entries[0]

	// Advance past the rotation's end and let a new rotation replace it.
	f.setNow(fixedNow.Add(61 * time.Minute))
	fresh, err := f.svc.EnsureRotation(context.Background())
	require.NoError(t, err)
	require.NotNil(t, fresh)

	_, err = f.svc.Buy(context.Background(), "player-1", staleEntry.ID, "")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound, "entries from a superseded rotation are not purchasable")
}

func TestBuy_Cooldown(t *testing.T) {
	f := newBuyFixture(t, 100_000)

	_, err := f.svc.Buy(context.Background(), "player-1", f.entries[0].ID, "")
	require.NoError(t, err)

	_, err = f.svc.Buy(context.Background(), "player-1", f.entries[1].ID, "")

	var cooldownErr domain.ErrOnCooldown
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, fixedNow.Add(300*time.Second), cooldownErr.ReadyAt,
		"ready time is last purchase plus configured cooldown")

	// Exactly one purchase went through.
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Len(t, f.repo.purchases, 1)
}

func TestBuy_CooldownExpires(t *testing.T) {
	f := newBuyFixture(t, 100_000)

	_, err := f.svc.Buy(context.Background(), "player-1", f.entries[0].ID, "")
	require.NoError(t, err)

	f.setNow(fixedNow.Add(301 * time.Second))

	_, err = f.svc.Buy(context.Background(), "player-1", f.entries[1].ID, "")
	require.NoError(t, err)
}

func TestBuy_UnknownPlayer(t *testing.T) {
	f := newBuyFixture(t, 10_000)

	_, err := f.svc.Buy(context.Background(), "nobody", f.entries[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestBuy_InsufficientFunds(t *testing.T) {
	f := newBuyFixture(t, 1) // cheapest catalog item costs 100

	_, err := f.svc.Buy(context.Background(), "player-1", f.entries[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Empty(t, f.repo.purchases)
	assert.Empty(t, f.repo.instances)
	assert.Equal(t, int64(1), f.repo.players["player-1"].Balance)
}

func TestBuy_CancelledBeforeTx(t *testing.T) {
	f := newBuyFixture(t, 10_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Buy(ctx, "player-1", f.entries[0].ID, "")
	assert.ErrorIs(t, err, context.Canceled)

	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Empty(t, f.repo.purchases, "cancelled request must have no effect")
	assert.Equal(t, int64(10_000), f.repo.players["player-1"].Balance)
}

func TestBuy_CommitFailure(t *testing.T) {
	f := newBuyFixture(t, 10_000)
	f.repo.commitErr = errors.New("connection reset")

	_, err := f.svc.Buy(context.Background(), "player-1", f.entries[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrPurchaseFailed, "storage faults surface as a generic purchase failure")

	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	assert.Empty(t, f.repo.purchases)
	assert.Empty(t, f.repo.instances)
	assert.Equal(t, int64(10_000), f.repo.players["player-1"].Balance, "failed purchase must not debit")
}

func TestBuy_BeginFailure(t *testing.T) {
	f := newBuyFixture(t, 10_000)
	f.repo.beginErr = errors.New("pool exhausted")

	_, err := f.svc.Buy(context.Background(), "player-1", f.entries[0].ID, "")
	assert.ErrorIs(t, err, domain.ErrPurchaseFailed)
}
