package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ballsdex/merchant-service/internal/domain"
)

// Merchant defines the store operations the merchant service depends on.
// Catalog rows are read-only here; rotations and ledger entries are
// append-only; the settings row is read on every rotation check.
type Merchant interface {
	// GetSettings returns the singleton merchant configuration row.
	// A missing row yields defaults with the merchant disabled.
	GetSettings(ctx context.Context) (*domain.MerchantSettings, error)

	// GetEnabledItems returns all enabled catalog items.
	GetEnabledItems(ctx context.Context) ([]domain.MerchantItem, error)

	// GetActiveRotation returns the most recently started rotation whose end
	// time is after now, or nil when none exists.
	GetActiveRotation(ctx context.Context, now time.Time) (*domain.MerchantRotation, error)

	// CreateRotation persists the rotation, one entry per selected item with
	// the item's current price as the snapshot, and the settings
	// last_rotation_at stamp as a single atomic unit. Partial rotations are
	// never observable.
	CreateRotation(ctx context.Context, rotation *domain.MerchantRotation, items []domain.MerchantItem) ([]domain.RotationEntry, error)

	// GetRotationEntries returns the rotation's entries joined with item detail.
	GetRotationEntries(ctx context.Context, rotationID uuid.UUID) ([]domain.RotationEntry, error)

	// GetLastPurchase returns the player's most recent ledger entry, or nil.
	GetLastPurchase(ctx context.Context, playerID string) (*domain.MerchantPurchase, error)

	// GetPlayer returns the player record, or nil when unknown.
	GetPlayer(ctx context.Context, playerID string) (*domain.Player, error)

	// BeginPurchaseTx starts the atomic purchase unit of work.
	BeginPurchaseTx(ctx context.Context) (PurchaseTx, error)
}

// PurchaseTx is the atomic purchase unit of work: locked balance re-check,
// debit, collectible grant and ledger append become visible together on
// Commit or not at all.
type PurchaseTx interface {
	// GetPlayerForUpdate re-reads the player row under an exclusive row lock
	// so concurrent purchases by the same player serialize here.
	GetPlayerForUpdate(ctx context.Context, playerID string) (*domain.Player, error)

	UpdatePlayerBalance(ctx context.Context, playerID string, balance int64) error
	CreateBallInstance(ctx context.Context, instance *domain.BallInstance) error
	CreatePurchase(ctx context.Context, purchase *domain.MerchantPurchase) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
