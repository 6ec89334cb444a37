package domain

import (
	"time"

	"github.com/google/uuid"
)

// MerchantItem is a catalog entry the merchant may offer. Catalog rows are
// managed by admin tooling; this service only reads them.
type MerchantItem struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Weight  int    `json:"weight"`
	Price   int64  `json:"price"`
	BallID  int    `json:"ball_id"`
	Special string `json:"special,omitempty"`
}

// EffectiveWeight floors non-positive configured weights at 1 so every
// enabled item has a non-zero selection probability.
func (i MerchantItem) EffectiveWeight() int {
	if i.Weight < MinItemWeight {
		return MinItemWeight
	}
	return i.Weight
}

// MerchantSettings is the singleton merchant configuration row. It is read
// fresh on every rotation check and passed explicitly through the call chain.
type MerchantSettings struct {
	Enabled                 bool       `json:"enabled"`
	ItemsPerRotation        int        `json:"items_per_rotation"`
	RotationMinutes         int        `json:"rotation_minutes"`
	PurchaseCooldownSeconds int        `json:"purchase_cooldown_seconds"`
	LastRotationAt          *time.Time `json:"last_rotation_at,omitempty"`
}

// RotationDuration returns the lifetime of a rotation.
func (s MerchantSettings) RotationDuration() time.Duration {
	return time.Duration(s.RotationMinutes) * time.Minute
}

// PurchaseCooldown returns the per-player purchase throttle.
func (s MerchantSettings) PurchaseCooldown() time.Duration {
	return time.Duration(s.PurchaseCooldownSeconds) * time.Second
}

// MerchantRotation is one time-boxed offering. Rotations are never mutated
// after creation; a new rotation supersedes the old one on expiry.
type MerchantRotation struct {
	ID       uuid.UUID `json:"id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// ActiveAt reports whether the rotation is purchasable at the given instant.
func (r MerchantRotation) ActiveAt(now time.Time) bool {
	return r.EndsAt.After(now)
}

// RotationEntry is one catalog item's appearance inside a specific rotation,
// with the price captured at rotation-creation time. Later catalog price
// changes do not affect an existing rotation.
type RotationEntry struct {
	ID            int64            `json:"id"`
	RotationID    uuid.UUID        `json:"rotation_id"`
	Item          MerchantItem     `json:"item"`
	PriceSnapshot int64            `json:"price_snapshot"`
}

// Player is the economy-owned player record. This service only reads the
// balance and performs a conditional debit inside the purchase transaction.
type Player struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
}

// CanAfford reports whether the player's balance covers the given price.
func (p Player) CanAfford(price int64) bool {
	return p.Balance >= price
}

// MerchantPurchase is an append-only ledger entry. The most recent entry per
// player determines cooldown expiry.
type MerchantPurchase struct {
	ID        uuid.UUID `json:"id"`
	PlayerID  string    `json:"player_id"`
	EntryID   int64     `json:"entry_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BallInstance is the collectible granted by a successful purchase.
type BallInstance struct {
	ID        uuid.UUID `json:"id"`
	PlayerID  string    `json:"player_id"`
	BallID    int       `json:"ball_id"`
	Special   string    `json:"special,omitempty"`
	ServerID  string    `json:"server_id,omitempty"`
	Tradeable bool      `json:"tradeable"`
	CreatedAt time.Time `json:"created_at"`
}
