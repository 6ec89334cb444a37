package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/repository"
)

// MerchantRepository implements repository.Merchant for PostgreSQL
type MerchantRepository struct {
	db *pgxpool.Pool
}

// NewMerchantRepository creates a new MerchantRepository
func NewMerchantRepository(db *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// GetSettings returns the singleton merchant settings row. A missing row is
// treated as defaults with the merchant disabled.
func (r *MerchantRepository) GetSettings(ctx context.Context) (*domain.MerchantSettings, error) {
	query := `
		SELECT enabled, items_per_rotation, rotation_minutes, purchase_cooldown_seconds, last_rotation_at
		FROM merchant_settings
		WHERE settings_id = 1
	`
	var settings domain.MerchantSettings
	err := r.db.QueryRow(ctx, query).Scan(
		&settings.Enabled,
		&settings.ItemsPerRotation,
		&settings.RotationMinutes,
		&settings.PurchaseCooldownSeconds,
		&settings.LastRotationAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.MerchantSettings{
				Enabled:                 false,
				ItemsPerRotation:        domain.DefaultItemsPerRotation,
				RotationMinutes:         domain.DefaultRotationMinutes,
				PurchaseCooldownSeconds: domain.DefaultPurchaseCooldownSeconds,
			}, nil
		}
		return nil, fmt.Errorf("failed to get merchant settings: %w", err)
	}
	return &settings, nil
}

// GetEnabledItems returns all enabled catalog items
func (r *MerchantRepository) GetEnabledItems(ctx context.Context) ([]domain.MerchantItem, error) {
	query := `
		SELECT item_id, label, enabled, weight, price, ball_id, COALESCE(special, '')
		FROM merchant_items
		WHERE enabled = TRUE
		ORDER BY item_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled items: %w", err)
	}
	defer rows.Close()

	var items []domain.MerchantItem
	for rows.Next() {
		var item domain.MerchantItem
		if err := rows.Scan(&item.ID, &item.Label, &item.Enabled, &item.Weight, &item.Price, &item.BallID, &item.Special); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

// GetActiveRotation returns the most recently started rotation that ends after now
func (r *MerchantRepository) GetActiveRotation(ctx context.Context, now time.Time) (*domain.MerchantRotation, error) {
	query := `
		SELECT rotation_id, starts_at, ends_at
		FROM merchant_rotations
		WHERE ends_at > $1
		ORDER BY starts_at DESC
		LIMIT 1
	`
	var rotation domain.MerchantRotation
	err := r.db.QueryRow(ctx, query, now).Scan(&rotation.ID, &rotation.StartsAt, &rotation.EndsAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active rotation: %w", err)
	}
	return &rotation, nil
}

// CreateRotation persists the rotation, its entries and the settings stamp as
// one transaction. Readers never observe a rotation without its entries.
func (r *MerchantRepository) CreateRotation(ctx context.Context, rotation *domain.MerchantRotation, items []domain.MerchantItem) ([]domain.RotationEntry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insertRotation := `
		INSERT INTO merchant_rotations (rotation_id, starts_at, ends_at)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.Exec(ctx, insertRotation, rotation.ID, rotation.StartsAt, rotation.EndsAt); err != nil {
		return nil, fmt.Errorf("failed to insert rotation: %w", err)
	}

	insertEntry := `
		INSERT INTO merchant_rotation_items (rotation_id, item_id, price_snapshot)
		VALUES ($1, $2, $3)
		RETURNING entry_id
	`
	entries := make([]domain.RotationEntry, 0, len(items))
	for _, item := range items {
		entry := domain.RotationEntry{
			RotationID:    rotation.ID,
			Item:          item,
			PriceSnapshot: item.Price,
		}
		if err := tx.QueryRow(ctx, insertEntry, rotation.ID, item.ID, item.Price).Scan(&entry.ID); err != nil {
			return nil, fmt.Errorf("failed to insert rotation entry: %w", err)
		}
		entries = append(entries, entry)
	}

	stamp := `UPDATE merchant_settings SET last_rotation_at = $1 WHERE settings_id = 1`
	if _, err := tx.Exec(ctx, stamp, rotation.StartsAt); err != nil {
		return nil, fmt.Errorf("failed to stamp last rotation time: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rotation: %w", err)
	}
	return entries, nil
}

// GetRotationEntries returns the rotation's entries joined with item detail
func (r *MerchantRepository) GetRotationEntries(ctx context.Context, rotationID uuid.UUID) ([]domain.RotationEntry, error) {
	query := `
		SELECT ri.entry_id, ri.rotation_id, ri.price_snapshot,
		       i.item_id, i.label, i.enabled, i.weight, i.price, i.ball_id, COALESCE(i.special, '')
		FROM merchant_rotation_items ri
		JOIN merchant_items i ON i.item_id = ri.item_id
		WHERE ri.rotation_id = $1
		ORDER BY ri.entry_id
	`
	rows, err := r.db.Query(ctx, query, rotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rotation entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.RotationEntry
	for rows.Next() {
		var entry domain.RotationEntry
		if err := rows.Scan(
			&entry.ID, &entry.RotationID, &entry.PriceSnapshot,
			&entry.Item.ID, &entry.Item.Label, &entry.Item.Enabled, &entry.Item.Weight,
			&entry.Item.Price, &entry.Item.BallID, &entry.Item.Special,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rotation entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rotation entries: %w", err)
	}
	return entries, nil
}

// GetLastPurchase returns the player's most recent ledger entry, or nil
func (r *MerchantRepository) GetLastPurchase(ctx context.Context, playerID string) (*domain.MerchantPurchase, error) {
	query := `
		SELECT purchase_id, player_id, entry_id, created_at
		FROM merchant_purchases
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var purchase domain.MerchantPurchase
	err := r.db.QueryRow(ctx, query, playerID).Scan(&purchase.ID, &purchase.PlayerID, &purchase.EntryID, &purchase.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last purchase: %w", err)
	}
	return &purchase, nil
}

// GetPlayer returns the player record, or nil when unknown
func (r *MerchantRepository) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	query := `SELECT player_id, balance FROM players WHERE player_id = $1`
	var player domain.Player
	err := r.db.QueryRow(ctx, query, playerID).Scan(&player.ID, &player.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &player, nil
}

// BeginPurchaseTx starts the atomic purchase unit of work
func (r *MerchantRepository) BeginPurchaseTx(ctx context.Context) (repository.PurchaseTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	return &purchaseTx{tx: tx}, nil
}
