package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ballsdex/merchant-service/internal/domain"
)

// purchaseTx implements repository.PurchaseTx on a pgx transaction
type purchaseTx struct {
	tx pgx.Tx
}

// GetPlayerForUpdate re-reads the player row under FOR UPDATE. Concurrent
// purchase attempts by the same player block here until the winner commits,
// so both can never observe sufficient funds.
func (t *purchaseTx) GetPlayerForUpdate(ctx context.Context, playerID string) (*domain.Player, error) {
	query := `SELECT player_id, balance FROM players WHERE player_id = $1 FOR UPDATE`
	var player domain.Player
	err := t.tx.QueryRow(ctx, query, playerID).Scan(&player.ID, &player.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to lock player row: %w", err)
	}
	return &player, nil
}

func (t *purchaseTx) UpdatePlayerBalance(ctx context.Context, playerID string, balance int64) error {
	query := `UPDATE players SET balance = $1, updated_at = NOW() WHERE player_id = $2`
	if _, err := t.tx.Exec(ctx, query, balance, playerID); err != nil {
		return fmt.Errorf("failed to update player balance: %w", err)
	}
	return nil
}

func (t *purchaseTx) CreateBallInstance(ctx context.Context, instance *domain.BallInstance) error {
	query := `
		INSERT INTO ball_instances (instance_id, player_id, ball_id, special, server_id, tradeable, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
	`
	_, err := t.tx.Exec(ctx, query,
		instance.ID, instance.PlayerID, instance.BallID, instance.Special,
		instance.ServerID, instance.Tradeable, instance.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ball instance: %w", err)
	}
	return nil
}

func (t *purchaseTx) CreatePurchase(ctx context.Context, purchase *domain.MerchantPurchase) error {
	query := `
		INSERT INTO merchant_purchases (purchase_id, player_id, entry_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := t.tx.Exec(ctx, query, purchase.ID, purchase.PlayerID, purchase.EntryID, purchase.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append purchase ledger entry: %w", err)
	}
	return nil
}

func (t *purchaseTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *purchaseTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return errors.New(domain.ErrMsgTxClosed)
	}
	return err
}
