package merchant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/logger"
	"github.com/ballsdex/merchant-service/internal/metrics"
	"github.com/ballsdex/merchant-service/internal/repository"
)

// Buy purchases one entry of the active rotation for the player.
//
// Preconditions are checked in order, each with a distinct rejection:
// merchant disabled, no active rotation, unknown entry, cooldown active,
// insufficient funds (advisory). The authoritative funds check is repeated
// inside the transaction under the player row lock.
func (s *service) Buy(ctx context.Context, playerID string, entryID int64, serverID string) (*PurchaseResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgBuyCalled, "player_id", playerID, "entry_id", entryID)

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetSettings, err)
	}
	if !settings.Enabled {
		return nil, domain.ErrMerchantUnavailable
	}

	now := s.now()
	rotation, err := s.repo.GetActiveRotation(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRotation, err)
	}
	if rotation == nil {
		return nil, domain.ErrMerchantUnavailable
	}

	entries, err := s.GetRotationEntries(ctx, rotation.ID)
	if err != nil {
		return nil, err
	}
	var entry *domain.RotationEntry
	for i := range entries {
		if entries[i].ID == entryID {
			entry = &entries[i]
			break
		}
	}
	if entry == nil {
		return nil, domain.ErrEntryNotFound
	}

	last, err := s.repo.GetLastPurchase(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetLedger, err)
	}
	if last != nil {
		readyAt := last.CreatedAt.Add(settings.PurchaseCooldown())
		if readyAt.After(now) {
			return nil, domain.ErrOnCooldown{ReadyAt: readyAt}
		}
	}

	player, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetPlayer, err)
	}
	if player == nil {
		return nil, domain.ErrPlayerNotFound
	}
	// Advisory fast-fail; the check under the row lock is authoritative.
	if !player.CanAfford(entry.PriceSnapshot) {
		return nil, domain.ErrInsufficientFunds
	}

	// A request abandoned before the atomic section has no effect.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.executePurchase(ctx, playerID, *entry, serverID)
}

// executePurchase runs the atomic section: same-player attempts serialize
// FIFO on the named lock, then the row lock inside the transaction closes
// the cross-process race. Once started, the transaction runs to completion
// (commit or full rollback) regardless of caller cancellation, bounded by
// purchaseTimeout.
func (s *service) executePurchase(ctx context.Context, playerID string, entry domain.RotationEntry, serverID string) (*PurchaseResult, error) {
	log := logger.FromContext(ctx)

	mu := s.locks.GetLock(playerID)
	mu.Lock()
	defer mu.Unlock()

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), purchaseTimeout)
	defer cancel()

	tx, err := s.repo.BeginPurchaseTx(txCtx)
	if err != nil {
		log.Error(LogMsgPurchaseTxFailed, "stage", "begin", "player_id", playerID, "error", err)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, domain.ErrPurchaseFailed
	}
	defer repository.SafeRollback(txCtx, tx)

	locked, err := tx.GetPlayerForUpdate(txCtx, playerID)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			return nil, err
		}
		log.Error(LogMsgPurchaseTxFailed, "stage", "lock", "player_id", playerID, "error", err)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, domain.ErrPurchaseFailed
	}

	// Authoritative re-check under the lock.
	if !locked.CanAfford(entry.PriceSnapshot) {
		log.Debug(LogMsgPurchaseRaceDetected, "player_id", playerID, "balance", locked.Balance, "price", entry.PriceSnapshot)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeInsufficientFunds).Inc()
		return nil, domain.ErrInsufficientFunds
	}

	newBalance := locked.Balance - entry.PriceSnapshot
	if err := tx.UpdatePlayerBalance(txCtx, playerID, newBalance); err != nil {
		log.Error(LogMsgPurchaseTxFailed, "stage", "debit", "player_id", playerID, "error", err)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, domain.ErrPurchaseFailed
	}

	grantedAt := s.now()
	instance := domain.BallInstance{
		ID:        uuid.New(),
		PlayerID:  playerID,
		BallID:    entry.Item.BallID,
		Special:   entry.Item.Special,
		ServerID:  serverID,
		Tradeable: true,
		CreatedAt: grantedAt,
	}
	if err := tx.CreateBallInstance(txCtx, &instance); err != nil {
		log.Error(LogMsgPurchaseTxFailed, "stage", "grant", "player_id", playerID, "error", err)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, domain.ErrPurchaseFailed
	}

	purchase := domain.MerchantPurchase{
		ID:        uuid.New(),
		PlayerID:  playerID,
		EntryID:   entry.ID,
		CreatedAt: grantedAt,
	}
	if err := tx.CreatePurchase(txCtx, &purchase); err != nil {
		log.Error(LogMsgPurchaseTxFailed, "stage", "ledger", "player_id", playerID, "error", err)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, domain.ErrPurchaseFailed
	}

	if err := tx.Commit(txCtx); err != nil {
		log.Error(LogMsgPurchaseTxFailed, "stage", "commit", "player_id", playerID, "error", err)
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, domain.ErrPurchaseFailed
	}

	metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info(LogMsgPurchaseComplete,
		"player_id", playerID,
		"entry_id", entry.ID,
		"item", entry.Item.Label,
		"price", entry.PriceSnapshot,
		"new_balance", newBalance)

	return &PurchaseResult{
		Instance:   instance,
		Entry:      entry,
		NewBalance: newBalance,
	}, nil
}
