package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgMerchantUnavailable = "merchant unavailable"
	ErrMsgEntryNotFound       = "entry not in current rotation"
	ErrMsgInsufficientFunds   = "insufficient funds"
	ErrMsgPurchaseFailed      = "purchase failed"
	ErrMsgPlayerNotFound      = "player not found"
	ErrMsgTxClosed            = "tx is closed"
)

// Common domain errors
// Wrap these with fmt.Errorf("%w: detail", domain.ErrXxx) for additional context.
var (
	// ErrMerchantUnavailable covers the merchant being disabled, an empty
	// catalog at rotation-creation time, and the absence of an active
	// rotation at purchase time. It is a normal negative outcome, not a fault.
	ErrMerchantUnavailable = errors.New(ErrMsgMerchantUnavailable)

	// ErrEntryNotFound is returned when a purchase names an entry that is not
	// part of the active rotation (commonly a stale id from an expired one).
	ErrEntryNotFound = errors.New(ErrMsgEntryNotFound)

	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrPlayerNotFound    = errors.New(ErrMsgPlayerNotFound)

	// ErrPurchaseFailed is the generic surface for transaction faults. Full
	// detail is logged at error severity; callers only see this.
	ErrPurchaseFailed = errors.New(ErrMsgPurchaseFailed)
)

// ErrOnCooldown is returned when a player's purchase cooldown is still active.
// ReadyAt is the exact instant the player may buy again.
type ErrOnCooldown struct {
	ReadyAt time.Time
}

func (e ErrOnCooldown) Error() string {
	return fmt.Sprintf("purchase on cooldown until %s", e.ReadyAt.Format(time.RFC3339))
}

// Is allows errors.Is() to work with ErrOnCooldown
func (e ErrOnCooldown) Is(target error) bool {
	_, ok := target.(ErrOnCooldown)
	return ok
}
