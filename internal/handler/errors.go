package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/ballsdex/merchant-service/internal/domain"
)

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest      = "Invalid request body"
	ErrMsgInvalidEntryID      = "Invalid entry id"
	ErrMsgMerchantAway        = "The merchant is currently away"
	ErrMsgEntryNotInRotation  = "That item is not in the current rotation"
	ErrMsgNotEnoughFunds      = "Not enough funds for this purchase"
	ErrMsgPlayerUnknown       = "Player not found"
	ErrMsgOnCooldownFmt       = "You're on cooldown, try again later"
	ErrMsgPurchaseTryAgain    = "The purchase could not be completed. Please try again"
	ErrMsgRotationUnavailable = "Failed to load the merchant rotation"
)

// mapPurchaseError translates service errors into an HTTP status, a safe
// user-facing message and an optional cooldown-ready timestamp.
func mapPurchaseError(err error) (int, string, *time.Time) {
	var cooldown domain.ErrOnCooldown
	switch {
	case errors.Is(err, domain.ErrMerchantUnavailable):
		return http.StatusConflict, ErrMsgMerchantAway, nil
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound, ErrMsgEntryNotInRotation, nil
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, ErrMsgOnCooldownFmt, &cooldown.ReadyAt
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, ErrMsgNotEnoughFunds, nil
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, ErrMsgPlayerUnknown, nil
	default:
		// Transaction faults and anything unexpected: logged by the service,
		// surfaced generically here.
		return http.StatusInternalServerError, ErrMsgPurchaseTryAgain, nil
	}
}
