package handler

import (
	"net/http"
	"time"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/logger"
	"github.com/ballsdex/merchant-service/internal/merchant"
)

// RotationResponse is the view of the current offering. Available is false
// when the merchant is disabled or the catalog is empty.
type RotationResponse struct {
	Available bool                     `json:"available"`
	Rotation  *domain.MerchantRotation `json:"rotation,omitempty"`
	Entries   []domain.RotationEntry   `json:"entries,omitempty"`
}

// BuyRequest is the purchase request body
type BuyRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	EntryID  int64  `json:"entry_id" validate:"required,gt=0"`
	ServerID string `json:"server_id,omitempty"`
}

// BuyResponse is returned on a successful purchase
type BuyResponse struct {
	Message    string              `json:"message"`
	Instance   domain.BallInstance `json:"instance"`
	ItemLabel  string              `json:"item_label"`
	PricePaid  int64               `json:"price_paid"`
	NewBalance int64               `json:"new_balance"`
}

// HandleGetRotation ensures a rotation exists and returns it with its entries.
// The ensure call is idempotent; a concurrent scheduler tick is harmless.
func HandleGetRotation(svc merchant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rotation, err := svc.EnsureRotation(ctx)
		if err != nil {
			logger.FromContext(ctx).Error("Failed to ensure rotation", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgRotationUnavailable)
			return
		}
		if rotation == nil {
			respondJSON(w, http.StatusOK, RotationResponse{Available: false})
			return
		}

		entries, err := svc.GetRotationEntries(ctx, rotation.ID)
		if err != nil {
			logger.FromContext(ctx).Error("Failed to get rotation entries", "error", err)
			respondError(w, http.StatusInternalServerError, ErrMsgRotationUnavailable)
			return
		}

		respondJSON(w, http.StatusOK, RotationResponse{
			Available: true,
			Rotation:  rotation,
			Entries:   entries,
		})
	}
}

// HandleBuy processes a purchase request
func HandleBuy(svc merchant.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req BuyRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		result, err := svc.Buy(ctx, req.PlayerID, req.EntryID, req.ServerID)
		if err != nil {
			status, message, readyAt := mapPurchaseError(err)
			resp := ErrorResponse{Error: message}
			if readyAt != nil {
				resp.ReadyAt = readyAt.Format(time.RFC3339)
			}
			respondJSON(w, status, resp)
			return
		}

		respondJSON(w, http.StatusOK, BuyResponse{
			Message:    "Purchase complete",
			Instance:   result.Instance,
			ItemLabel:  result.Entry.Item.Label,
			PricePaid:  result.Entry.PriceSnapshot,
			NewBalance: result.NewBalance,
		})
	}
}
