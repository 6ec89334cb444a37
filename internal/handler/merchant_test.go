package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/merchant"
)

// stubService is a canned-response merchant.Service
type stubService struct {
	rotation *domain.MerchantRotation
	entries  []domain.RotationEntry
	result   *merchant.PurchaseResult

	ensureErr  error
	entriesErr error
	buyErr     error

	lastBuyPlayer string
	lastBuyEntry  int64
}

func (s *stubService) EnsureRotation(ctx context.Context) (*domain.MerchantRotation, error) {
	return s.rotation, s.ensureErr
}

func (s *stubService) GetActiveRotation(ctx context.Context) (*domain.MerchantRotation, error) {
	return s.rotation, nil
}

func (s *stubService) GetRotationEntries(ctx context.Context, rotationID uuid.UUID) ([]domain.RotationEntry, error) {
	return s.entries, s.entriesErr
}

func (s *stubService) Buy(ctx context.Context, playerID string, entryID int64, serverID string) (*merchant.PurchaseResult, error) {
	s.lastBuyPlayer = playerID
	s.lastBuyEntry = entryID
	if s.buyErr != nil {
		return nil, s.buyErr
	}
	return s.result, nil
}

func testRotation() *domain.MerchantRotation {
	return &domain.MerchantRotation{
		ID:       uuid.New(),
		StartsAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC),
	}
}

func TestHandleGetRotation_Available(t *testing.T) {
	rotation := testRotation()
	svc := &stubService{
		rotation: rotation,
		entries: []domain.RotationEntry{
			{ID: 1, RotationID: rotation.ID, Item: domain.MerchantItem{ID: 7, Label: "Shiny"}, PriceSnapshot: 500},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/merchant/rotation", nil)
	rec := httptest.NewRecorder()
	HandleGetRotation(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RotationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	require.NotNil(t, resp.Rotation)
	assert.Equal(t, rotation.ID, resp.Rotation.ID)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, int64(500), resp.Entries[0].PriceSnapshot)
}

func TestHandleGetRotation_Unavailable(t *testing.T) {
	svc := &stubService{rotation: nil}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/merchant/rotation", nil)
	rec := httptest.NewRecorder()
	HandleGetRotation(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RotationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Available)
	assert.Nil(t, resp.Rotation)
}

func TestHandleGetRotation_ServiceError(t *testing.T) {
	svc := &stubService{ensureErr: errors.New("db down")}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/merchant/rotation", nil)
	rec := httptest.NewRecorder()
	HandleGetRotation(svc)(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func buyRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/v1/merchant/buy", bytes.NewReader(raw))
}

func TestHandleBuy_Success(t *testing.T) {
	svc := &stubService{
		result: &merchant.PurchaseResult{
			Instance: domain.BallInstance{
				ID:        uuid.New(),
				PlayerID:  "player-1",
				BallID:    42,
				Tradeable: true,
			},
			Entry: domain.RotationEntry{
				ID:            3,
				Item:          domain.MerchantItem{ID: 7, Label: "Shiny", BallID: 42},
				PriceSnapshot: 500,
			},
			NewBalance: 1500,
		},
	}

	req := buyRequest(t, BuyRequest{PlayerID: "player-1", EntryID: 3, ServerID: "guild-9"})
	rec := httptest.NewRecorder()
	HandleBuy(svc)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "player-1", svc.lastBuyPlayer)
	assert.Equal(t, int64(3), svc.lastBuyEntry)

	var resp BuyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Shiny", resp.ItemLabel)
	assert.Equal(t, int64(500), resp.PricePaid)
	assert.Equal(t, int64(1500), resp.NewBalance)
	assert.True(t, resp.Instance.Tradeable)
}

func TestHandleBuy_Validation(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{"missing player", BuyRequest{EntryID: 3}},
		{"missing entry", BuyRequest{PlayerID: "player-1"}},
		{"negative entry", BuyRequest{PlayerID: "player-1", EntryID: -4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			req := buyRequest(t, tt.body)
			rec := httptest.NewRecorder()
			HandleBuy(svc)(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.lastBuyPlayer, "service must not be called on invalid input")
		})
	}
}

func TestHandleBuy_MalformedJSON(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/merchant/buy", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	HandleBuy(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBuy_ErrorMapping(t *testing.T) {
	readyAt := time.Date(2026, 3, 14, 12, 5, 0, 0, time.UTC)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantReadyAt string
	}{
		{"merchant away", domain.ErrMerchantUnavailable, http.StatusConflict, ""},
		{"entry not found", domain.ErrEntryNotFound, http.StatusNotFound, ""},
		{"cooldown", domain.ErrOnCooldown{ReadyAt: readyAt}, http.StatusTooManyRequests, "2026-03-14T12:05:00Z"},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest, ""},
		{"player not found", domain.ErrPlayerNotFound, http.StatusNotFound, ""},
		{"purchase failed", domain.ErrPurchaseFailed, http.StatusInternalServerError, ""},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{buyErr: tt.err}
			req := buyRequest(t, BuyRequest{PlayerID: "player-1", EntryID: 3})
			rec := httptest.NewRecorder()
			HandleBuy(svc)(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantReadyAt, resp.ReadyAt)
		})
	}
}
