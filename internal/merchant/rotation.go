package merchant

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/logger"
	"github.com/ballsdex/merchant-service/internal/metrics"
)

// EnsureRotation guarantees an active rotation exists when the merchant is
// enabled. Safe to call concurrently: the whole check-then-create sequence
// runs under rotationMu, so at most one creation executes at a time and a
// still-active rotation is returned unchanged.
func (s *service) EnsureRotation(ctx context.Context) (*domain.MerchantRotation, error) {
	s.rotationMu.Lock()
	defer s.rotationMu.Unlock()

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetSettings, err)
	}
	if !settings.Enabled {
		return nil, nil
	}

	now := s.now()
	rotation, err := s.repo.GetActiveRotation(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRotation, err)
	}
	if rotation != nil {
		return rotation, nil
	}

	return s.createRotation(ctx, settings)
}

// createRotation samples a weighted subset of the enabled catalog and
// persists rotation plus entries atomically. Caller holds rotationMu.
func (s *service) createRotation(ctx context.Context, settings *domain.MerchantSettings) (*domain.MerchantRotation, error) {
	log := logger.FromContext(ctx)

	items, err := s.repo.GetEnabledItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetItems, err)
	}
	if len(items) == 0 {
		log.Warn(LogMsgNoEnabledItems)
		return nil, nil
	}

	k := settings.ItemsPerRotation
	if k > len(items) {
		k = len(items)
	}
	selected := sampleWithoutReplacement(items, k, s.rnd)

	now := s.now()
	rotation := &domain.MerchantRotation{
		ID:       uuid.New(),
		StartsAt: now,
		EndsAt:   now.Add(settings.RotationDuration()),
	}

	entries, err := s.repo.CreateRotation(ctx, rotation, selected)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToCreate, err)
	}
	s.entries.Set(rotation.ID, entries)

	metrics.RotationsCreated.Inc()
	log.Info(LogMsgRotationCreated,
		"rotation_id", rotation.ID,
		"items", len(entries),
		"ends_at", rotation.EndsAt)
	return rotation, nil
}
