package merchant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ballsdex/merchant-service/internal/concurrency"
	"github.com/ballsdex/merchant-service/internal/domain"
	"github.com/ballsdex/merchant-service/internal/repository"
	"github.com/ballsdex/merchant-service/internal/utils"
)

// Service defines the interface for merchant operations
type Service interface {
	// EnsureRotation guarantees an active rotation exists when the merchant
	// is enabled, creating one if the current rotation expired or none
	// exists. A nil rotation with nil error means the merchant is
	// unavailable (disabled, or empty catalog).
	EnsureRotation(ctx context.Context) (*domain.MerchantRotation, error)

	// GetActiveRotation is the read-only view path; it never creates
	// anything and does not take the rotation lock.
	GetActiveRotation(ctx context.Context) (*domain.MerchantRotation, error)

	// GetRotationEntries returns a rotation's entries for display and
	// candidate filtering.
	GetRotationEntries(ctx context.Context, rotationID uuid.UUID) ([]domain.RotationEntry, error)

	// Buy purchases one rotation entry for the player.
	Buy(ctx context.Context, playerID string, entryID int64, serverID string) (*PurchaseResult, error)
}

// PurchaseResult describes a completed purchase
type PurchaseResult struct {
	Instance   domain.BallInstance  `json:"instance"`
	Entry      domain.RotationEntry `json:"entry"`
	NewBalance int64                `json:"new_balance"`
}

type service struct {
	repo  repository.Merchant
	locks *concurrency.LockManager

	// rotationMu serializes the check-then-create sequence so concurrent
	// callers (scheduler tick, user commands) cannot create duplicate
	// rotations. The read-only view path does not take it.
	rotationMu sync.Mutex

	entries *entryCache

	now func() time.Time
	rnd func() float64
}

// Option customizes the service; used by tests to inject clock and RNG.
type Option func(*service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithRand overrides the random source. The function must return values in [0, 1).
func WithRand(rnd func() float64) Option {
	return func(s *service) { s.rnd = rnd }
}

// NewService creates a new merchant service
func NewService(repo repository.Merchant, opts ...Option) Service {
	s := &service{
		repo:    repo,
		locks:   concurrency.NewLockManager(),
		entries: newEntryCache(entryCacheSize, entryCacheTTL),
		now:     time.Now,
		rnd:     utils.RandomFloat,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetActiveRotation returns the currently active rotation without creating one
func (s *service) GetActiveRotation(ctx context.Context) (*domain.MerchantRotation, error) {
	rotation, err := s.repo.GetActiveRotation(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetRotation, err)
	}
	return rotation, nil
}

// GetRotationEntries returns the rotation's entries, served from the cache
// when possible. Entries are immutable per rotation so caching by rotation id
// is always consistent.
func (s *service) GetRotationEntries(ctx context.Context, rotationID uuid.UUID) ([]domain.RotationEntry, error) {
	if cached, ok := s.entries.Get(rotationID); ok {
		return cached, nil
	}

	entries, err := s.repo.GetRotationEntries(ctx, rotationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrContextFailedToGetEntries, err)
	}
	s.entries.Set(rotationID, entries)
	return entries, nil
}
