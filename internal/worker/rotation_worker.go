package worker

import (
	"context"

	"github.com/ballsdex/merchant-service/internal/logger"
	"github.com/ballsdex/merchant-service/internal/merchant"
)

// RotationJob asks the merchant service to ensure an active rotation exists.
// It is enqueued periodically by the scheduler, independent of user traffic,
// so an expired rotation is replaced even with no active viewers.
type RotationJob struct {
	svc merchant.Service
}

// NewRotationJob creates a rotation refresh job
func NewRotationJob(svc merchant.Service) *RotationJob {
	return &RotationJob{svc: svc}
}

// Process runs one refresh tick. EnsureRotation is idempotent, so overlap
// with a user-triggered call is harmless.
func (j *RotationJob) Process(ctx context.Context) error {
	rotation, err := j.svc.EnsureRotation(ctx)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgRotationTickError, "error", err)
		return err
	}
	if rotation != nil {
		logger.FromContext(ctx).Debug(LogMsgRotationEnsured, "rotation_id", rotation.ID)
	}
	return nil
}
