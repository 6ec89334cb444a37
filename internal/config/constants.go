package config

const (
	// DefaultRotationRefreshMinutes matches the merchant's background refresh
	// cadence; an expired rotation is replaced within this window even with
	// no active viewers.
	DefaultRotationRefreshMinutes = 5

	DefaultWorkerCount     = 2
	DefaultWorkerQueueSize = 16
)
