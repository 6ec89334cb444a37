package merchant

import "time"

// Entry cache sizing. Entries are immutable per rotation, so the TTL only
// bounds memory for superseded rotations.
const (
	entryCacheSize = 8
	entryCacheTTL  = 5 * time.Minute
)

// purchaseTimeout bounds the atomic purchase section: if the row lock or
// commit cannot complete in time, the purchase fails closed.
const purchaseTimeout = 10 * time.Second

// Error context strings
const (
	ErrContextFailedToGetSettings = "failed to get merchant settings"
	ErrContextFailedToGetRotation = "failed to get active rotation"
	ErrContextFailedToGetEntries  = "failed to get rotation entries"
	ErrContextFailedToGetItems    = "failed to get enabled items"
	ErrContextFailedToGetLedger   = "failed to get last purchase"
	ErrContextFailedToGetPlayer   = "failed to get player"
	ErrContextFailedToCreate      = "failed to create rotation"
)

// Log messages
const (
	LogMsgRotationCreated      = "Merchant rotation created"
	LogMsgNoEnabledItems       = "No enabled merchant items found, skipping rotation"
	LogMsgBuyCalled            = "Buy called"
	LogMsgPurchaseComplete     = "Merchant purchase complete"
	LogMsgPurchaseRaceDetected = "Concurrent purchase drained balance before lock"
	LogMsgPurchaseTxFailed     = "Merchant purchase transaction failed"
)
