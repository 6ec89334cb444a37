package domain

// MinItemWeight is the floor applied to configured item weights during
// rotation sampling.
const MinItemWeight = 1

// Defaults applied when the settings row is missing.
const (
	DefaultItemsPerRotation        = 5
	DefaultRotationMinutes         = 60
	DefaultPurchaseCooldownSeconds = 300
)
