package model

// Sentinel fuel-type labels. These mark rows that carry no real price data:
// fetch failures, empty extractions, and unlabeled fallback matches. They
// flow through the result path like ordinary rows so every layer has at
// least one row to reason about, but the store drops them at the write
// boundary and aggregation skips them.
const (
	// NoValue is the placeholder price when no numeric value exists.
	NoValue = "NAN"

	// NoPricesFound marks a well-formed page where every extraction
	// strategy came up empty.
	NoPricesFound = "No prices found"

	// NoCachedPrices marks a cache-skip result for a club with no history.
	NoCachedPrices = "No cached prices"

	// NoPricesAvailable marks a failed fetch with no cached fallback.
	NoPricesAvailable = "No prices available"

	// UnknownFuelType labels a price found by the last-resort text scan,
	// where no fuel grade label could be recovered.
	UnknownFuelType = "Unknown"

	// FetchError is the fuel type of a row whose price field carries the
	// fetch failure description.
	FetchError = "Error"
)

// IsSentinel reports whether a fuel-type label is one of the reserved
// non-value placeholders. Consumers aggregating prices must skip rows for
// which this returns true.
func IsSentinel(fuelType string) bool {
	switch fuelType {
	case FetchError, NoPricesFound, NoCachedPrices, NoPricesAvailable, UnknownFuelType:
		return true
	}
	return false
}
