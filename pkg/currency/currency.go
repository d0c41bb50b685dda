package currency

import (
	"math"
	"strings"
)

const (
	// MinDurationMinutes is the shortest billable session.
	MinDurationMinutes = 15
	// MinPricePerHourMinor guards against a misconfigured zero price.
	MinPricePerHourMinor int64 = 100
)

// NormalizeCode lower-cases and trims an ISO currency code. The legacy data
// set contains the misspelled alias "dtn" for the Tunisian dinar.
func NormalizeCode(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" || normalized == "dtn" {
		return "tnd"
	}
	return normalized
}

// AmountMinorForDuration computes the charge for a session in minor currency
// units: ceil((durationMinutes/60) * pricePerHourMinor), floored to the
// provider minimum so the processor never rejects a sub-minimum charge.
func AmountMinorForDuration(durationMinutes int, pricePerHourMinor, minimumMinor int64) int64 {
	if durationMinutes < MinDurationMinutes {
		durationMinutes = MinDurationMinutes
	}
	if pricePerHourMinor < MinPricePerHourMinor {
		pricePerHourMinor = MinPricePerHourMinor
	}

	amount := int64(math.Ceil(float64(durationMinutes) / 60 * float64(pricePerHourMinor)))
	if amount < minimumMinor {
		return minimumMinor
	}
	return amount
}
