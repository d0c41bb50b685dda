package payment

import "errors"

var (
	// ErrProviderNotConfigured means credentials are absent; no network call
	// was attempted.
	ErrProviderNotConfigured = errors.New("payment provider is not configured")

	// ErrProviderUnavailable wraps transport failures and timeouts on
	// outbound provider calls; safe to retry.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrProviderRejected wraps a provider error response (4xx/5xx with a
	// message).
	ErrProviderRejected = errors.New("payment provider rejected the request")

	ErrReservationNotPayable   = errors.New("reservation must be accepted before payment")
	ErrReservationAlreadyPaid  = errors.New("reservation is already paid")
	ErrMissingParticipantEmail = errors.New("participant email is missing")
	ErrInvalidProviderResponse = errors.New("provider response is missing reference or redirect url")
	ErrElementsUnsupported     = errors.New("embedded card payment is not available for the active provider")
)
