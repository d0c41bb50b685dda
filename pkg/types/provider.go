package types

// PaymentProvider identifies the active checkout provider.
type PaymentProvider string

const (
	// PaymentProviderStripe is the card processor (hosted checkout + embedded elements).
	PaymentProviderStripe PaymentProvider = "stripe"
	// PaymentProviderKonnect is the wallet-based regional processor.
	PaymentProviderKonnect PaymentProvider = "konnect"
	// PaymentProviderMock is the deterministic in-process provider used in dev.
	PaymentProviderMock PaymentProvider = "mock"
)

func (p PaymentProvider) Valid() bool {
	switch p {
	case PaymentProviderStripe, PaymentProviderKonnect, PaymentProviderMock:
		return true
	}
	return false
}
