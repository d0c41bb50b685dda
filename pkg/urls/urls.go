package urls

import (
	"net/url"
	"strings"
)

// Builder generates the absolute callback URLs embedded in provider
// payloads (success/cancel redirects and webhook endpoints).
type Builder struct {
	base string
}

func New(publicBaseURL string) *Builder {
	return &Builder{base: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")}
}

func (b *Builder) absolute(path string) string {
	return b.base + "/" + strings.TrimLeft(path, "/")
}

func (b *Builder) PaymentSuccess(reservationID string) string {
	return b.absolute("/payment/reservations/" + url.PathEscape(reservationID) + "/success")
}

func (b *Builder) PaymentCancel(reservationID string) string {
	return b.absolute("/payment/reservations/" + url.PathEscape(reservationID) + "/cancel")
}

func (b *Builder) StripeWebhook() string {
	return b.absolute("/webhooks/stripe")
}

func (b *Builder) KonnectWebhook() string {
	return b.absolute("/webhooks/konnect")
}

// AppendQuery appends key=value to u, using ? or & as appropriate.
func AppendQuery(u, key, value string) string {
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + key + "=" + url.QueryEscape(value)
}
