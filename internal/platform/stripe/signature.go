package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SignatureTolerance bounds how old a signed webhook timestamp may be.
const SignatureTolerance = 300 * time.Second

// VerifyWebhookSignature authenticates a webhook delivery against the
// endpoint secret using the t=<unix>,v1=<hex> header scheme.
func (g *Gateway) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	if g.cfg.WebhookSecret == "" {
		return false
	}
	return verifySignedPayload(g.cfg.WebhookSecret, rawBody, signatureHeader, time.Now(), SignatureTolerance)
}

// verifySignedPayload checks freshness of the embedded timestamp and compares
// the expected HMAC-SHA256 of "<t>.<body>" against every v1 candidate in
// constant time. Any matching candidate authenticates the delivery.
func verifySignedPayload(secret string, body []byte, header string, now time.Time, tolerance time.Duration) bool {
	ts, candidates := parseSignatureHeader(header)
	if ts == 0 || len(candidates) == 0 {
		return false
	}

	issued := time.Unix(ts, 0)
	age := now.Sub(issued)
	if age > tolerance || age < -tolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		sig, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, sig) {
			return true
		}
	}
	return false
}

// parseSignatureHeader splits "t=1700000000,v1=abc,v1=def" into the
// timestamp and the v1 signature candidates. Unknown schemes are ignored.
func parseSignatureHeader(header string) (int64, []string) {
	var ts int64
	var candidates []string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, nil
			}
			ts = parsed
		case "v1":
			if v != "" {
				candidates = append(candidates, v)
			}
		}
	}
	return ts, candidates
}
