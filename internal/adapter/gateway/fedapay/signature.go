package fedapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader    = "X-FEDAPAY-SIGNATURE"
	SignatureTolerance = 5 * time.Minute
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySignature accepts either a bare hex HMAC-SHA256 of the body or the
// "t=<unix>,s=<hex>" form signed over "<t>.<body>".
func VerifySignature(secret, header string, body []byte, now time.Time) error {
	header = strings.TrimSpace(header)
	if secret == "" || header == "" {
		return ErrInvalidSignature
	}

	if !strings.Contains(header, "=") {
		return compare(sign(secret, body), header)
	}

	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "s", "v1":
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return ErrInvalidSignature
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if d := now.Sub(time.Unix(sec, 0)); d > SignatureTolerance || d < -SignatureTolerance {
		return ErrInvalidSignature
	}
	return compare(sign(secret, []byte(ts+"."+string(body))), sig)
}

// Sign returns the header value FedaPay would send for body at t.
func Sign(secret string, body []byte, t time.Time) string {
	ts := strconv.FormatInt(t.Unix(), 10)
	return "t=" + ts + ",s=" + hex.EncodeToString(sign(secret, []byte(ts+"."+string(body))))
}

func sign(secret string, payload []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return h.Sum(nil)
}

func compare(expected []byte, got string) error {
	decoded, err := hex.DecodeString(strings.ToLower(got))
	if err != nil || !hmac.Equal(expected, decoded) {
		return ErrInvalidSignature
	}
	return nil
}
