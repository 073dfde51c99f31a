package geelark

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// signature is the single-use request envelope attached to every call.
// The platform verifies sign = SHA-256(appId + traceId + ts + nonce + apiKey)
// and rejects reused trace ids, which gives replay protection without a
// session token.
type signature struct {
	TraceID   string
	Timestamp string
	Nonce     string
	Sign      string
}

// newSignature generates a fresh envelope: a random 32-hex-char trace id,
// the current millisecond timestamp, and the derived nonce and signature.
func (c *Client) newSignature() (signature, error) {
	traceID := newTraceID()
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return computeSignature(c.appID, c.apiKey, traceID, ts)
}

// newTraceID returns a random 32-character uppercase hex identifier.
// The platform expects a UUID with the dashes stripped; the nonce is
// always the first 6 characters of this value.
func newTraceID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// computeSignature derives the nonce and signature for the given inputs.
// It is a pure function: fixed inputs always produce the same signature.
func computeSignature(appID, apiKey, traceID, ts string) (signature, error) {
	if len(traceID) < 6 {
		return signature{}, fmt.Errorf("geelark: trace id %q too short", traceID)
	}
	nonce := traceID[:6]
	sum := sha256.Sum256([]byte(appID + traceID + ts + nonce + apiKey))
	return signature{
		TraceID:   traceID,
		Timestamp: ts,
		Nonce:     nonce,
		Sign:      strings.ToUpper(hex.EncodeToString(sum[:])),
	}, nil
}
