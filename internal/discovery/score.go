package discovery

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Stub confidence scores. Real profitability scoring is out of scope;
// only the scorable-candidate interface is preserved. The split between
// on-curve and off-curve keys reflects that PDAs (program-derived, off
// the ed25519 curve) are rarely user wallets.
const (
	confidenceOnCurve   = 0.5
	confidenceOffCurve  = 0.25
	confidenceMalformed = 0.1
)

// scoreAddress assigns the fixed initial confidence for a candidate.
func scoreAddress(address string) float64 {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		// Shape-matched token that is not a valid 32-byte key.
		return confidenceMalformed
	}
	if isOnCurve(raw) {
		return confidenceOnCurve
	}
	return confidenceOffCurve
}

// isOnCurve reports whether the 32 bytes decode to a point on the
// ed25519 curve.
func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
