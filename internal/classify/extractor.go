package classify

// Solana addresses are base58 (Bitcoin alphabet) encodings of 32-byte
// keys, 32 to 44 characters long.
const (
	minAddressLen = 32
	maxAddressLen = 44
)

// isBase58 reports whether b is in the base58 alphabet
// (no 0, O, I, l).
func isBase58(b byte) bool {
	switch {
	case b >= '1' && b <= '9':
		return true
	case b >= 'A' && b <= 'Z':
		return b != 'I' && b != 'O'
	case b >= 'a' && b <= 'z':
		return b != 'l'
	default:
		return false
	}
}

// ExtractAddresses scans raw log lines for address-shaped tokens: every
// maximal base58-alphabet run with length in [32,44], deduplicated
// across the notification, in first-seen order. Intentionally
// permissive; downstream consumers must tolerate non-address tokens
// that happen to satisfy the shape.
func ExtractAddresses(logs []string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, line := range logs {
		start := -1
		for i := 0; i <= len(line); i++ {
			if i < len(line) && isBase58(line[i]) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				run := line[start:i]
				start = -1
				if len(run) < minAddressLen || len(run) > maxAddressLen {
					continue
				}
				if _, dup := seen[run]; dup {
					continue
				}
				seen[run] = struct{}{}
				out = append(out, run)
			}
		}
	}

	return out
}
