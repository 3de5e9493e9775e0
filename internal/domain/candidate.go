package domain

// CandidateWallet is an address surfaced by heuristic extraction,
// awaiting external scoring. Persisted via upsert keyed on Address.
type CandidateWallet struct {
	Address      string
	Source       string  // discovery source, e.g. "DEX activity"
	TxSignature  string  // transaction the address was first seen in
	Slot         int64   // Solana slot number
	Confidence   float64 // initial stub confidence, not a real score
	DiscoveredAt int64   // Unix timestamp in milliseconds
}

// SourceDEXActivity marks candidates extracted from DEX log traffic.
const SourceDEXActivity = "DEX activity"
