package domain

// ActivityRecord is one relevant DEX notification archived for
// offline analysis. Best-effort: losing records is acceptable.
type ActivityRecord struct {
	TxSignature  string
	Slot         int64
	MatchedRule  string // program id or keyword that made the event relevant
	WalletsFound int    // distinct candidate addresses extracted
	ObservedAt   int64  // Unix timestamp in milliseconds
}
