package domain

// LogEvent is one transaction's log lines as delivered by a
// logsNotification push, plus its slot context.
type LogEvent struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{}
}
