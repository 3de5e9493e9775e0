package sub

import (
	"encoding/json"
	"fmt"
	"log"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/observability"
)

// MessageKind tags the decoded variant of an inbound frame.
type MessageKind int

const (
	KindUnrecognized MessageKind = iota
	KindAck
	KindError
	KindNotification
)

// Message is the tagged-variant decoding of one inbound frame.
// Exactly the fields for its Kind are populated.
type Message struct {
	Kind MessageKind

	// Ack / Error
	ID     uint64
	Result int64
	Err    json.RawMessage

	// Notification
	Event *domain.LogEvent
}

// envelope covers every frame shape the provider sends.
type envelope struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      *uint64             `json:"id"`
	Result  *int64              `json:"result"`
	Error   json.RawMessage     `json:"error"`
	Method  string              `json:"method"`
	Params  *notificationParams `json:"params"`
}

type notificationParams struct {
	Subscription int64              `json:"subscription"`
	Result       notificationResult `json:"result"`
}

type notificationResult struct {
	Context *slotContext `json:"context"`
	Value   logsValue    `json:"value"`
}

type slotContext struct {
	Slot int64 `json:"slot"`
}

type logsValue struct {
	Signature string      `json:"signature"`
	Logs      []string    `json:"logs"`
	Err       interface{} `json:"err"`
}

const methodLogsNotification = "logsNotification"

// Decode parses a raw frame into its tagged variant. First match wins:
// id+result is an ack, id+error a subscription error, a logsNotification
// method tag with params a push, anything else unrecognized.
func Decode(raw []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}

	switch {
	case env.ID != nil && env.Result != nil:
		return &Message{Kind: KindAck, ID: *env.ID, Result: *env.Result}, nil

	case env.ID != nil && len(env.Error) > 0:
		return &Message{Kind: KindError, ID: *env.ID, Err: env.Error}, nil

	case env.Method == methodLogsNotification && env.Params != nil:
		event := &domain.LogEvent{
			Signature: env.Params.Result.Value.Signature,
			Logs:      env.Params.Result.Value.Logs,
			Err:       env.Params.Result.Value.Err,
		}
		if env.Params.Result.Context != nil {
			event.Slot = env.Params.Result.Context.Slot
		}
		return &Message{Kind: KindNotification, Event: event}, nil

	default:
		return &Message{Kind: KindUnrecognized}, nil
	}
}

// Dispatcher routes decoded frames to the subscription manager and the
// notification pipeline. A parse failure is logged, never propagated:
// the stream must keep running.
type Dispatcher struct {
	manager *Manager
	onEvent func(*domain.LogEvent)
	logger  *log.Logger
}

// NewDispatcher creates a Dispatcher. onEvent receives every log
// notification; it must do its own deduplication and error handling.
func NewDispatcher(manager *Manager, onEvent func(*domain.LogEvent), logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{manager: manager, onEvent: onEvent, logger: logger}
}

// OnFrame classifies and routes one raw inbound frame. Notifications are
// not logged per-message to bound log volume under high throughput.
func (d *Dispatcher) OnFrame(raw []byte) {
	observability.RecordFrame()

	msg, err := Decode(raw)
	if err != nil {
		d.logger.Printf("dropping malformed frame: %v", err)
		return
	}

	switch msg.Kind {
	case KindAck:
		d.logger.Printf("subscription confirmed: request %d -> sub %d", msg.ID, msg.Result)
		d.manager.HandleAck(msg.ID, msg.Result)

	case KindError:
		observability.RecordSubscriptionError()
		d.manager.HandleError(msg.ID, msg.Err)

	case KindNotification:
		if d.onEvent != nil {
			d.onEvent(msg.Event)
		}

	default:
		d.logger.Printf("unrecognized frame: %s", truncate(raw, 256))
	}
}

// truncate bounds logged frame payloads.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
