package sub

import (
	"encoding/json"
	"log"
	"sort"
	"sync"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/observability"
)

// Sender is the outbound side of the stream connection.
type Sender interface {
	WriteJSON(v interface{}) error
	State() domain.ConnectionState
}

// subscribeRequest is a JSON-RPC logsSubscribe request. The provider
// accepts exactly one mentioned address per request; batching topics
// into one request is a protocol violation.
type subscribeRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func newSubscribeRequest(id uint64, address string) subscribeRequest {
	return subscribeRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{address}},
			map[string]string{"commitment": "finalized"},
		},
	}
}

// pendingSub ties an outstanding request id to its topic and the
// connection epoch the request was sent in.
type pendingSub struct {
	topic domain.Topic
	epoch uint64
}

// Manager issues per-topic subscriptions and correlates acks and errors
// against outstanding requests. All subscription state is scoped to one
// connection epoch and discarded on disconnect.
type Manager struct {
	sender Sender
	logger *log.Logger

	mu        sync.Mutex
	programs  []domain.Topic
	watched   map[string]struct{}
	epoch     uint64
	nextID    uint64
	pending   map[uint64]pendingSub
	confirmed map[domain.Topic]int64
}

// NewManager creates a Manager with a static program topic set.
func NewManager(sender Sender, programIDs []string, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}

	programs := make([]domain.Topic, 0, len(programIDs))
	for _, id := range programIDs {
		programs = append(programs, domain.NewProgramTopic(id))
	}

	return &Manager{
		sender:    sender,
		logger:    logger,
		programs:  programs,
		watched:   make(map[string]struct{}),
		pending:   make(map[uint64]pendingSub),
		confirmed: make(map[domain.Topic]int64),
	}
}

// Reset discards all pending and confirmed subscriptions and starts a
// fresh request-id sequence for the given connection epoch.
func (m *Manager) Reset(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch = epoch
	m.nextID = 0
	m.pending = make(map[uint64]pendingSub)
	m.confirmed = make(map[domain.Topic]int64)
}

// Clear discards all subscription state. Called on every disconnect;
// the remote invalidates subscription ids with the connection.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = make(map[uint64]pendingSub)
	m.confirmed = make(map[domain.Topic]int64)
}

// SubscribeAll sends one subscribe request per topic: the static
// program set first, then the current watched-account set.
func (m *Manager) SubscribeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeAllLocked()
}

func (m *Manager) subscribeAllLocked() {
	for _, topic := range m.programs {
		m.subscribeLocked(topic)
	}

	watched := make([]string, 0, len(m.watched))
	for addr := range m.watched {
		watched = append(watched, addr)
	}
	sort.Strings(watched)
	for _, addr := range watched {
		m.subscribeLocked(domain.NewWalletTopic(addr))
	}
}

// subscribeLocked sends a single subscribe request and records the
// pending entry. Sends while not CONNECTED fail fast and are logged,
// never queued.
func (m *Manager) subscribeLocked(topic domain.Topic) {
	m.nextID++
	id := m.nextID

	if err := m.sender.WriteJSON(newSubscribeRequest(id, topic.Address)); err != nil {
		m.logger.Printf("subscribe %s %s failed: %v", topic.Kind, topic.Address, err)
		return
	}

	observability.RecordSubscribeRequest()
	m.pending[id] = pendingSub{topic: topic, epoch: m.epoch}
}

// RefreshWatchedAccounts replaces the watched-account topic set. When
// connected this triggers a full re-subscription; duplicate
// subscriptions to an already-subscribed topic are tolerated and simply
// overwrite the same confirmed entry.
func (m *Manager) RefreshWatchedAccounts(addrs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watched = make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		m.watched[a] = struct{}{}
	}

	if m.sender.State() == domain.StateConnected {
		m.subscribeAllLocked()
	}
}

// HandleAck records the confirmed subscription id for the topic of
// request id and drops the pending entry.
func (m *Manager) HandleAck(id uint64, subscriptionID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[id]
	if !ok {
		m.logger.Printf("subscription ack for unknown request id %d (sub %d)", id, subscriptionID)
		return
	}
	delete(m.pending, id)

	if p.epoch != m.epoch {
		// Confirmation from a previous connection; its subscription id is dead.
		return
	}

	m.confirmed[p.topic] = subscriptionID
}

// HandleError drops the pending entry for a failed subscribe request.
// A failing topic is not retried within the same connection.
func (m *Manager) HandleError(id uint64, errPayload json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pending[id]
	if !ok {
		m.logger.Printf("subscription error for unknown request id %d: %s", id, errPayload)
		return
	}
	delete(m.pending, id)

	m.logger.Printf("subscription failed for %s %s: %s", p.topic.Kind, p.topic.Address, errPayload)
}

// IsWatched reports whether the address is in the watched-account set.
func (m *Manager) IsWatched(address string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.watched[address]
	return ok
}

// WatchedCount returns the size of the watched-account set.
func (m *Manager) WatchedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watched)
}

// PendingCount returns the number of outstanding subscribe requests.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// SubscriptionIDs returns the confirmed subscription ids, sorted.
func (m *Manager) SubscriptionIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.confirmed))
	for _, id := range m.confirmed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ConfirmedID returns the subscription id for a topic, if confirmed.
func (m *Manager) ConfirmedID(topic domain.Topic) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.confirmed[topic]
	return id, ok
}
