package domain

// TopicKind distinguishes what a subscription topic refers to.
type TopicKind string

const (
	// TopicProgram is a DEX program id monitored for any activity.
	TopicProgram TopicKind = "PROGRAM"
	// TopicWallet is a tracked wallet address loaded from the store.
	TopicWallet TopicKind = "WALLET"
)

// Topic is a single address the service subscribes to log events for.
// Immutable once created; usable as a map key.
type Topic struct {
	Address string
	Kind    TopicKind
}

// NewProgramTopic creates a PROGRAM topic.
func NewProgramTopic(address string) Topic {
	return Topic{Address: address, Kind: TopicProgram}
}

// NewWalletTopic creates a WALLET topic.
func NewWalletTopic(address string) Topic {
	return Topic{Address: address, Kind: TopicWallet}
}
