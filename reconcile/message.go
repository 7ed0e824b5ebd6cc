package reconcile

// Kind identifies a protocol message type.
type Kind int

const (
	// Summary carries the sender's claimed view of the document. It is the
	// only kind exercised by the present protocol.
	Summary Kind = iota
	// RequestDiff and Diff are reserved for a fuller diff-exchange protocol.
	RequestDiff
	Diff
)

// String returns the wire name of the message kind.
func (k Kind) String() string {
	switch k {
	case RequestDiff:
		return "REQDIFF"
	case Diff:
		return "DIFF"
	default:
		return "SUMMARY"
	}
}

// Broadcast is the receiver sentinel for a message not yet addressed to a
// specific peer.
const Broadcast = -1

// Operation is a placeholder for a single document operation carried by a
// Diff message. Unused by the summary-only protocol.
type Operation map[string]interface{}

// Message is a single directed protocol exchange. Messages are created fresh
// per (sender, peer) pair per round and never reused across rounds.
type Message struct {
	Sender     int
	Receiver   int
	Kind       Kind
	View       View
	Operations []Operation
	Round      int
}
