package reconcile

// Role is an agent's behavioral role, fixed at creation.
type Role int

const (
	// Honest agents report their true current view and follow the
	// conservative update rule.
	Honest Role = iota
	// Byzantine agents never update their own view and report arbitrary,
	// independently fabricated views to peers.
	Byzantine
)

// String returns the role name.
func (r Role) String() string {
	if r == Byzantine {
		return "byzantine"
	}
	return "honest"
}

// Agent is a participant in the reconciliation protocol. All counters are
// incremented by the Network only, never by the agent itself, so that
// accounting stays centralized and auditable.
type Agent struct {
	ID   int
	Role Role

	// View is the agent's current local view. It starts stale or divergent
	// and is mutated only by the Network's update rule.
	View View

	// Peers is the peer set chosen for the most recent round.
	Peers []int

	Sent             int
	Received         int
	AuthorityQueries int
}

// NewAgent creates an agent with the given identity and role. The caller must
// assign an initial view before the agent participates in a round.
func NewAgent(id int, role Role) *Agent {
	return &Agent{ID: id, Role: role}
}

// IsByzantine reports whether the agent behaves adversarially.
func (a *Agent) IsByzantine() bool {
	return a.Role == Byzantine
}
