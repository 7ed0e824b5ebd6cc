package reconcile

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Common errors for network configuration.
var (
	ErrInvalidAgentCount    = errors.New("agent count must be positive")
	ErrInvalidFanout        = errors.New("fanout must be positive")
	ErrInvalidByzantine     = errors.New("byzantine count must be in [0, agents)")
	ErrByzantineBoundBroken = errors.New("byzantine count must be below one third of agents")
)

const (
	// DefaultSubject is the DID reconciled when none is configured.
	DefaultSubject = "did:example:123"
	// DefaultMaxRounds is the round budget when none is configured.
	DefaultMaxRounds = 50

	// truthVersion is the version of the ledger ground truth. Honest agents
	// start strictly below it; Byzantine fabrications may exceed it.
	truthVersion = 10

	staleVersionMin = 5
	fakeVersionMax  = 15
	lieVersionMin   = 8
	lieVersionMax   = 20
)

// Config holds the parameters of one reconciliation session.
type Config struct {
	// Agents is the total number of participants.
	Agents int `json:"n_agents"`
	// Byzantine is the number of adversarial participants. The protocol's
	// safety argument requires Byzantine < Agents/3.
	Byzantine int `json:"f_byzantine"`
	// Fanout is the number of peers each agent contacts per round,
	// effectively capped at Agents-1.
	Fanout int `json:"fanout"`
	// Subject is the DID being reconciled. Defaults to DefaultSubject.
	Subject string `json:"subject,omitempty"`
	// Seed seeds the session's single randomness source; a fixed seed
	// replays the session exactly.
	Seed int64 `json:"seed"`
	// MaxRounds is the round budget. Defaults to DefaultMaxRounds.
	MaxRounds int `json:"max_rounds,omitempty"`
}

// Validate rejects configurations the protocol has no correctness guarantee
// for. Violations are precondition failures: no Network is constructed.
func (c Config) Validate() error {
	if c.Agents <= 0 {
		return ErrInvalidAgentCount
	}
	if c.Fanout <= 0 {
		return ErrInvalidFanout
	}
	if c.Byzantine < 0 || c.Byzantine >= c.Agents {
		return ErrInvalidByzantine
	}
	if 3*c.Byzantine >= c.Agents {
		return ErrByzantineBoundBroken
	}
	return nil
}

// Stats is the structured output of one reconciliation session.
type Stats struct {
	Agents              int     `json:"n_agents"`
	Byzantine           int     `json:"f_byzantine"`
	Fanout              int     `json:"fanout"`
	Rounds              int     `json:"rounds"`
	Converged           bool    `json:"converged"`
	ConvergenceRound    *int    `json:"convergence_round,omitempty"`
	TotalMessages       int     `json:"total_messages"`
	AuthorityQueries    int     `json:"total_authority_queries"`
	AvgMessagesPerAgent float64 `json:"avg_messages_per_agent"`
	AvgQueriesPerAgent  float64 `json:"avg_queries_per_agent"`
	HonestAgents        int     `json:"honest_agents"`
	ByzantineAgents     int     `json:"byzantine_agents"`
}

// Network owns one reconciliation session: the agent population, the ledger
// ground truth, the round counter and the session-wide totals. Nothing is
// shared across sessions; independent trials may run in parallel.
type Network struct {
	cfg    Config
	rng    *rand.Rand
	agents []*Agent
	truth  View

	round            int
	convergenceRound int // -1 until convergence is first observed
	totalMessages    int
	totalQueries     int
}

// NewNetwork constructs a session: draws the Byzantine subset uniformly
// without replacement, fixes the ledger ground truth and seeds every agent
// with a divergent initial view.
func NewNetwork(cfg Config) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultMaxRounds
	}
	if cfg.Fanout > cfg.Agents-1 {
		cfg.Fanout = cfg.Agents - 1
	}

	n := &Network{
		cfg:              cfg,
		rng:              rand.New(rand.NewSource(cfg.Seed)),
		agents:           make([]*Agent, 0, cfg.Agents),
		convergenceRound: -1,
	}

	byzantine := make(map[int]bool, cfg.Byzantine)
	for _, id := range n.rng.Perm(cfg.Agents)[:cfg.Byzantine] {
		byzantine[id] = true
	}
	for id := 0; id < cfg.Agents; id++ {
		role := Honest
		if byzantine[id] {
			role = Byzantine
		}
		n.agents = append(n.agents, NewAgent(id, role))
	}

	n.truth = View{
		Subject:   cfg.Subject,
		Version:   truthVersion,
		Digest:    documentDigest(truthVersion),
		Timestamp: time.Now(),
	}
	n.seedViews()

	return n, nil
}

// seedViews assigns divergent initial views. Honest agents hold a stale but
// genuine document version; Byzantine agents hold a fabrication not derivable
// from any real document.
func (n *Network) seedViews() {
	for _, a := range n.agents {
		if a.IsByzantine() {
			a.View = View{
				Subject:   n.cfg.Subject,
				Version:   staleVersionMin + n.rng.Intn(fakeVersionMax-staleVersionMin+1),
				Digest:    Digest(fmt.Sprintf("fake_doc_%d", a.ID)),
				Timestamp: time.Now(),
			}
			continue
		}
		stale := staleVersionMin + n.rng.Intn(truthVersion-staleVersionMin)
		age := 10 + n.rng.Float64()*90
		a.View = View{
			Subject:   n.cfg.Subject,
			Version:   stale,
			Digest:    documentDigest(stale),
			Timestamp: time.Now().Add(-time.Duration(age * float64(time.Second))),
		}
	}
}

// selectPeers draws Fanout distinct peers uniformly from the other agents,
// fresh each round.
func (n *Network) selectPeers(agentID int) []int {
	peers := make([]int, 0, n.cfg.Fanout)
	for _, id := range n.rng.Perm(n.cfg.Agents) {
		if id == agentID {
			continue
		}
		peers = append(peers, id)
		if len(peers) == n.cfg.Fanout {
			break
		}
	}
	return peers
}

// fabricateView produces a fresh Byzantine lie: a random claimed version with
// a digest derived from random material. Fabrications are independent per
// outgoing message; the adversary lies differently to different peers.
func (n *Network) fabricateView() View {
	return View{
		Subject:   n.cfg.Subject,
		Version:   lieVersionMin + n.rng.Intn(lieVersionMax-lieVersionMin+1),
		Digest:    Digest(fmt.Sprintf("byzantine_%d", n.rng.Intn(101))),
		Timestamp: time.Now(),
	}
}

// RunRound executes one reconciliation round: every agent emits one Summary
// per selected peer from its pre-round state, then every message is
// delivered. Returns true once all honest agents hold the ground truth.
func (n *Network) RunRound() bool {
	n.round++

	queue := make([]Message, 0, n.cfg.Agents*n.cfg.Fanout)
	for _, a := range n.agents {
		a.Peers = n.selectPeers(a.ID)
		for _, peer := range a.Peers {
			carried := a.View
			if a.IsByzantine() {
				carried = n.fabricateView()
			}
			queue = append(queue, Message{
				Sender:   a.ID,
				Receiver: peer,
				Kind:     Summary,
				View:     carried,
				Round:    n.round,
			})
			a.Sent++
			n.totalMessages++
		}
	}

	for i := range queue {
		n.deliver(queue[i])
	}

	return n.checkConvergence()
}

// deliver applies the conservative update rule at the receiver. A version
// strictly ahead of the receiver's, or a digest conflict at the same version,
// is indistinguishable from a lie, so the receiver escalates to the ledger
// instead of trusting the peer. An honest agent therefore only ever keeps its
// prior view or adopts the verified ground truth.
func (n *Network) deliver(msg Message) {
	recv := n.agents[msg.Receiver]
	recv.Received++

	if recv.IsByzantine() {
		return
	}

	in := msg.View
	switch {
	case in.Version > recv.View.Version:
		n.queryAuthority(recv)
	case in.Version == recv.View.Version && in.Digest != recv.View.Digest:
		n.queryAuthority(recv)
	}
}

// queryAuthority fetches the ledger ground truth for an honest agent and
// replaces its local view, re-stamped with the current time.
func (n *Network) queryAuthority(a *Agent) {
	a.AuthorityQueries++
	n.totalQueries++
	a.View = View{
		Subject:   n.truth.Subject,
		Version:   n.truth.Version,
		Digest:    n.truth.Digest,
		Timestamp: time.Now(),
	}
}

// checkConvergence reports whether every honest agent's view equals the
// ground truth. The convergence round is recorded once and never changes on
// later checks.
func (n *Network) checkConvergence() bool {
	for _, a := range n.agents {
		if a.IsByzantine() {
			continue
		}
		if !a.View.Equal(n.truth) {
			return false
		}
	}
	if n.convergenceRound < 0 {
		n.convergenceRound = n.round
	}
	return true
}

// RunUntilConvergence runs rounds until the first converged round or until
// the round budget is exhausted, whichever comes first.
func (n *Network) RunUntilConvergence() Stats {
	for i := 0; i < n.cfg.MaxRounds; i++ {
		if n.RunRound() {
			break
		}
	}
	return n.Stats()
}

// Stats exports the session's statistics.
func (n *Network) Stats() Stats {
	s := Stats{
		Agents:              n.cfg.Agents,
		Byzantine:           n.cfg.Byzantine,
		Fanout:              n.cfg.Fanout,
		Rounds:              n.round,
		Converged:           n.convergenceRound >= 0,
		TotalMessages:       n.totalMessages,
		AuthorityQueries:    n.totalQueries,
		AvgMessagesPerAgent: float64(n.totalMessages) / float64(n.cfg.Agents),
		AvgQueriesPerAgent:  float64(n.totalQueries) / float64(n.cfg.Agents),
		HonestAgents:        n.cfg.Agents - n.cfg.Byzantine,
		ByzantineAgents:     n.cfg.Byzantine,
	}
	if s.Converged {
		round := n.convergenceRound
		s.ConvergenceRound = &round
	}
	return s
}

// Truth returns the ledger ground truth for this session.
func (n *Network) Truth() View {
	return n.truth
}

// Agents returns the agent population. Callers must not mutate agents;
// the slice is exposed for inspection and convergence assertions.
func (n *Network) Agents() []*Agent {
	return n.agents
}

// Round returns the number of rounds executed so far.
func (n *Network) Round() int {
	return n.round
}
