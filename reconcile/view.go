package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// View is one agent's belief about a versioned DID document: which document,
// at which version, with which content digest, observed when. Views are
// immutable values; "updating" a view always means replacing the holder's
// copy with a fresh one.
type View struct {
	Subject   string    `json:"subject"`
	Version   int       `json:"version"`
	Digest    string    `json:"digest"`
	Timestamp time.Time `json:"timestamp"`
}

// Equal reports whether two views describe the same document state.
// Timestamp is provenance metadata only and never participates in equality;
// convergence checks and conflict detection depend on this.
func (v View) Equal(o View) bool {
	return v.Subject == o.Subject && v.Version == o.Version && v.Digest == o.Digest
}

// Digest computes the content digest used throughout the simulation:
// the first 16 hex characters of the SHA-256 of the canonical string.
func Digest(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:16]
}

// documentDigest returns the digest of the canonical document encoding for a
// given version. Honest views and the ledger ground truth are derived from it.
func documentDigest(version int) string {
	return Digest(fmt.Sprintf("ledger_doc_v%d", version))
}
