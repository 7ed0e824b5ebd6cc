package reconcile

import (
	"testing"
	"time"
)

func TestViewEqualIgnoresTimestamp(t *testing.T) {
	a := View{Subject: "did:example:123", Version: 10, Digest: "abcd", Timestamp: time.Now()}
	b := View{Subject: "did:example:123", Version: 10, Digest: "abcd", Timestamp: time.Now().Add(-time.Hour)}

	if !a.Equal(b) {
		t.Error("views differing only in timestamp must be equal")
	}
}

func TestViewEqualDetectsDivergence(t *testing.T) {
	base := View{Subject: "did:example:123", Version: 10, Digest: "abcd"}

	cases := []struct {
		name  string
		other View
	}{
		{"subject", View{Subject: "did:example:456", Version: 10, Digest: "abcd"}},
		{"version", View{Subject: "did:example:123", Version: 9, Digest: "abcd"}},
		{"digest", View{Subject: "did:example:123", Version: 10, Digest: "ffff"}},
	}
	for _, tc := range cases {
		if base.Equal(tc.other) {
			t.Errorf("views differing in %s must not be equal", tc.name)
		}
	}
}

func TestDigestStable(t *testing.T) {
	d := Digest("ledger_doc_v10")
	if len(d) != 16 {
		t.Fatalf("expected 16 hex chars, got %d", len(d))
	}
	if d != Digest("ledger_doc_v10") {
		t.Error("digest must be deterministic")
	}
	if d == Digest("ledger_doc_v9") {
		t.Error("distinct inputs must not collide on adjacent versions")
	}
}
