// Package reconcile implements the BFT-MV-DID multi-view reconciliation
// protocol: a round-synchronous gossip network in which honest agents holding
// stale views of a versioned DID document converge to a single ledger-backed
// ground truth despite a bounded minority of Byzantine agents reporting
// fabricated views.
package reconcile
