// Package reconcile drives the reconciliation protocols of the integrity model.
//
// The Engine works purely through store.Store, so it runs unchanged over the memory
// and the relational backend. Each protocol is a short sequence of store primitives
// that the caller triggers, on demand or on a schedule.
//
// # Listing sweep
//
// A full listing sweep detects files that disappeared from a pillar:
//
//	cutoff, err := engine.BeginFullListingSweep(ctx, "books") // every record UNKNOWN
//	// ... ingest the complete listing of every pillar ...
//	result, err := engine.ConcludeSweep(ctx, "books", cutoff) // unlisted records MISSING
//
// A file reported in every earlier cycle but absent from the latest one therefore ends
// in MISSING instead of silently vanishing.
//
// # Checksum consistency
//
// ReconcileChecksums compares the checksums of the records that are not MISSING and
// were computed at or after the cutoff. Files whose records all agree become VALID;
// files with disagreeing records are reported and left untouched. Flagging a checksum
// as ERROR is an explicit operator decision: PlanChecksumVotes proposes it by majority
// vote, and ApplyPlan executes the proposal only when confirmed.
//
// # Audit
//
// Audit collects missing files, missing checksums, inconsistent checksums and the
// per-pillar counters into a Report and records it as collection statistics.
package reconcile
