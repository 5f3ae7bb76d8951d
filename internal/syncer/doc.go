// Package syncer keeps the local quote store and the remote collection in
// step.
//
// A cycle moves Idle → Syncing and ends in one of three outcomes:
//
//   - Online: the remote snapshot merged cleanly, local-only quotes were pushed
//   - Conflict: some remote quote shares text with a local one but not its
//     category; nothing is merged until Resolve is called
//   - Offline: the fetch failed; the store is untouched
//
// Conflicts match by text alone while the store deduplicates by text and
// category together, so a Merge resolution keeps both variants of a quote.
//
// Only one cycle or resolution runs at a time; a concurrent attempt gets
// ErrSyncInProgress, which is how overlapping auto-sync ticks are dropped.
// The merge step runs inside state.Store.Mutate so it always sees the
// collection as it is after the fetch returns, not a stale copy.
//
// Engine.Reset bumps a generation counter. A cycle that started before the
// reset drops its merge, push and bookkeeping and returns ErrSuperseded.
package syncer
