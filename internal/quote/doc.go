// Package quote defines the Quote record shared by every quoter component,
// the identity rules used for deduplication and conflict matching, the
// built-in default collection, and the error taxonomy the rest of the
// application reports through.
//
// # Identity
//
// Two identity rules coexist on purpose:
//
//   - Key: case-insensitive (text, category). Used by the store, the
//     import codec and clean sync merges to reject duplicates.
//   - TextKey: case-insensitive text only. Used by the sync engine to pair
//     a local quote with its remote counterpart when detecting conflicts.
//
// A local "T"/life and a remote "T"/wisdom therefore have different Keys
// (both may live in the store after a merge) but the same TextKey (they
// are reported as a conflict).
//
// # Errors
//
//   - ValidationError: bad user input, the item is rejected
//   - StorageError: durable or session storage failed, memory stays authoritative
//   - NetworkError: remote fetch or push failed, sync goes offline
//   - ConflictError: not a failure, a decision the caller must make
package quote
