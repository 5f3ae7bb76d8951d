// Package state holds the quote collection and the views derived from it.
//
// # Overview
//
// Store is the single owner of the in-memory quote list. The filter engine,
// the import codec and the sync engine all read and mutate it through its
// methods; nothing else keeps a reference to the underlying slice.
//
//	 add / import / sync                 presentation
//	┌──────────────────┐              ┌──────────────────┐
//	│ Add()            │              │ PickRandom()     │
//	│ Merge()          │──(RWMutex)──→│ Filtered()       │
//	│ Mutate()         │              │ Categories()     │
//	│      ↓           │              │ Status()         │
//	│ persist (kv)     │              │                  │
//	└──────────────────┘              └──────────────────┘
//
// # Persistence
//
// Every mutation updates memory and then writes the full collection to the
// durable key "quotes" while still holding the write lock, so readers never
// observe a state that was not offered to storage. A failed write returns a
// *quote.StorageError; the in-memory collection stays authoritative.
//
// The filter preference is stored under "filter" as a plain string.
//
// # Loading
//
// Load fails open: missing, corrupt or empty storage installs the three
// default quotes and persists them. Stored records are normalized and
// deduplicated on the way in.
//
// # Derived views
//
//   - Categories: recomputed from the collection on every call
//   - Filtered: recomputed whenever the collection or filter changes
//   - PickRandom: uniform draw from Filtered, falling back to the whole
//     collection when Filtered is empty
//
// The fallback means an active filter with no matching quotes still shows a
// quote. Status distinguishes FilterNoQuotesInCategory from FilterStoreEmpty
// so the UI can say which case it is.
//
// # Snapshots
//
// Quotes and Filtered return copies. Mutate hands its callback a copy of the
// current collection and installs whatever the callback returns after
// normalizing and deduplicating it.
package state
