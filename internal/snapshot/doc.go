// Package snapshot persists the basket controller's singleton state.
//
// The document {"basketId": "...", "totalItems": N} is stored under the fixed
// key BasketKey in a Storage slot. It is read once when a controller starts
// and written back after every acknowledged change. SQLiteStorage is the
// durable slot used by the application; MemoryStorage serves tests and
// one-shot commands.
//
// Load never fails startup: a missing slot yields the zero document, a corrupt
// one yields the zero document plus a *PersistenceError for the caller to log.
package snapshot
