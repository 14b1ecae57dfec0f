// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentAPI: The marketplace document endpoints (HTTP JSON)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EventStream: The push channel. Without it, lists only change on fetch.
//   - EventDeduplicator: Idempotency window. Without it, an unbounded
//     in-memory set is used.
//   - DocumentCache: Offline copy of fetched pages.
//   - Notifier: Receives summary notifications (upload results, errors).
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
