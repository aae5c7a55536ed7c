// Package revocation guards writes to revoked vaccine proofs.
//
// HandleRevocation is a before hook for update and patch. It asks a
// ports.RevocationChecker for the target's status and rejects the call when
// the proof is revoked. A payload that revokes an active proof is stamped
// with revoked_at and a default reason before the write proceeds.
//
// Checkers:
//
//   - StoreChecker reads the status from the proof store.
//   - WebhookChecker asks an external revocation service over HTTP.
//   - CachedChecker remembers revoked statuses in an expirable LRU.
package revocation
