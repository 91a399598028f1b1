// Package tx provides the sender side of the transaction lifecycle: unsigned
// transaction construction, canonical signing payloads, deterministic
// encoding, synchronous broadcast, per-account sequence tracking, and a
// bounded retry loop which recovers from stale sequences without ever
// double-spending a sequence number from this process.
package tx
