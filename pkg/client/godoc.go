// Package client defines the interfaces and domain types shared by the
// VirtEngine client SDK's transaction pipeline and event subscription
// packages. Concrete implementations live in the subpackages (keys, query,
// rpc, tx, events); this package holds only the contracts which cross
// package boundaries.
package client
