package tx

import (
	"context"
	"sync"

	"cosmossdk.io/depinject"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

var _ client.SequenceTracker = (*sequenceTracker)(nil)

// sequenceTracker is an optimistic per-account sequence cache. The node is
// the source of truth; the tracker fetches lazily on first use and increments
// locally so that back-to-back submissions from this process never reuse a
// sequence. On a sequence conflict the broadcaster invalidates the account's
// entry, moving the counter forward to the node's view on the next call.
type sequenceTracker struct {
	accountQuerier client.AccountQueryClient

	// entriesMu guards the entries map only; each entry carries its own lock
	// so unrelated accounts proceed independently.
	entriesMu sync.Mutex
	entries   map[string]*sequenceEntry
}

// sequenceEntry is the cached sequence state of one account. Its mutex
// serializes concurrent NextSequence callers for that account.
type sequenceEntry struct {
	mu            sync.Mutex
	fetched       bool
	accountNumber uint64
	// next is the next unissued sequence.
	next uint64
}

// NewSequenceTracker returns a client.SequenceTracker backed by the given
// dependencies.
//
// Required dependencies:
//   - client.AccountQueryClient
func NewSequenceTracker(deps depinject.Config) (client.SequenceTracker, error) {
	tracker := &sequenceTracker{
		entries: make(map[string]*sequenceEntry),
	}

	if err := depinject.Inject(deps, &tracker.accountQuerier); err != nil {
		return nil, err
	}

	return tracker, nil
}

// NextSequence returns the account number and the next unused sequence for
// the given address. The per-account lock is held across the first-use fetch
// so that two concurrent first callers cannot both fetch and hand out the
// same sequence. A fetch failure mutates nothing and issues no sequence.
func (st *sequenceTracker) NextSequence(ctx context.Context, address string) (uint64, uint64, error) {
	entry := st.entry(address)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.fetched {
		account, err := st.accountQuerier.Account(ctx, address)
		if err != nil {
			return 0, 0, err
		}
		entry.accountNumber = account.AccountNumber
		entry.next = account.Sequence
		entry.fetched = true
	}

	sequence := entry.next
	entry.next++

	return entry.accountNumber, sequence, nil
}

// Invalidate drops the cached sequence for the given address; the next
// NextSequence call re-fetches from the node. The account number survives
// invalidation since it is immutable once assigned.
func (st *sequenceTracker) Invalidate(address string) {
	entry := st.entry(address)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.fetched = false
}

// entry returns the sequence entry for the given address, creating it if
// necessary.
func (st *sequenceTracker) entry(address string) *sequenceEntry {
	st.entriesMu.Lock()
	defer st.entriesMu.Unlock()

	entry, ok := st.entries[address]
	if !ok {
		entry = &sequenceEntry{}
		st.entries[address] = entry
	}
	return entry
}
