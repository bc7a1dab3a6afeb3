package sync

import "context"

// Source adapts one record kind (reports, people) to the engine. The engine
// owns the pass semantics; the source owns storage and transport for its kind.
type Source interface {
	Name() string

	// CountPending returns the number of records awaiting submission.
	CountPending(ctx context.Context) (int, error)

	// ListPending snapshots the pending set in insertion order. Records
	// captured after the snapshot belong to the next pass.
	ListPending(ctx context.Context) ([]Pending, error)

	// MarkSynced records the server-assigned id for a submitted record.
	MarkSynced(ctx context.Context, localKey int64, remoteID string) error

	// MarkRejected takes a permanently refused record out of the retry set.
	MarkRejected(ctx context.Context, localKey int64, reason string) error
}

// Pending is one record of a pass snapshot. Submit sends the domain payload
// to the server and returns the server-assigned id.
type Pending struct {
	LocalKey int64
	Submit   func(ctx context.Context) (string, error)
}
