package model

import "context"

// SnapshotFetcher retrieves one activity snapshot from the remote source.
// Implementations must not retry internally; callers own retry timing.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}
