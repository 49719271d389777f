package feed

import (
	"context"
	"time"
)

// Fetcher retrieves a single page. Implementations return an error for any
// network failure, timeout, or non-200 status; callers treat that as "no
// content" and never propagate it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// SourceScraper produces the full article list for one source.
type SourceScraper interface {
	ScrapeSource(ctx context.Context, src Source) []Article
}

// SelectionProvider returns the active source keys at the start of a cycle.
// It must never return an empty set and must drop unknown keys.
type SelectionProvider interface {
	Selection() []string
}

// SnapshotStore holds the two named snapshot slots. All writes must be atomic
// so that a concurrent reader never observes a half-written snapshot.
type SnapshotStore interface {
	WriteLive(snap Snapshot) error
	WriteStaged(snap Snapshot) error
	// Promote atomically replaces the live slot with the staged one.
	Promote() error
	// ReadLive returns the last published snapshot, or an empty snapshot if
	// none has been published yet.
	ReadLive() (Snapshot, error)
	// LiveModTime reports when the live slot was last written; ok is false if
	// no live snapshot exists.
	LiveModTime() (mtime time.Time, ok bool)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
