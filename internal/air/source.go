package air

import (
	"context"
	"time"
)

// Source abstracts an air quality data backend (OpenAQ today). Implementations
// return already-parsed readings; all HTTP and JSON concerns stay behind this
// interface.
type Source interface {
	Name() string
	FetchArea(ctx context.Context, q AreaQuery) ([]Reading, error)
}

// Store is the contract the in-memory snapshot store (and any future
// persistent store) must satisfy.
type Store interface {
	SaveSnapshot(q AreaQuery, snapshot AreaSnapshot)
	GetLatest(q AreaQuery) (AreaSnapshot, error)
	GetRange(q AreaQuery, from, to time.Time) ([]AreaSnapshot, error)
}
