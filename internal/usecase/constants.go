package usecase

const (
	// DefaultPageSize is used when no limit is given.
	DefaultPageSize = 20

	// MaxPageSize caps list queries.
	MaxPageSize = 100

	// MaxSnapshotHistory caps how many superseded snapshots a history query
	// may return in one page.
	MaxSnapshotHistory = 50
)
