package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

// Rate limiter windows. Quotas themselves are configuration.
const (
	BurstWindow         = 1 * time.Second
	SustainedWindow     = 120 * time.Second
	RateLimitWaitFloor  = 100 * time.Millisecond
	RateLimitWaitCeil   = 10 * time.Second
	BurstKeyExpiry      = 2 * time.Second
	SustainedKeyExpiry  = 180 * time.Second
)

// Safety net: locks and progress auto-expire if a worker dies mid-run.
const (
	IngestLockTTL     = 2 * time.Hour
	IngestProgressTTL = 2 * time.Hour
)

const (
	// Pagination page size for match-id listing.
	MatchIDPageSize = 100

	// Progress is written for every record in the first few, then
	// every fifth, so the UI moves immediately after a run starts.
	ProgressEveryRecordUpTo = 10
	ProgressInterval        = 5

	// Failure reasons surfaced to the polling UI are truncated.
	FailureReasonMaxLen = 200
)
