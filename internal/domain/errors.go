package domain

import "errors"

var (
	// ErrConfiguration is returned when the hierarchy configuration source is
	// unreadable or malformed. It is fatal to all matching until resolved.
	ErrConfiguration = errors.New("hierarchy configuration error")

	// ErrFilter is returned when a catalog stage query fails. It is scoped to
	// the single mention being matched; other mentions are unaffected.
	ErrFilter = errors.New("catalog query failed")

	// ErrInvalidMention is returned when mention parameters are invalid
	ErrInvalidMention = errors.New("invalid product mention")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
