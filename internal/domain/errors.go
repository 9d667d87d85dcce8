package domain

import "errors"

var (
	// ErrDeviceNotFound is returned when a device slug does not exist in the catalog
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrStoreUnavailable is returned when no device store is configured or reachable
	ErrStoreUnavailable = errors.New("device store unavailable")

	// ErrGeneratorFailure is returned when a text generation provider request fails
	ErrGeneratorFailure = errors.New("text generation request failed")

	// ErrInvalidCategoryTable is returned when a comparison category table is malformed
	ErrInvalidCategoryTable = errors.New("invalid comparison category table")
)
