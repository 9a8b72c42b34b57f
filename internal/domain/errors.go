package domain

import "errors"

var (
	// ErrUpstreamUnavailable: the fulfillment platform is unreachable or
	// answered non-2xx. Callers degrade to whatever was accumulated.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrAuth: the carrier OAuth exchange failed or credentials are absent.
	// Individual lookups degrade to a sentinel, never the whole request.
	ErrAuth = errors.New("carrier auth failed")

	// ErrTrackingFetch: one carrier lookup failed (timeout, 4xx/5xx, bad body).
	ErrTrackingFetch = errors.New("tracking fetch failed")

	// ErrPersistence: the store rejected a read or write. Logged and ignored;
	// reads keep serving from the in-memory cache.
	ErrPersistence = errors.New("persistence error")

	ErrNotFound = errors.New("not found")
)
