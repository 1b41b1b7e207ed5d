package domain

import "errors"

// ErrNotFound is returned when a user has never initialized preferences.
// Callers substitute DefaultPreferences; it never reaches the client.
var ErrNotFound = errors.New("preferences not found")

// ErrUpstreamUnavailable is returned when the backing store cannot be
// reached or times out.
var ErrUpstreamUnavailable = errors.New("backing store unavailable")

// ErrWriteFailed is returned when an interaction or preference write did not
// persist. Losing a single event is acceptable; it is never retried.
var ErrWriteFailed = errors.New("write failed")
