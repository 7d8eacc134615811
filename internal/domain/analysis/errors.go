package analysis

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrMissingCredential indicates no API credential is configured; the client
// must not attempt network I/O in that state.
var ErrMissingCredential = errors.New("ai credential not configured")
