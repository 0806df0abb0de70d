package models

import "errors"

// Error taxonomy. Callers wrap these with fmt.Errorf("...: %w") and classify
// with errors.Is.
var (
	// ErrTransport covers network failures, timeouts and non-2xx responses.
	ErrTransport = errors.New("transport error")
	// ErrParse means the markup defeated an extraction adapter.
	ErrParse = errors.New("parse error")
	// ErrConfig is an unknown source id, an empty locality or a bad registry entry.
	ErrConfig = errors.New("config error")
	// ErrSink is an output write failure.
	ErrSink = errors.New("sink error")
)
