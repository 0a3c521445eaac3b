package domain

import "time"

// SessionSummary describes a finished session.
type SessionSummary struct {
	// ID correlates log lines and events for one connection.
	ID string

	// Remote is the client address.
	Remote string

	// Algorithm is the negotiated wire token, empty if negotiation failed
	// before a name was accepted.
	Algorithm string

	// FilesDeclared is the file count sent by the client.
	FilesDeclared uint32

	// FilesProcessed counts digests successfully written back.
	FilesProcessed uint32

	// Bytes is the total payload size of processed files.
	Bytes int64

	// Duration is the time from accept to close.
	Duration time.Duration

	// Err is the error that ended the session, nil on success.
	Err error
}

// Complete reports whether every declared file was answered.
func (s SessionSummary) Complete() bool {
	return s.Err == nil && s.FilesProcessed == s.FilesDeclared
}
