package ports

import "github.com/bft-labs/hashd/pkg/log"

// Logger is the structured logging port.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported so the application layer only imports ports.
var (
	String   = log.String
	Stringer = log.Stringer
	Int      = log.Int
	Int64    = log.Int64
	Uint32   = log.Uint32
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
