package cliconfig

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/bft-labs/hashd/pkg/log"
)

// NewLogger builds the process logger from the configured level and format.
func NewLogger(w io.Writer, cfg Config) (zerolog.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	return log.NewZerologAdapter(w, cfg.LogFormat, level).Logger(), nil
}
