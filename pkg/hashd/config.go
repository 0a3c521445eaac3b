package hashd

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/bft-labs/hashd/internal/domain"
	"github.com/bft-labs/hashd/pkg/wire"
)

// DefaultPort is the listening port used when none is configured.
const DefaultPort = 2345

// Config holds server configuration.
type Config struct {
	// Host is the bind host. Empty means all interfaces.
	Host string

	// Port is the TCP port. Zero picks an ephemeral port.
	Port int

	// ReadTimeout bounds each socket read. Zero disables it.
	ReadTimeout time.Duration

	// WriteTimeout bounds each socket write. Zero disables it.
	WriteTimeout time.Duration

	// ChunkSize bounds the bytes requested by a single read.
	// Default: 4096
	ChunkSize int

	// ExtendedAlgorithms additionally accepts blake2b and blake3.
	ExtendedAlgorithms bool
}

// DefaultConfig returns a Config listening on DefaultPort with no timeouts.
func DefaultConfig() Config {
	return Config{
		Port:      DefaultPort,
		ChunkSize: wire.DefaultChunkSize,
	}
}

// SetDefaults fills zero values that have a non-zero default.
func (c *Config) SetDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = wire.DefaultChunkSize
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("%w: write timeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// Addr returns the host:port string to bind.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
