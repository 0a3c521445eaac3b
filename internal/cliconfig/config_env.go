package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (HASHD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("HASHD_HOST"), &cfg.Host)
	s.setString("log-level", os.Getenv("HASHD_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("HASHD_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setIntFromString("port", os.Getenv("HASHD_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("chunk-size", os.Getenv("HASHD_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}

	if err := s.setDuration("read-timeout", os.Getenv("HASHD_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", os.Getenv("HASHD_WRITE_TIMEOUT"), &cfg.WriteTimeout); err != nil {
		return err
	}

	s.setBoolFromString("extended-algorithms", os.Getenv("HASHD_EXTENDED_ALGORITHMS"), &cfg.ExtendedAlgorithms)
	s.setBoolFromString("watch-config", os.Getenv("HASHD_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
