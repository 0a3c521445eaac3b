package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Host:               "127.0.0.1",
				Port:               9000,
				ReadTimeout:        "5s",
				WriteTimeout:       "1m",
				ChunkSize:          8192,
				ExtendedAlgorithms: &trueVal,
				LogLevel:           "debug",
				LogFormat:          "json",
				WatchConfig:        &trueVal,
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				Host:               "127.0.0.1",
				Port:               9000,
				ReadTimeout:        5 * time.Second,
				WriteTimeout:       time.Minute,
				ChunkSize:          8192,
				ExtendedAlgorithms: true,
				LogLevel:           "debug",
				LogFormat:          "json",
				WatchConfig:        true,
			},
		},
		{
			name:       "respects changed flags",
			fileConfig: FileConfig{Port: 9000, Host: "10.0.0.1"},
			changed:    map[string]bool{"port": true},
			initial:    Config{Port: 7000},
			expected:   Config{Port: 7000, Host: "10.0.0.1"},
		},
		{
			name:       "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "explicit false overrides true",
			fileConfig: FileConfig{ExtendedAlgorithms: &falseVal},
			changed:    map[string]bool{},
			initial:    Config{ExtendedAlgorithms: true},
			expected:   Config{},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{ReadTimeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
host = "0.0.0.0"
port = 2346
read_timeout = "30s"
chunk_size = 1024
extended_algorithms = true
log_format = "json"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() unexpected error: %v", err)
	}

	if fc.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", fc.Host)
	}
	if fc.Port != 2346 {
		t.Errorf("Port = %d, want 2346", fc.Port)
	}
	if fc.ReadTimeout != "30s" {
		t.Errorf("ReadTimeout = %q, want 30s", fc.ReadTimeout)
	}
	if fc.ChunkSize != 1024 {
		t.Errorf("ChunkSize = %d, want 1024", fc.ChunkSize)
	}
	if fc.ExtendedAlgorithms == nil || !*fc.ExtendedAlgorithms {
		t.Error("ExtendedAlgorithms should be true")
	}
	if fc.WatchConfig != nil {
		t.Error("WatchConfig should be unset")
	}
	if fc.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", fc.LogFormat)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	if err := os.WriteFile(configPath, []byte("port = [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Fatal("LoadFileConfig() expected error for invalid TOML")
	}
	if !strings.Contains(err.Error(), configPath) {
		t.Errorf("error %q should name the file", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("home directory not available")
	}
	if !strings.HasSuffix(path, filepath.Join(".hashd", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q, want suffix .hashd/config.toml", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")
	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "missing.txt")) {
		t.Error("FileExists() = true for missing file")
	}
}
