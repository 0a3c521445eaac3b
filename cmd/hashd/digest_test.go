package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bft-labs/hashd/pkg/hashd"
)

func startTestServer(t *testing.T) string {
	t.Helper()
	cfg := hashd.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	srv, err := hashd.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })
	return srv.Addr().String()
}

func TestDigestCommand(t *testing.T) {
	addr := startTestServer(t)
	path := filepath.Join(t.TempDir(), "hello.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newDigestCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--addr", addr, "--algo", "md5", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := "5d41402abc4b2a76b9719d911017c592  " + path + "\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestDigestCommandRejectedAlgorithm(t *testing.T) {
	addr := startTestServer(t)
	path := filepath.Join(t.TempDir(), "a")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newDigestCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-a", addr, "--algo", "rot13", path})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("Execute() = %v, want rejected algorithm error", err)
	}
}

func TestRootRejectsBadPort(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	boot := zerolog.Nop()
	cmd := newRootCommand(&boot)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--port", "70000"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() expected error for port 70000")
	}
}

func TestRootRejectsNonIntegerPort(t *testing.T) {
	boot := zerolog.Nop()
	cmd := newRootCommand(&boot)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--port", "http"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() expected error for non-integer port")
	}
}
