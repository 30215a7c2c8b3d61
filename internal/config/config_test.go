package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewFromViper(NewEmptyViper())

	art, err := cfg.GetArtifact()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Backend != "filesystem" || art.CacheTTL != 0 {
		t.Fatalf("unexpected artifact defaults: %+v", art)
	}

	srv, err := cfg.GetServer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.ReadTimeout != 30*time.Second {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}

	if got := cfg.GetStatus().Approved; got != "Loan is Approved" {
		t.Fatalf("unexpected approved status %q", got)
	}
	if cfg.GetTraining().Threshold != 0.5 {
		t.Fatalf("unexpected threshold %v", cfg.GetTraining().Threshold)
	}
}

func TestNewWithFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := []byte(`
artifact:
  backend: memory
  cache_ttl: 5m
inference:
  fields:
    prevailing_wage: LoanAmount
`)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewWithFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	art, err := cfg.GetArtifact()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Backend != "memory" || art.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected artifact config: %+v", art)
	}
	if got := cfg.GetFieldMapping()["prevailing_wage"]; got != "LoanAmount" {
		t.Fatalf("unexpected field mapping %q", got)
	}
}

func TestNewWithMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := NewWithFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
}

func TestInvalidDuration(t *testing.T) {
	t.Parallel()

	v := NewEmptyViper()
	v.Set("artifact.cache_ttl", "soon")
	if _, err := NewFromViper(v).GetArtifact(); err == nil {
		t.Fatalf("expected error for invalid ttl")
	}
}
