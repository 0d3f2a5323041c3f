package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	raw := `
nodeInfo:
  fqdn: coloby.example.com
  version: "1.0"
  jwtSecret: hunter2
server:
  listen: ":9000"
  postgresDsn: "host=localhost user=postgres"
  redisAddr: "localhost:6379"
  memcachedAddr: "localhost:11211"
  blobBucket: coloby
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if conf.NodeInfo.FQDN != "coloby.example.com" {
		t.Fatalf("unexpected fqdn %q", conf.NodeInfo.FQDN)
	}
	if conf.Server.Listen != ":9000" {
		t.Fatalf("unexpected listen %q", conf.Server.Listen)
	}
	if conf.Server.BlobBucket != "coloby" {
		t.Fatalf("unexpected bucket %q", conf.Server.BlobBucket)
	}
}

func TestLoadDefaultListen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("nodeInfo:\n  fqdn: x\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	conf, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if conf.Server.Listen != ":8000" {
		t.Fatalf("expected default listen, got %q", conf.Server.Listen)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
