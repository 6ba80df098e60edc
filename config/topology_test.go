package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corpusvault/snapshot/config"
	"github.com/corpusvault/snapshot/corpus"
)

func writeTopology(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.yaml")
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write topology: %v", err)
	}
	return path
}

func TestLoadAndBuild_MemoryAndFilestoreLayered(t *testing.T) {
	base := t.TempDir()
	path := writeTopology(t, `
backends:
  cache:
    type: memory
  disk:
    type: filestore
    base: `+base+`
  hot:
    type: layered
    read: [cache, disk]
    write: [cache, disk]
    list_strategy: merge
default: hot
`)

	topo, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	built, err := topo.Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	hot := config.Default(built, topo)
	if hot == nil {
		t.Fatal("expected a default backend")
	}

	ctx := context.Background()
	if err := hot.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s", Version: "v1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Put via layered: %v", err)
	}
	if _, err := built["disk"].Metadata().Get(ctx, "s", "v1"); err != nil {
		t.Fatalf("expected write fanout to reach disk backend: %v", err)
	}
	if _, err := built["cache"].Metadata().Get(ctx, "s", "v1"); err != nil {
		t.Fatalf("expected write fanout to reach cache backend: %v", err)
	}
}

func TestBuild_UnknownBackendType(t *testing.T) {
	path := writeTopology(t, `
backends:
  bogus:
    type: nonsense
`)
	topo, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = topo.Build(nil)
	if corpus.KindOf(err) != corpus.KindInvalidConfig {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestBuild_UndefinedDefaultBackend(t *testing.T) {
	path := writeTopology(t, `
backends:
  cache:
    type: memory
default: missing
`)
	topo, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = topo.Build(nil)
	if corpus.KindOf(err) != corpus.KindInvalidConfig {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
