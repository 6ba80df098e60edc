// Package config loads a YAML description of a store topology (which
// backend, SQLite path, layered ordering) and builds it into a set of
// corpus.Backend values, following the docpipe.Config
// tags-plus-defaults() idiom used throughout this module.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/corpusvault/snapshot/backend/filestore"
	"github.com/corpusvault/snapshot/backend/layered"
	"github.com/corpusvault/snapshot/backend/memory"
	"github.com/corpusvault/snapshot/backend/sqlstore"
	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/observations"
)

// BackendKind selects which backend implementation a named entry builds.
type BackendKind string

const (
	KindMemory    BackendKind = "memory"
	KindFilestore BackendKind = "filestore"
	KindSQLStore  BackendKind = "sqlstore"
	KindLayered   BackendKind = "layered"
)

// BackendSpec describes one named backend in a Topology. Only the fields
// relevant to Type are read; the rest are ignored.
type BackendSpec struct {
	Type BackendKind `yaml:"type"`

	// filestore
	Base string `yaml:"base,omitempty"`

	// sqlstore
	Path    string `yaml:"path,omitempty"`
	BlobDir string `yaml:"blob_dir,omitempty"`

	// layered
	Read         []string            `yaml:"read,omitempty"`
	Write        []string            `yaml:"write,omitempty"`
	ListStrategy layered.ListStrategy `yaml:"list_strategy,omitempty"`
}

// Topology is the top-level shape of a YAML store-topology file.
type Topology struct {
	Backends map[string]BackendSpec `yaml:"backends"`
	Default  string                 `yaml:"default"`

	Logger *slog.Logger `yaml:"-"`
}

func (t *Topology) defaults() {
	if t.Logger == nil {
		t.Logger = slog.Default()
	}
}

// Load reads and parses a topology file. It does not build any backends;
// call Build for that once the caller's observation TypeDefs are known.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corpus.NewError(corpus.KindStorageError, "config.load", err, "read topology file")
	}
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, corpus.NewError(corpus.KindInvalidConfig, "config.load", err, "parse topology yaml")
	}
	t.defaults()
	t.Logger.Debug("config: loaded topology", "path", path, "backends", len(t.Backends), "default", t.Default)
	return &t, nil
}

// Build constructs every backend named in the topology, in an order that
// resolves layered/read/write references. hook and obsTypes are applied to
// every leaf backend (memory/filestore/sqlstore); layered backends have no
// observation types of their own, they route to the leaves that do.
func (t *Topology) Build(hook corpus.EventFunc, obsTypes ...observations.TypeDef) (map[string]corpus.Backend, error) {
	t.defaults()
	built := make(map[string]corpus.Backend, len(t.Backends))

	var layeredNames []string
	for name, spec := range t.Backends {
		switch spec.Type {
		case KindLayered:
			layeredNames = append(layeredNames, name)
			continue
		case KindMemory:
			t.Logger.Debug("config: building backend", "name", name, "type", spec.Type)
			built[name] = memory.New(hook, obsTypes...)
		case KindFilestore:
			t.Logger.Debug("config: building backend", "name", name, "type", spec.Type, "base", spec.Base)
			b, err := filestore.New(spec.Base, hook, obsTypes...)
			if err != nil {
				t.Logger.Error("config: build filestore backend failed", "name", name, "error", err)
				return nil, corpus.NewError(corpus.KindInvalidConfig, "config.build", err, "build filestore backend %q", name)
			}
			built[name] = b
		case KindSQLStore:
			t.Logger.Debug("config: building backend", "name", name, "type", spec.Type, "path", spec.Path)
			b, err := sqlstore.Open(sqlstore.Config{Path: spec.Path, BlobDir: spec.BlobDir, Logger: t.Logger}, hook, obsTypes...)
			if err != nil {
				t.Logger.Error("config: build sqlstore backend failed", "name", name, "error", err)
				return nil, corpus.NewError(corpus.KindInvalidConfig, "config.build", err, "build sqlstore backend %q", name)
			}
			built[name] = b
		default:
			t.Logger.Error("config: unknown backend type", "name", name, "type", spec.Type)
			return nil, corpus.NewError(corpus.KindInvalidConfig, "config.build", nil, "unknown backend type %q for %q", spec.Type, name)
		}
	}

	for _, name := range topoSortLayered(t.Backends, layeredNames) {
		spec := t.Backends[name]
		t.Logger.Debug("config: building layered backend", "name", name, "read", spec.Read, "write", spec.Write, "strategy", spec.ListStrategy)
		read, err := resolveRefs(built, spec.Read)
		if err != nil {
			return nil, corpus.NewError(corpus.KindInvalidConfig, "config.build", err, "resolve read refs for %q", name)
		}
		write, err := resolveRefs(built, spec.Write)
		if err != nil {
			return nil, corpus.NewError(corpus.KindInvalidConfig, "config.build", err, "resolve write refs for %q", name)
		}
		built[name] = layered.New(layered.Config{
			Read: read, Write: write, ListStrategy: spec.ListStrategy, Logger: t.Logger,
		})
	}

	if t.Default != "" {
		if _, ok := built[t.Default]; !ok {
			return nil, corpus.NewError(corpus.KindInvalidConfig, "config.build", nil, "default backend %q not defined", t.Default)
		}
	}
	t.Logger.Info("config: topology built", "backends", len(built), "default", t.Default)
	return built, nil
}

func resolveRefs(built map[string]corpus.Backend, names []string) ([]corpus.Backend, error) {
	out := make([]corpus.Backend, 0, len(names))
	for _, n := range names {
		b, ok := built[n]
		if !ok {
			return nil, fmt.Errorf("undefined backend %q", n)
		}
		out = append(out, b)
	}
	return out, nil
}

// topoSortLayered orders layered entries so one layered backend may
// reference another layered backend's name in its read/write list, as long
// as the topology has no cycle.
func topoSortLayered(specs map[string]BackendSpec, names []string) []string {
	resolved := make(map[string]bool)
	var order []string
	var visit func(name string, stack map[string]bool)
	visit = func(name string, stack map[string]bool) {
		if resolved[name] || stack[name] {
			return
		}
		stack[name] = true
		spec := specs[name]
		for _, dep := range append(append([]string{}, spec.Read...), spec.Write...) {
			if specs[dep].Type == KindLayered {
				visit(dep, stack)
			}
		}
		resolved[name] = true
		order = append(order, name)
	}
	for _, name := range names {
		visit(name, make(map[string]bool))
	}
	return order
}

// Default returns the topology's default backend, or nil if none was
// declared or built.
func Default(built map[string]corpus.Backend, t *Topology) corpus.Backend {
	if t.Default == "" {
		return nil
	}
	return built[t.Default]
}
