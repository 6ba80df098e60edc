package sqlstore_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/corpusvault/snapshot/backend/sqlstore"
	"github.com/corpusvault/snapshot/corpus"
	"github.com/corpusvault/snapshot/dbopen"
	"github.com/corpusvault/snapshot/observations"
)

func newBackend(t *testing.T) *sqlstore.Backend {
	t.Helper()
	db := dbopen.OpenMemory(t)
	b, err := sqlstore.New(db, t.TempDir(), nil, observations.NewTypeDef("note", rawSchema{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

type rawSchema struct{}

func (rawSchema) Parse(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func TestMetadataStore_PutGetRoundTrip(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	meta := corpus.SnapshotMeta{
		StoreID: "s1", Version: "v1", ContentHash: "abc", ContentType: "application/json",
		DataKey: "s1/abc", CreatedAt: time.Now(), Tags: []string{"x", "y"},
	}
	if err := b.Metadata().Put(ctx, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := b.Metadata().Get(ctx, "s1", "v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContentHash != "abc" || len(got.Tags) != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestMetadataStore_PutUpsert(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	if err := b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s1", Version: "v1", ContentHash: "a", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Put 1: %v", err)
	}
	if err := b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s1", Version: "v1", ContentHash: "b", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Put 2: %v", err)
	}
	got, err := b.Metadata().Get(ctx, "s1", "v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContentHash != "b" {
		t.Fatalf("expected upsert to win, got %+v", got)
	}
}

func TestMetadataStore_GetNotFound(t *testing.T) {
	b := newBackend(t)
	_, err := b.Metadata().Get(context.Background(), "s1", "missing")
	if corpus.KindOf(err) != corpus.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestMetadataStore_ListTagsFilter(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s1", Version: "v1", Tags: []string{"a", "b"}, CreatedAt: time.Now()})
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s1", Version: "v2", Tags: []string{"a"}, CreatedAt: time.Now()})

	rows, err := b.Metadata().List(ctx, "s1", corpus.ListOptions{Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].Version != "v1" {
		t.Fatalf("expected only v1, got %+v", rows)
	}
}

func TestMetadataStore_FindByHash(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s1", Version: "v1", ContentHash: "hash1", CreatedAt: time.Now()})

	found, err := b.Metadata().FindByHash(ctx, "s1", "hash1")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if found == nil || found.Version != "v1" {
		t.Fatalf("expected v1, got %+v", found)
	}
	notFound, err := b.Metadata().FindByHash(ctx, "s1", "nope")
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if notFound != nil {
		t.Fatalf("expected nil, got %+v", notFound)
	}
}

func TestMetadataStore_GetChildren(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "child", Version: "c1", CreatedAt: time.Now(),
		Parents: []corpus.ParentRef{{StoreID: "parent", Version: "p1"}}})
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "child", Version: "c2", CreatedAt: time.Now(),
		Parents: []corpus.ParentRef{{StoreID: "parent", Version: "p2"}}})

	children, err := b.Metadata().GetChildren(ctx, "parent", "p1")
	if err != nil {
		t.Fatalf("GetChildren: %v", err)
	}
	if len(children) != 1 || children[0].Version != "c1" {
		t.Fatalf("expected only c1, got %+v", children)
	}
}

func TestDataStore_PutGetExistsDelete(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	if err := b.Data().Put(ctx, "s1/hash", strings.NewReader("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := b.Data().Exists(ctx, "s1/hash")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	h, err := b.Data().Get(ctx, "s1/hash")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, err := h.Bytes(ctx)
	if err != nil || string(got) != "hello" {
		t.Fatalf("Bytes: %q err=%v", got, err)
	}
	if err := b.Data().Delete(ctx, "s1/hash"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, _ = b.Data().Exists(ctx, "s1/hash")
	if ok {
		t.Fatal("expected gone after delete")
	}
}

func TestObservations_QueryPushesFilterIntoSQL(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	_, err := b.Observations().Put(ctx, "note", corpus.PutObservationInput{
		Source:  corpus.SnapshotPointer{StoreID: "s1", Version: "v1"},
		Content: map[string]any{"text": "a"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	_, err = b.Observations().Put(ctx, "note", corpus.PutObservationInput{
		Source:  corpus.SnapshotPointer{StoreID: "s2", Version: "v1"},
		Content: map[string]any{"text": "b"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	rows, err := b.Observations().Query(ctx, corpus.ObservationQueryOptions{
		HasSourceStore: true, SourceStore: "s1", IncludeStale: true,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for s1, got %d", len(rows))
	}
}

func TestObservations_DeleteBySource(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := b.Observations().Put(ctx, "note", corpus.PutObservationInput{
			Source:  corpus.SnapshotPointer{StoreID: "s1", Version: "v1"},
			Content: map[string]any{"text": "x"},
		})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	n, err := b.Observations().DeleteBySource(ctx, corpus.SnapshotPointer{StoreID: "s1", Version: "v1"})
	if err != nil {
		t.Fatalf("DeleteBySource: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
}
