package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/corpusvault/snapshot/corpus"
)

func TestMetadataStore_PutGetRoundTrip(t *testing.T) {
	b := New(nil)
	ctx := context.Background()
	meta := corpus.SnapshotMeta{StoreID: "s1", Version: "v1", ContentHash: "abc", DataKey: "s1/abc", CreatedAt: time.Now()}

	if err := b.Metadata().Put(ctx, meta); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := b.Metadata().Get(ctx, "s1", "v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ContentHash != "abc" {
		t.Fatalf("got %+v", got)
	}
}

func TestMetadataStore_GetNotFound(t *testing.T) {
	b := New(nil)
	_, err := b.Metadata().Get(context.Background(), "s1", "missing")
	if corpus.KindOf(err) != corpus.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestMetadataStore_ListOrderingAndLimit(t *testing.T) {
	b := New(nil)
	ctx := context.Background()
	base := time.Now()
	for i, v := range []string{"v1", "v2", "v3"} {
		_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{
			StoreID: "s1", Version: v, CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	rows, err := b.Metadata().List(ctx, "s1", corpus.ListOptions{Limit: 2, HasLimit: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Version != "v3" || rows[1].Version != "v2" {
		t.Fatalf("expected descending created_at order, got %+v", rows)
	}
}

func TestMetadataStore_ListTagsFilter(t *testing.T) {
	b := New(nil)
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
	b := New(nil)
	ctx := context.Background()
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "s1", Version: "v1", ContentHash: "hash1", DataKey: "s1/hash1"})

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
	b := New(nil)
	ctx := context.Background()
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "child", Version: "c1", Parents: []corpus.ParentRef{{StoreID: "parent", Version: "p1"}}})
	_ = b.Metadata().Put(ctx, corpus.SnapshotMeta{StoreID: "child", Version: "c2", Parents: []corpus.ParentRef{{StoreID: "parent", Version: "p2"}}})

	children, err := b.Metadata().GetChildren(ctx, "parent", "p1")
	if err != nil {
		t.Fatalf("GetChildren: %v", err)
	}
	if len(children) != 1 || children[0].Version != "c1" {
		t.Fatalf("expected only c1, got %+v", children)
	}
}

func TestDataStore_PutGetExistsDelete(t *testing.T) {
	b := New(nil)
	ctx := context.Background()
	if err := b.Data().Put(ctx, "key1", strings.NewReader("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := b.Data().Exists(ctx, "key1")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	h, err := b.Data().Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, err := h.Bytes(ctx)
	if err != nil || string(got) != "hello" {
		t.Fatalf("Bytes: %q err=%v", got, err)
	}
	if err := b.Data().Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, _ = b.Data().Exists(ctx, "key1")
	if ok {
		t.Fatal("expected key1 gone after delete")
	}
}

func TestDataStore_GetNotFound(t *testing.T) {
	b := New(nil)
	_, err := b.Data().Get(context.Background(), "missing")
	if corpus.KindOf(err) != corpus.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
