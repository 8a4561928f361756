package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	"plantcore/internal/infra/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/abc/care_history.json", strings.NewReader(`{"ok":true}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"kind": "care_history"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"ok":true}`)) {
		t.Errorf("size %d", info.Size)
	}
	if info.ETag == "" {
		t.Error("missing etag")
	}

	got, rc, err := store.Get(ctx, "exports/abc/care_history.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body %q", body)
	}
	if got.ContentType != "application/json" || got.Metadata["kind"] != "care_history" {
		t.Errorf("sidecar lost: %+v", got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "a/b", strings.NewReader("one"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a/b", strings.NewReader("two"), core.PutOptions{}); err == nil {
		t.Fatal("overwrite accepted")
	}
}

func TestKeyValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "/abs/path", "a/../escape"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Errorf("key %q accepted", key)
		}
	}
}

func TestListByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"exports/1/a.json", "exports/1/a.csv", "exports/2/b.json"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "exports/1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("listed %d, want 2", len(infos))
	}
	for i := 1; i < len(infos); i++ {
		if infos[i].Key < infos[i-1].Key {
			t.Fatal("listing unsorted")
		}
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "a/b", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := store.Delete(ctx, "a/b")
	if err != nil || !existed {
		t.Fatalf("delete existing: %v %v", existed, err)
	}
	existed, err = store.Delete(ctx, "a/b")
	if err != nil || existed {
		t.Fatalf("delete missing: %v %v", existed, err)
	}
	if _, err := store.Head(ctx, "a/b"); err == nil {
		t.Error("head succeeded after delete")
	}
}

func TestPresignURLOnlyGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	url, err := store.PresignURL(ctx, "a/b", core.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(url, "http://local.blob/") {
		t.Errorf("url %q", url)
	}
	if _, err := store.PresignURL(ctx, "a/b", core.SignedURLOptions{Method: "PUT"}); err != core.ErrUnsupported {
		t.Errorf("expected ErrUnsupported for PUT, got %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Errorf("driver %s", store.Driver())
	}
}
