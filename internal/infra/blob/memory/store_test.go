package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"plantcore/internal/infra/blob/core"
)

func TestStoreContract(t *testing.T) {
	store := New()
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/1/a.json", strings.NewReader("payload"), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"kind": "schedule"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ContentType != "application/json" {
		t.Errorf("info %+v", info)
	}

	if _, err := store.Put(ctx, "exports/1/a.json", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Error("overwrite accepted")
	}

	got, rc, err := store.Get(ctx, "exports/1/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" {
		t.Errorf("body %q", body)
	}
	got.Metadata["kind"] = "tampered"
	head, err := store.Head(ctx, "exports/1/a.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Metadata["kind"] != "schedule" {
		t.Error("metadata mutation leaked into the store")
	}

	if _, err := store.Put(ctx, "other/b.json", strings.NewReader("x"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "exports/1/a.json" {
		t.Fatalf("list %+v", infos)
	}

	if _, err := store.PresignURL(ctx, "exports/1/a.json", core.SignedURLOptions{}); err != core.ErrUnsupported {
		t.Errorf("presign err %v", err)
	}

	existed, err := store.Delete(ctx, "exports/1/a.json")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	if _, _, err := store.Get(ctx, "exports/1/a.json"); err == nil {
		t.Error("get succeeded after delete")
	}
	if store.Driver() != core.DriverMemory {
		t.Errorf("driver %s", store.Driver())
	}
}
