package blob

import (
	"context"
	"testing"

	"plantcore/internal/infra/blob/core"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	t.Setenv("PLANTCORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != core.DriverMemory {
		t.Errorf("driver %s, want memory", store.Driver())
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv("PLANTCORE_BLOB_DRIVER", "")
	t.Setenv("PLANTCORE_BLOB_FS_ROOT", t.TempDir())
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Errorf("driver %s, want fs", store.Driver())
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Setenv("PLANTCORE_BLOB_DRIVER", "tape")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("unknown driver accepted")
	}
}
