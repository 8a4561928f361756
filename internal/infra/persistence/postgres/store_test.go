package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"plantcore/pkg/domain"
)

func TestNewStoreSurfacesOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			t.Errorf("driver %q, want pgx", driverName)
		}
		return nil, errors.New("dial failed")
	})
	defer restore()

	_, err := NewStore("postgres://example/db", nil)
	if err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestOverrideSQLOpenRestores(t *testing.T) {
	calls := 0
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		calls++
		return nil, errors.New("stub")
	})
	if _, err := NewStore("", nil); err == nil {
		t.Fatal("stub open should fail")
	}
	if calls != 1 {
		t.Fatalf("stub called %d times", calls)
	}
	restore()

	// After restore the real sql.Open runs again; an unreachable host fails at
	// ping, not inside the stub.
	if _, err := NewStore("postgres://127.0.0.1:1/void?sslmode=disable&connect_timeout=1", nil); err == nil {
		t.Fatal("expected connection failure against closed port")
	}
	if calls != 1 {
		t.Fatalf("stub still wired after restore: %d calls", calls)
	}
}

// TestPostgresRoundTrip needs a live database; set PLANTCORE_POSTGRES_TEST_DSN
// to run it.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("PLANTCORE_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("PLANTCORE_POSTGRES_TEST_DSN not set")
	}

	store, err := NewStore(dsn, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	id := "plant-pg-roundtrip"
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, ok := tx.FindPlant(id); ok {
			return nil
		}
		_, txErr := tx.CreatePlant(domain.Plant{
			Base:        domain.Base{ID: id},
			VarietyName: "Basil",
			Active:      true,
			PlantedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		return txErr
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(dsn, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if _, ok := reopened.GetPlant(id); !ok {
		t.Fatal("plant lost across reconnect")
	}
}
