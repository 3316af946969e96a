package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"santaverse/internal/config"
	"santaverse/internal/storage"
)

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStore(ctx, config.Config{StoreDriver: config.DriverMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := mem.(*storage.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", mem)
	}

	db, err := OpenStore(ctx, config.Config{
		StoreDriver: config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "s.db"),
	})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer db.Close()
	if _, ok := db.(*storage.DB); !ok {
		t.Fatalf("expected sqlite DB, got %T", db)
	}

	if _, err := OpenStore(ctx, config.Config{StoreDriver: "redis"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestHandlerServesPing(t *testing.T) {
	a, err := New(context.Background(), config.Config{StoreDriver: config.DriverMemory}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
