package db

import (
	"os"
	"testing"
	"time"

	"github.com/lqviet/vichat/internal/core/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := New(tmpfile.Name())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestNew_WALMode(t *testing.T) {
	database := testDB(t)

	var journalMode string
	if err := database.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected WAL mode, got %s", journalMode)
	}
}

func TestKVRoundTrip(t *testing.T) {
	database := testDB(t)

	if _, ok, err := database.Get(KeyAuthToken); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := database.Set(KeyAuthToken, "tok123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, ok, err := database.Get(KeyAuthToken)
	if err != nil || !ok || value != "tok123" {
		t.Fatalf("Get() = %q, %v, %v", value, ok, err)
	}

	// Replaced wholesale, never merged
	if err := database.Set(KeyAuthToken, "tok456"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, _, _ = database.Get(KeyAuthToken)
	if value != "tok456" {
		t.Errorf("expected replacement, got %q", value)
	}
}

func TestDeleteClearsBothKeys(t *testing.T) {
	database := testDB(t)

	_ = database.Set(KeyAuthToken, "tok")
	_ = database.Set(KeyUserInfo, `{"id":"u-1"}`)

	if err := database.Delete(KeyAuthToken, KeyUserInfo); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := database.Get(KeyAuthToken); ok {
		t.Error("auth token should be gone")
	}
	if _, ok, _ := database.Get(KeyUserInfo); ok {
		t.Error("user info should be gone")
	}

	// Idempotent
	if err := database.Delete(KeyAuthToken, KeyUserInfo); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestSessionCacheRoundTrip(t *testing.T) {
	database := testDB(t)

	sessions := []models.Session{
		{ID: "s2", Title: "Phiên 2", StartedAt: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)},
		{ID: "s1", Title: "Phiên 1", StartedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	if err := database.SaveSessionCache(sessions); err != nil {
		t.Fatalf("SaveSessionCache() error = %v", err)
	}

	loaded, err := database.LoadSessionCache()
	if err != nil {
		t.Fatalf("LoadSessionCache() error = %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "s2" || loaded[1].ID != "s1" {
		t.Fatalf("order not preserved: %+v", loaded)
	}

	// A new snapshot replaces the old one atomically
	if err := database.SaveSessionCache([]models.Session{{ID: "s3"}}); err != nil {
		t.Fatalf("SaveSessionCache() error = %v", err)
	}
	loaded, _ = database.LoadSessionCache()
	if len(loaded) != 1 || loaded[0].ID != "s3" {
		t.Fatalf("snapshot not replaced: %+v", loaded)
	}
}
