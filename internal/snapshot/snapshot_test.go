package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/erazemk/najdeno/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.sqlite3"))
	if err != nil {
		t.Fatalf("opening snapshot store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmptySnapshot(t *testing.T) {
	s := newTestStore(t)

	items, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty collection, got %d items", len(items))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []model.Item{
		{ID: "1", ItemName: "Wallet", Timestamp: 100, Images: []string{"https://m.example.com/a.jpg"}},
		{ItemName: "Phone", Timestamp: 500}, // pending
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if out[0].ItemName != "Wallet" || out[1].ItemName != "Phone" {
		t.Errorf("unexpected items: %+v", out)
	}
}

func TestLastSaveWins(t *testing.T) {
	s := newTestStore(t)

	s.Save([]model.Item{{ID: "1", ItemName: "first"}})
	s.Save([]model.Item{{ID: "2", ItemName: "second"}})

	out, _ := s.Load()
	if len(out) != 1 || out[0].ID != "2" {
		t.Errorf("expected only the last saved collection, got %+v", out)
	}
}

func TestSavedAt(t *testing.T) {
	s := newTestStore(t)

	if _, ok, _ := s.SavedAt(); ok {
		t.Error("expected no saved-at before first save")
	}

	s.Save(nil)

	if _, ok, err := s.SavedAt(); err != nil || !ok {
		t.Errorf("expected saved-at after save, ok=%v err=%v", ok, err)
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite3")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.Save([]model.Item{{ID: "1", ItemName: "Wallet"}})
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s2.Close()

	out, err := s2.Load()
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if len(out) != 1 || out[0].ItemName != "Wallet" {
		t.Errorf("expected persisted collection, got %+v", out)
	}
}
