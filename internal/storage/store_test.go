package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PrefsRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	empty, err := store.LoadPrefs()
	if err != nil {
		t.Fatalf("LoadPrefs on empty store: %v", err)
	}
	if empty.EmailFilter != "" || empty.CalendarID != "" {
		t.Errorf("expected zero prefs, got %+v", empty)
	}

	if err := store.SavePrefs(Prefs{EmailFilter: "all", CalendarID: "work", ActivePane: "calendar"}); err != nil {
		t.Fatalf("SavePrefs: %v", err)
	}

	got, err := store.LoadPrefs()
	if err != nil {
		t.Fatal(err)
	}
	if got.EmailFilter != "all" || got.CalendarID != "work" || got.ActivePane != "calendar" {
		t.Errorf("unexpected prefs %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set on save")
	}
}

func TestStore_PrefsPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	store, err := NewStore(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SavePrefs(Prefs{EmailFilter: "unread"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewStore(path, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	got, err := store.LoadPrefs()
	if err != nil {
		t.Fatal(err)
	}
	if got.EmailFilter != "unread" {
		t.Errorf("EmailFilter = %q after reopen", got.EmailFilter)
	}
}

func TestStore_Calendars(t *testing.T) {
	store := setupTestStore(t)

	if err := store.TouchCalendar("primary", "Personal"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := store.TouchCalendar("work", ""); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	// Touching again without a label keeps the old one and bumps LastUsed.
	if err := store.TouchCalendar("primary", ""); err != nil {
		t.Fatal(err)
	}

	cals, err := store.Calendars()
	if err != nil {
		t.Fatal(err)
	}
	if len(cals) != 2 {
		t.Fatalf("expected 2 calendars, got %d", len(cals))
	}
	if cals[0].ID != "primary" || cals[0].Label != "Personal" {
		t.Errorf("most recent calendar should be primary/Personal, got %+v", cals[0])
	}

	if err := store.TouchCalendar("  ", "x"); err == nil {
		t.Error("expected error for empty id")
	}

	if err := store.ForgetCalendar("work"); err != nil {
		t.Fatal(err)
	}
	_, err = store.GetCalendar("work")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCalendar after forget: got %v, want ErrNotFound", err)
	}
}

func TestStore_Exports(t *testing.T) {
	store := setupTestStore(t)

	for i, path := range []string{"a.mbox", "b.mbox", "c.mbox"} {
		if err := store.RecordExport(ExportRecord{Path: path, Messages: i + 1}); err != nil {
			t.Fatal(err)
		}
	}

	recs, err := store.Exports(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Path != "c.mbox" || recs[1].Path != "b.mbox" {
		t.Errorf("exports should be newest first, got %s, %s", recs[0].Path, recs[1].Path)
	}
	if recs[0].FinishedAt.IsZero() {
		t.Error("FinishedAt should default to now")
	}

	all, _ := store.Exports(0)
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}
}
