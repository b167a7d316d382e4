package storage

import (
	"errors"
	"testing"

	"github.com/lehigh-university-libraries/pdfscan/internal/models"
)

func seeded(t *testing.T, ids ...string) (*SessionStore, string) {
	t.Helper()
	store := New()
	session := store.Create(true, models.Enhancement{Brightness: 10, Contrast: 1.3, Sharpen: true})

	pages := make([]*models.ScannedPage, 0, len(ids))
	for _, id := range ids {
		pages = append(pages, &models.ScannedPage{ID: id, SourceName: id + ".jpg"})
	}
	if _, err := store.AppendPages(session.ID, pages); err != nil {
		t.Fatalf("AppendPages failed: %v", err)
	}
	return store, session.ID
}

func pageIDs(session *models.ScanSession) []string {
	ids := make([]string, 0, len(session.Pages))
	for _, p := range session.Pages {
		ids = append(ids, p.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAppendKeepsOrder(t *testing.T) {
	store, id := seeded(t, "a", "b")
	session, err := store.AppendPages(id, []*models.ScannedPage{{ID: "c"}, {ID: "d"}})
	if err != nil {
		t.Fatalf("AppendPages failed: %v", err)
	}
	if got := pageIDs(session); !equalIDs(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("pages = %v, want [a b c d]", got)
	}
}

func TestMovePage(t *testing.T) {
	tests := []struct {
		name  string
		index int
		dir   Direction
		want  []string
	}{
		{name: "move up", index: 1, dir: Up, want: []string{"b", "a", "c"}},
		{name: "move down", index: 1, dir: Down, want: []string{"a", "c", "b"}},
		{name: "first up is no-op", index: 0, dir: Up, want: []string{"a", "b", "c"}},
		{name: "last down is no-op", index: 2, dir: Down, want: []string{"a", "b", "c"}},
		{name: "out of range is no-op", index: 7, dir: Up, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, id := seeded(t, "a", "b", "c")
			session, err := store.MovePage(id, tt.index, tt.dir)
			if err != nil {
				t.Fatalf("MovePage failed: %v", err)
			}
			if got := pageIDs(session); !equalIDs(got, tt.want) {
				t.Errorf("pages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMovePageInvalidDirection(t *testing.T) {
	store, id := seeded(t, "a", "b")
	if _, err := store.MovePage(id, 0, Direction("sideways")); err == nil {
		t.Error("expected error for invalid direction")
	}
}

func TestRemovePage(t *testing.T) {
	store, id := seeded(t, "a", "b", "c")

	session, err := store.RemovePage(id, "b")
	if err != nil {
		t.Fatalf("RemovePage failed: %v", err)
	}
	if got := pageIDs(session); !equalIDs(got, []string{"a", "c"}) {
		t.Errorf("pages = %v, want [a c]", got)
	}

	if _, err := store.RemovePage(id, "missing"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestReorder(t *testing.T) {
	store, id := seeded(t, "a", "b", "c")

	session, err := store.Reorder(id, []string{"c", "a", "b"})
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if got := pageIDs(session); !equalIDs(got, []string{"c", "a", "b"}) {
		t.Errorf("pages = %v, want [c a b]", got)
	}

	bad := [][]string{
		{"a", "b"},
		{"a", "a", "b"},
		{"a", "b", "z"},
	}
	for _, order := range bad {
		if _, err := store.Reorder(id, order); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("Reorder(%v) error = %v, want ErrInvalidOrder", order, err)
		}
	}

	current, _ := store.Get(id)
	if got := pageIDs(current); !equalIDs(got, []string{"c", "a", "b"}) {
		t.Errorf("failed reorder changed pages to %v", got)
	}
}

func TestClearAndDelete(t *testing.T) {
	store, id := seeded(t, "a", "b")

	session, err := store.Clear(id)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(session.Pages) != 0 {
		t.Errorf("expected no pages after Clear, got %d", len(session.Pages))
	}

	store.Delete(id)
	if _, ok := store.Get(id); ok {
		t.Error("session still present after Delete")
	}
	if _, err := store.AppendPages(id, nil); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	store, id := seeded(t, "a", "b")

	session, _ := store.Get(id)
	session.Pages[0], session.Pages[1] = session.Pages[1], session.Pages[0]

	again, _ := store.Get(id)
	if got := pageIDs(again); !equalIDs(got, []string{"a", "b"}) {
		t.Errorf("mutating a snapshot changed stored order to %v", got)
	}
}

func TestGetAllSorted(t *testing.T) {
	store := New()
	first := store.Create(false, models.Enhancement{})
	second := store.Create(false, models.Enhancement{})

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("got %d sessions, want 2", len(all))
	}
	if all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Error("sessions not sorted by creation time")
	}
	ids := map[string]bool{all[0].ID: true, all[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Error("GetAll is missing a session")
	}
}

func TestPageLookup(t *testing.T) {
	store, id := seeded(t, "a", "b")

	p, err := store.Page(id, "b")
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if p.SourceName != "b.jpg" {
		t.Errorf("SourceName = %q, want b.jpg", p.SourceName)
	}
	if _, err := store.Page("nope", "b"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
