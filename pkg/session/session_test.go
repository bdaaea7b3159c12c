package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/netview/pkg/errors"
	"github.com/matzehuels/netview/pkg/view/camera"
)

func TestNew(t *testing.T) {
	s := New("", "pathways.json", time.Hour)
	if s.ID == "" {
		t.Fatal("expected generated ID")
	}
	if s.HasCamera() {
		t.Errorf("camera = %+v, want unset", s.Camera)
	}
	s.Camera = camera.Transform{X: 1, Ratio: 0.5}
	if !s.HasCamera() {
		t.Error("saved camera not reported")
	}
	if s.IsExpired() {
		t.Error("fresh session should not be expired")
	}
	if ttl := s.TTL(); ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v", ttl)
	}

	forever := New("keep", "n", 0)
	if !forever.ExpiresAt.IsZero() || forever.IsExpired() || forever.TTL() != 0 {
		t.Errorf("zero ttl session = %+v", forever)
	}

	if GenerateID() == GenerateID() {
		t.Error("generated IDs should differ")
	}
}

func TestStores(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stores := map[string]Store{
		"File":   fs,
		"Memory": NewMemoryStore(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			defer store.Close()

			got, err := store.Get(ctx, "demo")
			if err != nil || got != nil {
				t.Fatalf("Get(missing) = %v, %v", got, err)
			}

			sess := New("demo", "pathways.json", time.Hour)
			sess.Camera = camera.Transform{X: 10, Y: -4, Ratio: 0.05}
			sess.Selected = "TP53"
			if err := store.Set(ctx, sess); err != nil {
				t.Fatalf("Set: %v", err)
			}

			got, err = store.Get(ctx, "demo")
			if err != nil || got == nil {
				t.Fatalf("Get = %v, %v", got, err)
			}
			if got.Camera != sess.Camera || got.Selected != "TP53" || got.Network != "pathways.json" {
				t.Errorf("round trip = %+v", got)
			}

			old := New("old", "n", time.Hour)
			old.ExpiresAt = time.Now().Add(-time.Minute)
			if err := store.Set(ctx, old); err != nil {
				t.Fatal(err)
			}
			if got, _ := store.Get(ctx, "old"); got != nil {
				t.Error("expired session should read as missing")
			}
			if err := store.Cleanup(ctx); err != nil {
				t.Fatalf("Cleanup: %v", err)
			}

			if err := store.Delete(ctx, "demo"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, "demo"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
			if got, _ := store.Get(ctx, "demo"); got != nil {
				t.Error("deleted session still present")
			}
		})
	}
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, id := range []string{"", "../escape", "a/b"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Get(%q) err = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestFileStoreCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	old := New("old", "n", time.Hour)
	old.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, New("fresh", "n", time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := store.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.json")); !os.IsNotExist(err) {
		t.Error("expired file should be removed")
	}
	for _, name := range []string{"fresh.json", "notes.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should survive cleanup: %v", name, err)
		}
	}
	if store.Path() != dir {
		t.Errorf("Path = %q", store.Path())
	}
}

func TestFileStoreList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first := New("first", "n", time.Hour)
	first.UpdatedAt = time.Now().Add(-time.Minute)
	expired := New("expired", "n", time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Second)
	for _, s := range []*Session{first, New("second", "n", time.Hour), expired} {
		if err := store.Set(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d sessions, want 2", len(got))
	}
	if got[0].ID != "second" || got[1].ID != "first" {
		t.Errorf("order = %s, %s; want second, first", got[0].ID, got[1].ID)
	}
}
