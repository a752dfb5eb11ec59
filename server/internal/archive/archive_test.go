package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndAll(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()

	first := Entry{Title: "first", Source: "https://a", Path: "/videos/first.mp4", CreatedAt: time.Now().Add(-time.Hour)}
	second := Entry{Title: "second", Source: "https://b", Path: "/videos/second.mp4"}

	if err := s.Record(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Title != "second" {
		t.Errorf("newest first expected, got %q", all[0].Title)
	}
	if all[1].Source != "https://a" {
		t.Errorf("source = %q", all[1].Source)
	}
}

func TestAllEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("len = %d, want 0", len(all))
	}
}
