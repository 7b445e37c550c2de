package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parikshasarathi/sarathi/internal/store"
)

func TestNormalizeBasePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/", ""},
		{"bseb", "/bseb"},
		{"/bseb/", "/bseb"},
		{" /hi ", "/hi"},
	}
	for _, tt := range tests {
		if got := normalizeBasePath(tt.in); got != tt.want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImportFilesSkipsRepeats(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	bank := store.NewBank(db.Slot(store.BankSlotName))

	path := filepath.Join(t.TempDir(), "seed.json")
	seed := `[{"questionText":"2 + 2 = ?","options":["3","4","5","6"],"correctAnswer":1,"subject":"गणित","classLevel":"10"}]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for range 2 {
		if err := importFiles(ctx, bank, db, []string{path}, false); err != nil {
			t.Fatalf("importFiles: %v", err)
		}
	}
	if n, _ := bank.Count(ctx); n != 1 {
		t.Errorf("bank has %d questions, want 1", n)
	}

	if err := importFiles(ctx, bank, db, []string{filepath.Join(t.TempDir(), "missing.json")}, false); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestLoadMockTests(t *testing.T) {
	c, err := loadMockTests("")
	if err != nil {
		t.Fatalf("built-in series: %v", err)
	}
	if c.Len() == 0 {
		t.Error("built-in series is empty")
	}

	path := filepath.Join(t.TempDir(), "mock.json")
	if err := os.WriteFile(path, []byte(`[{"id":"x","title":"t","subject":"गणित","durationMinutes":5,"questions":[]}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadMockTests(path); err == nil {
		t.Error("expected error for a test without questions")
	}
}
