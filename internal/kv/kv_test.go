package kv

import (
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadMissingKey(t *testing.T) {
	s := newTestStore(t)

	out := testDoc{Name: "untouched", Count: 7}
	err := s.Load("absent", &out)
	if !errors.Is(err, ErrNoDocument) {
		t.Fatalf("Load(absent) error = %v, want ErrNoDocument", err)
	}
	if out.Name != "untouched" || out.Count != 7 {
		t.Errorf("Load(absent) modified out: %+v", out)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	in := []testDoc{{Name: "a", Count: 1}, {Name: "b", Count: 2}}
	if err := s.Save("docs", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out []testDoc
	if err := s.Load("docs", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("doc", testDoc{Name: "old"}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := s.Save("doc", testDoc{Name: "new", Count: 3}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	var out testDoc
	if err := s.Load("doc", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Name != "new" || out.Count != 3 {
		t.Errorf("Load after overwrite = %+v, want the second document", out)
	}
}

func TestLoadCorruptDocument(t *testing.T) {
	s := newTestStore(t)

	_, err := s.db.Exec(
		"INSERT INTO documents (key, value) VALUES (?, ?)",
		"broken", "{not json",
	)
	if err != nil {
		t.Fatalf("inserting corrupt document: %v", err)
	}

	var out testDoc
	if err := s.Load("broken", &out); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Load(corrupt) error = %v, want ErrNoDocument", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save("doc", testDoc{Name: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete("doc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var out testDoc
	if err := s.Load("doc", &out); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Load after Delete error = %v, want ErrNoDocument", err)
	}

	// Deleting an absent key is not an error.
	if err := s.Delete("doc"); err != nil {
		t.Errorf("Delete(absent) = %v, want nil", err)
	}
}
