package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemDBRoundTrip(t *testing.T) {
	db := NewMemDB()
	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := db.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get([]byte("a"))
	if err != nil || !bytes.Equal(got, []byte("1")) {
		t.Fatalf("get: %q %v", got, err)
	}
	ok, err := db.Has([]byte("a"))
	if err != nil || !ok {
		t.Fatalf("has: %v %v", ok, err)
	}
}

func TestMemDBCopiesValues(t *testing.T) {
	db := NewMemDB()
	value := []byte("original")
	if err := db.Put([]byte("k"), value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'X'
	got, err := db.Get([]byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("original")) {
		t.Fatalf("stored value aliases the caller's slice: %q", got)
	}
}

func TestOverlayBuffersWrites(t *testing.T) {
	backend := NewMemDB()
	if err := backend.Put([]byte("base"), []byte("old")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	overlay := NewOverlay(backend)
	if overlay.Dirty() {
		t.Fatalf("fresh overlay should be clean")
	}
	if err := overlay.Put([]byte("base"), []byte("new")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := overlay.Put([]byte("extra"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !overlay.Dirty() {
		t.Fatalf("overlay with writes should be dirty")
	}

	// Reads see the buffered value; the backend stays untouched.
	got, err := overlay.Get([]byte("base"))
	if err != nil || !bytes.Equal(got, []byte("new")) {
		t.Fatalf("overlay read: %q %v", got, err)
	}
	got, err = backend.Get([]byte("base"))
	if err != nil || !bytes.Equal(got, []byte("old")) {
		t.Fatalf("backend should still hold the old value: %q %v", got, err)
	}
	if _, err := backend.Get([]byte("extra")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("backend should not see buffered keys, got %v", err)
	}

	// Flushing the entries commits everything in one batch.
	if err := backend.Write(overlay.Entries()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got, err = backend.Get([]byte("base"))
	if err != nil || !bytes.Equal(got, []byte("new")) {
		t.Fatalf("flushed value: %q %v", got, err)
	}
	got, err = backend.Get([]byte("extra"))
	if err != nil || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("flushed value: %q %v", got, err)
	}
}

func TestOverlayReadThrough(t *testing.T) {
	backend := NewMemDB()
	if err := backend.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	overlay := NewOverlay(backend)

	got, err := overlay.Get([]byte("k"))
	if err != nil || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("read-through: %q %v", got, err)
	}
	ok, err := overlay.Has([]byte("k"))
	if err != nil || !ok {
		t.Fatalf("has read-through: %v %v", ok, err)
	}
	if _, err := overlay.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverlayEntriesKeepFirstWriteOrder(t *testing.T) {
	overlay := NewOverlay(NewMemDB())
	overlay.Put([]byte("a"), []byte("1"))
	overlay.Put([]byte("b"), []byte("1"))
	overlay.Put([]byte("a"), []byte("2")) // overwrite keeps the slot

	entries := overlay.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if string(entries[0].Key) != "a" || string(entries[0].Value) != "2" {
		t.Fatalf("unexpected first entry %q=%q", entries[0].Key, entries[0].Value)
	}
	if string(entries[1].Key) != "b" {
		t.Fatalf("unexpected second entry %q", entries[1].Key)
	}
}
