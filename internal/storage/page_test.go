package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewLeafPage(t *testing.T) {
	page := NewPage(1, VariantLeaf)

	if page.ID() != 1 {
		t.Errorf("expected ID 1, got %d", page.ID())
	}
	if page.Variant() != VariantLeaf {
		t.Errorf("expected VariantLeaf, got %v", page.Variant())
	}
	if page.NumSlots() != 0 {
		t.Errorf("expected 0 slots, got %d", page.NumSlots())
	}
	if !page.IsDirty() {
		t.Error("freshly constructed page should be dirty")
	}
}

func TestLeafInsertGet(t *testing.T) {
	page := NewPage(1, VariantLeaf)

	payload := []byte("hello, row")
	rowID, err := page.Insert(payload)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if rowID != 0 {
		t.Errorf("expected row id 0, got %d", rowID)
	}

	got, err := page.Get(rowID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
}

func TestLeafHasSpaceInvariant(t *testing.T) {
	page := NewPage(1, VariantLeaf)

	payload := make([]byte, PageSize/2)
	if _, err := page.Insert(payload); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	if page.HasSpace(payload) {
		t.Fatal("HasSpace should report false for a payload that does not fit")
	}
	if _, err := page.Insert(payload); !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

// A PageSize-4 payload looks like it just fits (0 + (PageSize-4) + 4 ==
// PageSize) but ToBytes always prepends a 1-byte variant tag first, so
// it can never actually be serialized. HasSpace/Insert must reject it
// up front rather than let it fail later at flush time.
func TestLeafHasSpaceAccountsForVariantByte(t *testing.T) {
	page := NewPage(1, VariantLeaf)

	payload := make([]byte, PageSize-4)
	if page.HasSpace(payload) {
		t.Fatal("HasSpace should report false for a payload that leaves no room for the variant byte")
	}
	if _, err := page.Insert(payload); !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestLeafDeleteAndTombstoneReuse(t *testing.T) {
	page := NewPage(1, VariantLeaf)

	id0, _ := page.Insert([]byte("a"))
	id1, _ := page.Insert([]byte("b"))
	id2, _ := page.Insert([]byte("c"))

	if err := page.Delete(id1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := page.Get(id1); !errors.Is(err, ErrIndex) {
		t.Errorf("expected ErrIndex reading a tombstoned row, got %v", err)
	}

	if err := page.Delete(id2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// LIFO: the most recently deleted slot (id2) is reused first.
	reused, err := page.Insert([]byte("d"))
	if err != nil {
		t.Fatalf("Insert after delete failed: %v", err)
	}
	if reused != id2 {
		t.Errorf("expected tombstone reuse in LIFO order (%d), got %d", id2, reused)
	}

	if _, err := page.Get(id0); err != nil {
		t.Errorf("untouched row %d should still be readable: %v", id0, err)
	}
}

func TestLeafDeleteUnknownRow(t *testing.T) {
	page := NewPage(1, VariantLeaf)
	if err := page.Delete(5); !errors.Is(err, ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}
}

func TestLeafSerializeRoundTrip(t *testing.T) {
	original := NewPage(42, VariantLeaf)
	id0, _ := original.Insert([]byte("first row"))
	_, _ = original.Insert([]byte("second row"))
	id2, _ := original.Insert([]byte("third row"))
	_ = original.Delete(id0)

	raw, err := original.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}
	if len(raw) != PageSize {
		t.Fatalf("serialized size should be %d, got %d", PageSize, len(raw))
	}

	restored, err := FromBytes(42, raw, PageSize)
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if restored.ID() != original.ID() {
		t.Errorf("ID mismatch: expected %d, got %d", original.ID(), restored.ID())
	}
	if restored.Variant() != VariantLeaf {
		t.Errorf("expected VariantLeaf, got %v", restored.Variant())
	}
	if restored.IsDirty() {
		t.Error("a page freshly loaded from bytes should not be dirty")
	}

	got, err := restored.Get(id2)
	if err != nil {
		t.Fatalf("Get on restored page failed: %v", err)
	}
	if !bytes.Equal(got, []byte("third row")) {
		t.Errorf("expected %q, got %q", "third row", got)
	}
	if _, err := restored.Get(id0); !errors.Is(err, ErrIndex) {
		t.Errorf("expected the deleted row to stay tombstoned after round-trip, got %v", err)
	}
}

func TestInternalAddGetEntry(t *testing.T) {
	page := NewPage(7, VariantInternal)

	idx, err := page.AddEntry([]byte("m"), 3)
	if err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	entry, err := page.GetEntry(idx)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if !bytes.Equal(entry.Key, []byte("m")) || entry.ChildPageID != 3 {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if page.NumEntries() != 1 {
		t.Errorf("expected 1 entry, got %d", page.NumEntries())
	}
}

func TestInternalDeleteUnsupported(t *testing.T) {
	page := NewPage(7, VariantInternal)
	if _, err := page.AddEntry([]byte("k"), 1); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if err := page.DeleteEntry(0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestInternalSerializeRoundTrip(t *testing.T) {
	original := NewPage(9, VariantInternal)
	_, _ = original.AddEntry([]byte("apple"), 1)
	_, _ = original.AddEntry([]byte("banana"), 2)

	raw, err := original.ToBytes()
	if err != nil {
		t.Fatalf("ToBytes failed: %v", err)
	}

	restored, err := FromBytes(9, raw, PageSize)
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if restored.NumEntries() != 2 {
		t.Fatalf("expected 2 entries, got %d", restored.NumEntries())
	}
	e0, _ := restored.GetEntry(0)
	if !bytes.Equal(e0.Key, []byte("apple")) || e0.ChildPageID != 1 {
		t.Errorf("unexpected entry 0: %+v", e0)
	}
}

func TestLeafMustBeLeafPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic calling a leaf-only method on an internal page")
		}
	}()
	page := NewPage(1, VariantInternal)
	_, _ = page.Insert([]byte("nope"))
}
