package storage

import (
	"encoding/binary"
	"fmt"
)

const (
	// PageSize is the fixed size, in bytes, of every on-disk page and
	// every in-memory Page's serialized form.
	PageSize = 4096

	// variantByteSize is the one leading byte that tags a serialized
	// page as leaf (0) or internal (1).
	variantByteSize = 1

	// leafLengthPrefixSize is the 4-byte big-endian length prefix in
	// front of every leaf slot (0 means tombstone).
	leafLengthPrefixSize = 4

	// internalKeyLenSize is the 2-byte big-endian key-length prefix in
	// front of every internal entry.
	internalKeyLenSize = 2

	// internalChildIDSize is the 4-byte big-endian child page id that
	// follows each internal entry's key.
	internalChildIDSize = 4
)

// Variant distinguishes the two kinds of page this storage core knows
// about.
type Variant uint8

const (
	// VariantLeaf pages hold opaque record payloads addressed by row
	// id (slot index).
	VariantLeaf Variant = 0
	// VariantInternal pages hold ordered (key, child page id) entries
	// for a B-tree layer built on top of this package.
	VariantInternal Variant = 1
)

// InternalEntry is one (key, child page id) pair stored in an internal
// page.
type InternalEntry struct {
	Key         []byte
	ChildPageID uint32
}

// Page is the in-memory twin of one fixed-size on-disk block. A Page
// is either a leaf, holding a row-id-addressed list of opaque
// payloads, or internal, holding an ordered list of (key, child page
// id) entries. See spec §3/§4.2 for the exact byte layout and
// invariants.
type Page struct {
	id      uint32
	variant Variant
	maxSize int
	dirty   bool

	// leaf state
	payloads       [][]byte
	tombstoned     map[int]struct{}
	tombstoneStack []int // LIFO order of freed slot indices
	leafSize       int   // bytes consumed by live payloads + 4/slot

	// internal state
	entries      []InternalEntry
	internalSize int // advisory; see Open Question #4 in DESIGN.md
}

// NewPage creates a fresh, empty page of the given id and variant,
// dirty from the moment it's created (nothing has been written to
// disk for it yet).
func NewPage(id uint32, variant Variant) *Page {
	return NewPageSize(id, PageSize, variant)
}

// NewPageSize is NewPage with an explicit max page size, mostly useful
// for tests that want small pages to exercise capacity limits cheaply.
func NewPageSize(id uint32, maxSize int, variant Variant) *Page {
	return &Page{
		id:         id,
		variant:    variant,
		maxSize:    maxSize,
		dirty:      true,
		tombstoned: make(map[int]struct{}),
	}
}

// FromBytes reconstructs a Page from a maxSize-byte slice previously
// produced by ToBytes, as read from disk. The reconstructed page is
// clean: nothing has changed since the bytes were last written.
func FromBytes(id uint32, raw []byte, maxSize int) (*Page, error) {
	if len(raw) != maxSize {
		return nil, fmt.Errorf("%w: page %d: got %d bytes, want %d", ErrIO, id, len(raw), maxSize)
	}
	switch Variant(raw[0]) {
	case VariantLeaf:
		return deserializeLeaf(id, raw, maxSize)
	case VariantInternal:
		return deserializeInternal(id, raw, maxSize)
	default:
		return nil, fmt.Errorf("%w: page %d: unknown variant byte %d", ErrIO, id, raw[0])
	}
}

// ID returns the page's identifier.
func (p *Page) ID() uint32 { return p.id }

// Variant returns whether this is a leaf or internal page.
func (p *Page) Variant() Variant { return p.variant }

// IsDirty reports whether the page has unflushed mutations.
func (p *Page) IsDirty() bool { return p.dirty }

// MarkClean clears the dirty flag. Called by the pager after a
// successful flush.
func (p *Page) MarkClean() { p.dirty = false }

// HasSpace reports whether payload can be inserted without exceeding
// maxSize, accounting for its 4-byte length prefix and the 1-byte
// variant tag ToBytes always prepends.
func (p *Page) HasSpace(payload []byte) bool {
	return p.leafSize+len(payload)+leafLengthPrefixSize <= p.maxSize-variantByteSize
}

// Insert stores payload in the first available tombstoned slot (most
// recently tombstoned first), or appends a new slot if none are free.
// It fails with ErrCapacity if HasSpace(payload) is false, and panics
// if called on an internal page (use AddEntry instead).
func (p *Page) Insert(payload []byte) (int, error) {
	p.mustBeLeaf("Insert")
	if !p.HasSpace(payload) {
		return 0, fmt.Errorf("%w: payload of %d bytes does not fit in page %d", ErrCapacity, len(payload), p.id)
	}

	stored := make([]byte, len(payload))
	copy(stored, payload)

	var rowID int
	if n := len(p.tombstoneStack); n > 0 {
		rowID = p.tombstoneStack[n-1]
		p.tombstoneStack = p.tombstoneStack[:n-1]
		delete(p.tombstoned, rowID)
		p.payloads[rowID] = stored
	} else {
		rowID = len(p.payloads)
		p.payloads = append(p.payloads, stored)
	}

	p.leafSize += len(stored) + leafLengthPrefixSize
	p.dirty = true
	return rowID, nil
}

// Get returns the payload stored at rowID. It fails with ErrIndex if
// rowID is negative, out of range, or tombstoned.
func (p *Page) Get(rowID int) ([]byte, error) {
	p.mustBeLeaf("Get")
	if err := p.checkLiveRowID(rowID); err != nil {
		return nil, err
	}
	out := make([]byte, len(p.payloads[rowID]))
	copy(out, p.payloads[rowID])
	return out, nil
}

// Delete tombstones rowID: its payload becomes semantically absent but
// the slot index is preserved and becomes eligible for reuse by the
// next Insert. Fails with ErrIndex on an invalid or already-tombstoned
// id.
func (p *Page) Delete(rowID int) error {
	p.mustBeLeaf("Delete")
	if err := p.checkLiveRowID(rowID); err != nil {
		return err
	}
	p.leafSize -= len(p.payloads[rowID]) + leafLengthPrefixSize
	p.payloads[rowID] = nil
	p.tombstoned[rowID] = struct{}{}
	p.tombstoneStack = append(p.tombstoneStack, rowID)
	p.dirty = true
	return nil
}

// NumSlots returns the number of slots a leaf page has, live or
// tombstoned.
func (p *Page) NumSlots() int {
	p.mustBeLeaf("NumSlots")
	return len(p.payloads)
}

func (p *Page) checkLiveRowID(rowID int) error {
	if rowID < 0 || rowID >= len(p.payloads) {
		return fmt.Errorf("%w: row id %d out of range for page %d", ErrIndex, rowID, p.id)
	}
	if _, dead := p.tombstoned[rowID]; dead {
		return fmt.Errorf("%w: row id %d is tombstoned on page %d", ErrIndex, rowID, p.id)
	}
	return nil
}

// AddEntry appends a (key, child page id) entry to an internal page
// and returns its index. current_size is bumped by an advisory
// estimate (4 + len(key)) that undercounts the true on-disk cost of
// 6 + len(key) — see DESIGN.md Open Question #4.
func (p *Page) AddEntry(key []byte, childPageID uint32) (int, error) {
	p.mustBeInternal("AddEntry")
	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)
	p.entries = append(p.entries, InternalEntry{Key: keyCopy, ChildPageID: childPageID})
	p.internalSize += internalChildIDSize + len(keyCopy)
	p.dirty = true
	return len(p.entries) - 1, nil
}

// GetEntry returns the entry at index, or ErrIndex if out of range.
func (p *Page) GetEntry(index int) (InternalEntry, error) {
	p.mustBeInternal("GetEntry")
	if index < 0 || index >= len(p.entries) {
		return InternalEntry{}, fmt.Errorf("%w: entry %d out of range for page %d", ErrIndex, index, p.id)
	}
	return p.entries[index], nil
}

// NumEntries returns the number of entries on an internal page.
func (p *Page) NumEntries() int {
	p.mustBeInternal("NumEntries")
	return len(p.entries)
}

// DeleteEntry is unsupported for internal pages.
func (p *Page) DeleteEntry(int) error {
	return fmt.Errorf("%w: delete on internal page %d", ErrUnsupported, p.id)
}

func (p *Page) mustBeLeaf(op string) {
	if p.variant != VariantLeaf {
		panic(fmt.Sprintf("storage: %s called on non-leaf page %d", op, p.id))
	}
}

func (p *Page) mustBeInternal(op string) {
	if p.variant != VariantInternal {
		panic(fmt.Sprintf("storage: %s called on non-internal page %d", op, p.id))
	}
}

// ToBytes serializes the page to exactly maxSize bytes: a one-byte
// variant tag, the slots or entries in order, then zero padding.
func (p *Page) ToBytes() ([]byte, error) {
	buf := make([]byte, 0, p.maxSize)
	switch p.variant {
	case VariantLeaf:
		buf = append(buf, byte(VariantLeaf))
		for i, payload := range p.payloads {
			if _, dead := p.tombstoned[i]; dead || payload == nil {
				buf = appendUint32(buf, 0)
				continue
			}
			buf = appendUint32(buf, uint32(len(payload)))
			buf = append(buf, payload...)
		}
	case VariantInternal:
		buf = append(buf, byte(VariantInternal))
		for _, e := range p.entries {
			buf = appendUint16(buf, uint16(len(e.Key)))
			buf = append(buf, e.Key...)
			buf = appendUint32(buf, e.ChildPageID)
		}
	default:
		return nil, fmt.Errorf("%w: page %d: unknown variant %d", ErrIO, p.id, p.variant)
	}

	if len(buf) > p.maxSize {
		return nil, fmt.Errorf("%w: page %d serializes to %d bytes, max is %d", ErrCapacity, p.id, len(buf), p.maxSize)
	}
	padded := make([]byte, p.maxSize)
	copy(padded, buf)
	return padded, nil
}

func deserializeLeaf(id uint32, raw []byte, maxSize int) (*Page, error) {
	p := &Page{
		id:         id,
		variant:    VariantLeaf,
		maxSize:    maxSize,
		tombstoned: make(map[int]struct{}),
	}

	i := variantByteSize
	for i+leafLengthPrefixSize <= len(raw) {
		length := binary.BigEndian.Uint32(raw[i : i+leafLengthPrefixSize])
		i += leafLengthPrefixSize

		if length == 0 {
			rowID := len(p.payloads)
			p.payloads = append(p.payloads, nil)
			p.tombstoned[rowID] = struct{}{}
			p.tombstoneStack = append(p.tombstoneStack, rowID)
			continue
		}

		if i+int(length) > len(raw) {
			// A prefix claiming more bytes than remain is the padding
			// boundary, not a corrupt record: stop cleanly.
			break
		}

		payload := make([]byte, length)
		copy(payload, raw[i:i+int(length)])
		p.payloads = append(p.payloads, payload)
		p.leafSize += int(length) + leafLengthPrefixSize
		i += int(length)
	}

	// The zero padding after the last slot parses as a run of tombstones;
	// trailing tombstones cannot be told apart from it, so all of them
	// are dropped.
	for n := len(p.payloads); n > 0 && p.payloads[n-1] == nil; n-- {
		p.payloads = p.payloads[:n-1]
		delete(p.tombstoned, n-1)
		p.tombstoneStack = p.tombstoneStack[:len(p.tombstoneStack)-1]
	}

	p.dirty = false
	return p, nil
}

func deserializeInternal(id uint32, raw []byte, maxSize int) (*Page, error) {
	p := &Page{
		id:      id,
		variant: VariantInternal,
		maxSize: maxSize,
	}

	i := variantByteSize
	for i+internalKeyLenSize <= len(raw) {
		keyLen := int(binary.BigEndian.Uint16(raw[i : i+internalKeyLenSize]))
		if i+internalKeyLenSize+keyLen+internalChildIDSize > len(raw) {
			break
		}
		i += internalKeyLenSize
		key := make([]byte, keyLen)
		copy(key, raw[i:i+keyLen])
		i += keyLen
		childPageID := binary.BigEndian.Uint32(raw[i : i+internalChildIDSize])
		i += internalChildIDSize

		p.entries = append(p.entries, InternalEntry{Key: key, ChildPageID: childPageID})
		p.internalSize += internalKeyLenSize + keyLen + internalChildIDSize
	}

	// The zero padding after the last entry parses as empty-key entries
	// pointing at page 0; trailing entries of that shape cannot be told
	// apart from it, so all of them are dropped.
	for n := len(p.entries); n > 0 && len(p.entries[n-1].Key) == 0 && p.entries[n-1].ChildPageID == 0; n-- {
		p.entries = p.entries[:n-1]
		p.internalSize -= internalKeyLenSize + internalChildIDSize
	}

	p.dirty = false
	return p, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}
