// Package rowstore is a minimal, append-only row store built directly
// on top of the paged storage core: it asks the pager for leaf pages,
// asks the record codec to turn field lists into page payloads, and
// tracks nothing else. It has no schema, no index, and no query
// language — it exists so the storage core's pieces can be exercised
// together end to end.
package rowstore

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cabewaldrop/pagedb/internal/record"
	"github.com/cabewaldrop/pagedb/internal/storage"
)

// Store inserts, reads, deletes, and scans rows of a fixed column
// list, each row persisted as one record.Field slice per storage
// slot.
type Store struct {
	pager   *storage.Pager
	columns []string

	// lastDataPage is the most recently written-to leaf page id, tried
	// first for the next insert before allocating a new page.
	lastDataPage uint32
	hasDataPage  bool

	log *logrus.Entry
}

// Open returns a Store backed by pager, storing rows shaped like
// columns.
func Open(pager *storage.Pager, columns []string) *Store {
	return &Store{
		pager:   pager,
		columns: columns,
		log:     logrus.WithField("component", "rowstore"),
	}
}

// Insert encodes values and writes them into the last data page the
// store used if it still has space, allocating a fresh leaf page
// otherwise.
func (s *Store) Insert(values []record.Field) (pageID uint32, rowID int, err error) {
	payload, err := record.Encode(values)
	if err != nil {
		return 0, 0, err
	}

	if s.hasDataPage {
		page, err := s.pager.Get(s.lastDataPage)
		if err != nil {
			return 0, 0, err
		}
		if page.HasSpace(payload) {
			rowID, err := page.Insert(payload)
			if err != nil {
				return 0, 0, err
			}
			s.pager.MarkDirty(page.ID())
			return page.ID(), rowID, nil
		}
	}

	page, err := s.pager.Allocate(storage.VariantLeaf)
	if err != nil {
		return 0, 0, err
	}
	rowID, err = page.Insert(payload)
	if err != nil {
		return 0, 0, err
	}
	s.pager.MarkDirty(page.ID())
	s.lastDataPage = page.ID()
	s.hasDataPage = true
	s.log.WithFields(logrus.Fields{"page_id": page.ID(), "row_id": rowID}).Debug("inserted row into new page")
	return page.ID(), rowID, nil
}

// Get decodes the row stored at (pageID, rowID).
func (s *Store) Get(pageID uint32, rowID int) ([]record.Field, error) {
	page, err := s.pager.Get(pageID)
	if err != nil {
		return nil, err
	}
	if page.Variant() != storage.VariantLeaf {
		return nil, fmt.Errorf("rowstore: page %d is not a leaf page", pageID)
	}
	raw, err := page.Get(rowID)
	if err != nil {
		return nil, err
	}
	return record.Decode(raw, s.columns)
}

// Delete tombstones the row at (pageID, rowID).
func (s *Store) Delete(pageID uint32, rowID int) error {
	page, err := s.pager.Get(pageID)
	if err != nil {
		return err
	}
	if err := page.Delete(rowID); err != nil {
		return err
	}
	s.pager.MarkDirty(pageID)
	return nil
}

// Scan visits every live row across every leaf page below the pager's
// page count, including pages written before this Store was opened,
// in page-id then row-id order, stopping early if visit returns false.
func (s *Store) Scan(visit func(pageID uint32, rowID int, fields []record.Field) bool) error {
	for pageID := uint32(0); pageID < s.pager.PageCount(); pageID++ {
		page, err := s.pager.Get(pageID)
		if err != nil {
			return err
		}
		if page.Variant() != storage.VariantLeaf {
			continue
		}
		for rowID := 0; rowID < page.NumSlots(); rowID++ {
			raw, err := page.Get(rowID)
			if err != nil {
				continue // tombstoned slot
			}
			fields, err := record.Decode(raw, s.columns)
			if err != nil {
				return err
			}
			if !visit(pageID, rowID, fields) {
				return nil
			}
		}
	}
	return nil
}
