// Package storage - Pager component
//
// The Pager sits between the page API and the file substrate: it
// caches pages in memory, tracks which ones have unwritten changes,
// and is the only thing that knows how a page id maps to a byte
// offset in the backing file.
package storage

import (
	"container/list"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMaxCacheSize is the default maximum number of pages kept in
// the in-memory cache at once.
const DefaultMaxCacheSize = 1000

// Pager manages reading and writing pages to a single backing file,
// caching them in memory between accesses.
type Pager struct {
	file *File

	// pageCount is the total number of pages ever allocated. Page ids
	// below this are addressable even if never written to disk.
	pageCount uint32

	cache map[uint32]*Page

	// lruList tracks cache access order, most recently used at front.
	// Element.Value is the page id (uint32).
	lruList *list.List
	lruMap  map[uint32]*list.Element

	// dirty holds the ids of every cached page with unflushed changes.
	dirty map[uint32]struct{}

	maxCacheSize int

	mu  sync.RWMutex
	log *logrus.Entry
}

// PagerOption configures a Pager at construction time.
type PagerOption func(*Pager)

// WithMaxCacheSize overrides DefaultMaxCacheSize.
func WithMaxCacheSize(size int) PagerOption {
	return func(p *Pager) {
		if size > 0 {
			p.maxCacheSize = size
		}
	}
}

// WithLogger overrides the pager's logrus entry. Useful for tests
// that want to assert on log output, or callers that want their own
// field set attached.
func WithLogger(log *logrus.Entry) PagerOption {
	return func(p *Pager) {
		if log != nil {
			p.log = log
		}
	}
}

// Open opens (creating if needed) the backing file at path and
// returns a Pager over it, with pageCount derived from the file's
// current size.
func Open(path string, opts ...PagerOption) (*Pager, error) {
	instanceID := uuid.New()
	log := logrus.WithFields(logrus.Fields{"component": "pager", "pager_id": instanceID.String()})

	file, err := OpenFile(path, log)
	if err != nil {
		return nil, err
	}

	size, err := file.Size()
	if err != nil {
		file.Close()
		return nil, err
	}

	p := &Pager{
		file:         file,
		pageCount:    uint32(size / PageSize),
		cache:        make(map[uint32]*Page),
		lruList:      list.New(),
		lruMap:       make(map[uint32]*list.Element),
		dirty:        make(map[uint32]struct{}),
		maxCacheSize: DefaultMaxCacheSize,
		log:          log,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log.WithField("page_count", p.pageCount).Debug("pager opened")
	return p, nil
}

// Get returns the page for id, from cache if present. A cache miss
// for an id within the file is read from disk; a miss past the
// current end of file synthesizes a fresh, empty leaf page that is
// cached but not dirty, since nothing has been written for it yet.
func (p *Pager) Get(id uint32) (*Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if page, ok := p.cache[id]; ok {
		p.touchLocked(id)
		return page, nil
	}

	if err := p.evictIfNeededLocked(); err != nil {
		return nil, err
	}

	if id >= p.pageCount {
		page := NewPage(id, VariantLeaf)
		page.MarkClean()
		p.cacheLocked(page)
		p.log.WithField("page_id", id).Debug("synthesized blank page past end of file")
		return page, nil
	}

	offset := int64(id) * PageSize
	raw, err := p.file.ReadAt(offset, PageSize)
	if err != nil {
		return nil, err
	}
	if len(raw) < PageSize {
		padded := make([]byte, PageSize)
		copy(padded, raw)
		raw = padded
	}
	page, err := FromBytes(id, raw, PageSize)
	if err != nil {
		return nil, err
	}
	p.cacheLocked(page)
	p.log.WithField("page_id", id).Debug("read page from disk")
	return page, nil
}

// Allocate reserves the next available id and returns a new, dirty
// page of the given variant for it. Nothing is written to the file
// until the page is flushed.
func (p *Pager) Allocate(variant Variant) (*Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.evictIfNeededLocked(); err != nil {
		return nil, err
	}

	page := NewPage(p.pageCount, variant)
	p.pageCount++
	p.cacheLocked(page)
	p.dirty[page.ID()] = struct{}{}
	p.log.WithFields(logrus.Fields{"page_id": page.ID(), "variant": variant}).Debug("allocated page")
	return page, nil
}

// MarkDirty records that the cached page with the given id has
// unflushed changes. Pages mutated through their own methods (Insert,
// Delete, AddEntry) already set their own dirty flag; MarkDirty keeps
// the pager's dirty set in agreement with it for callers that mutate
// a page they already hold a pointer to.
func (p *Pager) MarkDirty(id uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty[id] = struct{}{}
}

// Flush writes the page for id to disk if it is dirty, then marks it
// clean. It is a no-op if the page is not dirty; a dirty id with no
// cached page fails with ErrIndex.
func (p *Pager) Flush(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(id)
}

// FlushAll writes every currently dirty page to disk. It attempts
// every dirty page even if some fail, aggregating the failures with
// errors.Join so a caller can see every page that didn't make it to
// disk rather than only the first. A page whose flush fails stays in
// the dirty set so a later FlushAll retries it.
func (p *Pager) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]uint32, 0, len(p.dirty))
	for id := range p.dirty {
		ids = append(ids, id)
	}

	var flushErrs []error
	for _, id := range ids {
		if err := p.flushLocked(id); err != nil {
			flushErrs = append(flushErrs, err)
		}
	}
	return errors.Join(flushErrs...)
}

// Close flushes every dirty page and closes the backing file.
func (p *Pager) Close() error {
	flushErr := p.FlushAll()
	closeErr := p.file.Close()
	return errors.Join(flushErr, closeErr)
}

// PageCount returns the total number of pages ever allocated.
func (p *Pager) PageCount() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pageCount
}

// CacheSize returns the number of pages currently cached in memory.
func (p *Pager) CacheSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}

// MaxCacheSize returns the cache's capacity.
func (p *Pager) MaxCacheSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxCacheSize
}

// DirtyCount returns the number of pages currently awaiting flush.
func (p *Pager) DirtyCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.dirty)
}

func (p *Pager) flushLocked(id uint32) error {
	if _, isDirty := p.dirty[id]; !isDirty {
		return nil
	}
	page, ok := p.cache[id]
	if !ok {
		return fmt.Errorf("%w: page %d is marked dirty but not cached", ErrIndex, id)
	}

	raw, err := page.ToBytes()
	if err != nil {
		return err
	}
	offset := int64(id) * PageSize
	if err := p.file.WriteAt(offset, raw); err != nil {
		return err
	}
	page.MarkClean()
	delete(p.dirty, id)
	p.log.WithField("page_id", id).Debug("flushed page")
	return nil
}

// touchLocked moves id to the front of the LRU list. Caller must hold p.mu.
func (p *Pager) touchLocked(id uint32) {
	if elem, ok := p.lruMap[id]; ok {
		p.lruList.MoveToFront(elem)
	}
}

// cacheLocked inserts page into the cache and LRU list. Caller must hold p.mu.
func (p *Pager) cacheLocked(page *Page) {
	p.cache[page.ID()] = page
	elem := p.lruList.PushFront(page.ID())
	p.lruMap[page.ID()] = elem
	if page.IsDirty() {
		p.dirty[page.ID()] = struct{}{}
	}
}

// evictIfNeededLocked evicts the least recently used page when the
// cache is full, flushing it first if dirty. Caller must hold p.mu.
func (p *Pager) evictIfNeededLocked() error {
	if len(p.cache) < p.maxCacheSize {
		return nil
	}

	back := p.lruList.Back()
	if back == nil {
		return nil
	}
	id := back.Value.(uint32)

	if _, isDirty := p.dirty[id]; isDirty {
		if err := p.flushLocked(id); err != nil {
			return fmt.Errorf("evict page %d: %w", id, err)
		}
	}

	delete(p.cache, id)
	p.lruList.Remove(back)
	delete(p.lruMap, id)
	p.log.WithField("page_id", id).Debug("evicted page from cache")
	return nil
}
