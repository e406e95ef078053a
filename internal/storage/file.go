// Package storage implements the on-disk paged storage core: a file
// substrate that does byte-level I/O, a page type that gives that I/O
// record/entry semantics, and a pager that caches and dirties pages
// between the two.
//
// EDUCATIONAL NOTES:
// ------------------
// Real databases store data in fixed-size blocks called "pages" (typically
// 4KB or 8KB). This approach has several advantages:
// 1. Efficient disk I/O - reading/writing fixed-size blocks is optimal for disk access
// 2. Memory management - pages can be cached and managed in a buffer pool
// 3. Crash recovery - pages can be atomically written to disk
//
// File is the bottom layer of that stack: it knows nothing about pages,
// only about offsets and byte slices.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// File is the single backing file for a database. It performs all
// byte-level I/O and has no knowledge of page boundaries or layout.
type File struct {
	handle *os.File
	path   string
	log    *logrus.Entry
}

// OpenFile opens the backing file at path, creating it empty if it
// does not exist, or opening it for read+write without truncation if
// it does.
func OpenFile(path string, log *logrus.Entry) (*File, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	handle, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	log.WithField("path", path).Debug("opened backing file")
	return &File{handle: handle, path: path, log: log}, nil
}

// ReadAt positions to offset and returns up to length bytes. Fewer
// bytes (including zero) are returned, not an error, if end-of-file is
// reached first — callers asking for an unwritten page-aligned region
// receive a short or empty slice.
func (f *File) ReadAt(offset int64, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := f.handle.ReadAt(buf, offset)
	if err != nil && n == 0 {
		// io.EOF with zero bytes read at or past the end of file is the
		// expected "nothing here yet" case, not a failure.
		if errors.Is(err, io.EOF) {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("%w: read at %d: %v", ErrIO, offset, err)
	}
	return buf[:n], nil
}

// WriteAt positions to offset, writes all of data, then flushes so the
// write is visible to subsequent reads. Writing past end-of-file
// extends the file.
func (f *File) WriteAt(offset int64, data []byte) error {
	n, err := f.handle.WriteAt(data, offset)
	if err != nil {
		return fmt.Errorf("%w: write at %d: %v", ErrIO, offset, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: short write at %d: wrote %d of %d bytes", ErrIO, offset, n, len(data))
	}
	if err := f.handle.Sync(); err != nil {
		return fmt.Errorf("%w: sync after write at %d: %v", ErrIO, offset, err)
	}
	return nil
}

// Append writes data at the current end of the file and flushes.
func (f *File) Append(data []byte) error {
	size, err := f.Size()
	if err != nil {
		return err
	}
	return f.WriteAt(size, data)
}

// Size returns the current length of the file in bytes.
func (f *File) Size() (int64, error) {
	stat, err := f.handle.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat %s: %v", ErrIO, f.path, err)
	}
	return stat.Size(), nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	if err := f.handle.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, f.path, err)
	}
	return nil
}
