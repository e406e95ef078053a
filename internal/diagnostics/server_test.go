package diagnostics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cabewaldrop/pagedb/internal/storage"
)

func openTestPager(t *testing.T) *storage.Pager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diag.db")
	pager, err := storage.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { pager.Close() })
	return pager
}

func TestHealthz(t *testing.T) {
	s := NewServer(":0", openTestPager(t))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStats(t *testing.T) {
	pager := openTestPager(t)
	_, err := pager.Allocate(storage.VariantLeaf)
	require.NoError(t, err)

	s := NewServer(":0", pager)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, uint32(1), got.PageCount)
}

func TestGetPage(t *testing.T) {
	pager := openTestPager(t)
	page, err := pager.Allocate(storage.VariantLeaf)
	require.NoError(t, err)
	_, err = page.Insert([]byte("row"))
	require.NoError(t, err)

	s := NewServer(":0", pager)
	req := httptest.NewRequest(http.MethodGet, "/pages/0", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "leaf", got.Variant)
	require.Equal(t, 1, got.Slots)
}

func TestGetPageInvalidID(t *testing.T) {
	s := NewServer(":0", openTestPager(t))
	req := httptest.NewRequest(http.MethodGet, "/pages/notanumber", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
