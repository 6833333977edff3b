package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadURLDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := storage.NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("hello"), "leave/emp-1/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "leave/emp-1/a.pdf", key)

	body, err := os.ReadFile(filepath.Join(dir, "leave", "emp-1", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	url, err := s.GetURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/leave/emp-1/a.pdf", url)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is fine")
	_, err = os.Stat(filepath.Join(dir, "leave", "emp-1", "a.pdf"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_StaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(filepath.Join(dir, "uploads"), "http://x")
	require.NoError(t, err)

	key, err := s.Upload(context.Background(), strings.NewReader("x"), "../../etc/passwd", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)

	_, err = os.Stat(filepath.Join(dir, "uploads", "etc", "passwd"))
	assert.NoError(t, err)

	_, err = s.Upload(context.Background(), strings.NewReader("x"), "", "text/plain")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}
