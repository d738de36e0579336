package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")

	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	ref, err := storage.Save(ctx, "Resume.PDF", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(ref))
	assert.True(t, strings.HasPrefix(filepath.Base(ref), "cv_"))
	assert.Equal(t, ".pdf", filepath.Ext(ref))

	data, err := os.ReadFile(ref)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, storage.Delete(ctx, ref))
	_, err = os.Stat(ref)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, storage.Delete(ctx, ref), "deleting twice is fine")
}

type flakyStorage struct {
	*memoryStorage
	failures int
	calls    int
}

func (f *flakyStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("connection reset")
	}
	return f.memoryStorage.Save(ctx, filename, data)
}

func constantBackoff(retries uint64) func() retry.Backoff {
	return func() retry.Backoff {
		return retry.WithMaxRetries(retries, retry.NewConstant(time.Millisecond))
	}
}

func TestRetryStorageRecovers(t *testing.T) {
	flaky := &flakyStorage{memoryStorage: newMemoryStorage(), failures: 2}
	storage := NewRetryStorageBackoff(flaky, constantBackoff(3))

	ref, err := storage.Save(context.Background(), "cv.pdf", []byte("data"))
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetryStorageGivesUp(t *testing.T) {
	flaky := &flakyStorage{memoryStorage: newMemoryStorage(), failures: 10}
	storage := NewRetryStorageBackoff(flaky, constantBackoff(2))

	_, err := storage.Save(context.Background(), "cv.pdf", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 3, flaky.calls)
}
