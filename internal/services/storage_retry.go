package services

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

var _ DocumentStorage = (*RetryStorage)(nil)

// RetryStorage wraps each storage operation in a backoff loop.
type RetryStorage struct {
	storage DocumentStorage
	backoff func() retry.Backoff
}

func NewRetryStorageBackoff(storage DocumentStorage, backoff func() retry.Backoff) *RetryStorage {
	return &RetryStorage{storage: storage, backoff: backoff}
}

// NewRetryStorage retries up to attempts times with exponential backoff from delay.
func NewRetryStorage(storage DocumentStorage, attempts uint64, delay time.Duration) *RetryStorage {
	return NewRetryStorageBackoff(storage, func() retry.Backoff {
		b := retry.NewExponential(delay)
		b = retry.WithMaxRetries(attempts, b)
		return b
	})
}

func (r *RetryStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	var ref string
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		ref, err = r.storage.Save(ctx, filename, data)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (r *RetryStorage) Delete(ctx context.Context, ref string) error {
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		if err := r.storage.Delete(ctx, ref); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
