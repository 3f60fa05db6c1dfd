// Package blobstore keeps converted PDFs outside the database. Records in
// the local history refer to blobs by the key Put returns.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// newKey builds a date-partitioned random key that keeps name's extension.
func newKey(name string, now time.Time) string {
	ext := strings.ToLower(path.Ext(name))
	return fmt.Sprintf("conversions/%d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

// validKey rejects keys that could escape the store root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, `\`) {
		return fmt.Errorf("invalid blob key %q", key)
	}
	return nil
}
