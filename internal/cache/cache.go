// Package cache memoizes document summaries so re-uploads of an already
// processed file skip OCR entirely. Keys are content hashes, not file
// names, so a renamed copy of the same scan still hits.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// Cache defines the summary cache contract.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// FileKey derives a cache key from the file's content hash.
func FileKey(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return "carcheckmate:v1:" + hex.EncodeToString(h.Sum(nil)), nil
}
