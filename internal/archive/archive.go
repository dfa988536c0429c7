// Package archive stores copies of rendered workbooks in a blob sink.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver names a sink implementation.
type Driver string

const (
	DriverNone Driver = "none"
	DriverFS   Driver = "fs"
	DriverS3   Driver = "s3"
)

func (d Driver) IsValid() bool {
	switch d {
	case DriverNone, DriverFS, DriverS3:
		return true
	}
	return false
}

// Sink writes an object under key and returns where it landed.
type Sink interface {
	Driver() Driver
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Key builds reports/{yyyy}/{base}-{uuid}{ext} for a workbook filename.
func Key(filename string, at time.Time) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(path.Base(filename), ext)
	return fmt.Sprintf("reports/%04d/%s-%s%s", at.Year(), base, uuid.NewString(), ext)
}

// sanitizeKey rejects empty, absolute and traversing keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key traversal %q", key)
	}
	return clean, nil
}
