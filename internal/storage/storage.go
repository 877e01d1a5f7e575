// Package storage publishes the rendered menu, to disk and to an s3 compatible bucket.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultKey         = "daily_menu.html"
	HTMLContentType    = "text/html; charset=utf-8"
	defaultPermissions = 0644
)

// Uploader puts a whole object under key, replacing what was there.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// WriteFile writes the document to path, creating missing parent directories.
func WriteFile(path, html string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	err := os.WriteFile(path, []byte(html), defaultPermissions)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a previously written document.
func ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(content), nil
}
