package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DiskBackend writes one pretty-printed JSON file per item under
// baseDir/subdir/host/. The host directory keeps items from different
// sites apart when a crawl spans hosts.
type DiskBackend struct {
	baseDir string
	subdir  string
}

// NewDiskBackend creates a DiskBackend rooted at baseDir. Items are placed
// under the subdir, typically the category name.
func NewDiskBackend(baseDir, subdir string) (*DiskBackend, error) {
	if baseDir == "" {
		return nil, &Error{Kind: KindOperation, Backend: "disk", Err: fmt.Errorf("base directory is empty")}
	}
	if err := os.MkdirAll(filepath.Join(baseDir, subdir), 0750); err != nil {
		return nil, &Error{Kind: KindConnection, Backend: "disk", Err: err}
	}
	return &DiskBackend{baseDir: baseDir, subdir: subdir}, nil
}

// Store writes the item as a JSON file. The filename combines the item's
// timestamp and ID, so concurrent writers never collide.
func (d *DiskBackend) Store(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindOperation, Backend: "disk", Err: err}
	}

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return &Error{Kind: KindSerialization, Backend: "disk", Err: err}
	}

	dir := filepath.Join(d.baseDir, d.subdir, hostDir(item.URL))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return &Error{Kind: KindConnection, Backend: "disk", Err: err}
	}

	name := fmt.Sprintf("%s_%s.json", item.Timestamp.UTC().Format("20060102T150405"), item.ID)
	if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
		return &Error{Kind: KindOperation, Backend: "disk", Err: err}
	}
	return nil
}

// Close is a no-op; files are closed per write.
func (d *DiskBackend) Close() error {
	return nil
}

// hostDir returns a filesystem-safe directory name for the item URL's
// host, or "unknown" when the URL has none.
func hostDir(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(u.Host)
	host = strings.ReplaceAll(host, ":", "_")
	return host
}
