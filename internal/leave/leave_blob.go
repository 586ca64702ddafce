package leave

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskBlobStore removes evidence files from a local upload directory.
// Handles are bare file names issued at upload time.
type DiskBlobStore struct {
	dir string
}

func NewDiskBlobStore(dir string) *DiskBlobStore {
	return &DiskBlobStore{dir: dir}
}

func (s *DiskBlobStore) Remove(ctx context.Context, handle string) error {
	if handle == "" || handle != filepath.Base(handle) {
		return fmt.Errorf("invalid blob handle %q", handle)
	}

	err := os.Remove(filepath.Join(s.dir, handle))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
