package attachment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore persists opaque binary payloads and hands back retrievable
// references. The rest of the system never looks inside a blob.
type BlobStore interface {
	Save(name string, data []byte) (ref string, err error)
	Delete(ref string) error
}

// DiskStore is a BlobStore writing payloads under a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the payload under a fresh name, keeping the original extension.
func (d *DiskStore) Save(name string, data []byte) (string, error) {
	ref := uuid.New().String() + filepath.Ext(name)
	if err := os.WriteFile(filepath.Join(d.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", ref, err)
	}
	return ref, nil
}

// Delete removes the stored payload for ref.
func (d *DiskStore) Delete(ref string) error {
	return os.Remove(filepath.Join(d.dir, filepath.Base(ref)))
}
