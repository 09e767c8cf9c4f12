package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// DiskStore keeps resumes as plain files under a single directory.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create upload dir %s", dir)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, f File) error {
	if !ValidName(f.Name) {
		return errors.Errorf("invalid file name %q", f.Name)
	}
	fh, err := os.OpenFile(filepath.Join(s.dir, f.Name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", f.Name)
	}
	if _, err := fh.Write(f.Bytes); err != nil {
		fh.Close()
		return errors.Wrapf(err, "unable to write %s", f.Name)
	}
	return errors.Wrapf(fh.Close(), "unable to close %s", f.Name)
}

// Open reads the whole file. The content type is sniffed again since the
// file system does not keep it.
func (s *DiskStore) Open(_ context.Context, name string) (File, error) {
	if !ValidName(name) {
		return File{}, ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, errors.Wrapf(err, "unable to read %s", name)
	}
	return File{Name: name, ContentType: mimetype.Detect(b).String(), Bytes: b}, nil
}

func (s *DiskStore) Delete(_ context.Context, name string) error {
	if !ValidName(name) {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return errors.Wrapf(err, "unable to delete %s", name)
}
