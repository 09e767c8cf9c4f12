package storage

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

var ErrNotFound = errors.New("file not found")

// File is a stored resume. Name is the opaque reference kept on the
// application.
type File struct {
	Name        string
	ContentType string
	Bytes       []byte
}

type Store interface {
	Save(ctx context.Context, f File) error
	Open(ctx context.Context, name string) (File, error)
	Delete(ctx context.Context, name string) error
}

// NewName builds a unique stored name from the uploaded file name, e.g.
// "Jane Doe CV.pdf" becomes "jane-doe-cv-<ksuid>.pdf".
func NewName(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	s := slug.Make(base)
	if s == "" || s == "." {
		s = "resume"
	}
	if len(s) > 64 {
		s = strings.Trim(s[:64], "-")
	}
	return s + "-" + ksuid.New().String() + ext
}

// ValidName reports whether name can only refer to a file directly inside
// the store.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}
