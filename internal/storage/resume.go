package storage

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

var ErrUnsupportedType = errors.New("unsupported resume type")

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOC  = "application/msword"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var resumeTypes = []struct {
	contentType string
	ext         string
}{
	{ContentTypePDF, ".pdf"},
	{ContentTypeDOC, ".doc"},
	{ContentTypeDOCX, ".docx"},
}

// DetectResume sniffs b and returns its content type and file extension.
// Only PDF and Word documents are accepted, whatever the client claimed.
func DetectResume(b []byte) (string, string, error) {
	detected := mimetype.Detect(b)
	for m := detected; m != nil; m = m.Parent() {
		for _, t := range resumeTypes {
			if m.Is(t.contentType) {
				return t.contentType, t.ext, nil
			}
		}
	}
	return "", "", errors.Wrapf(ErrUnsupportedType, "got %s", detected.String())
}
