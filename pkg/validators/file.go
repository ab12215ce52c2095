package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 255

var (
	// PDFOnly is used for manuscripts
	PDFOnly = []string{"application/pdf"}
	// Documents is used for signed forms and payment proofs
	Documents = []string{"application/pdf", "image/png", "image/jpeg", "image/webp"}
)

// FileValidator checks the upload against the size limit and the allowed mime
// types. The header's Content-Type is easy to spoof so the content itself is
// sniffed. Returns the detected mime type and the opened file rewound to the start.
func FileValidator(fh *multipart.FileHeader, maxSize int64, allowed []string) (int, string, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, "", nil, ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, "", nil, ErrFileNameTooLong
	}

	if maxSize > 0 && fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, "", nil, ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, "", nil, err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, "", nil, err
	}

	ok := slices.ContainsFunc(allowed, func(t string) bool { return mime.Is(t) })
	if !ok {
		f.Close()
		return http.StatusBadRequest, "", nil, ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, "", nil, err
	}

	return 0, mime.String(), f, nil
}
