package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

var pdfMagic = []byte("%PDF-")

// IsProbablyPDF reports whether data starts with the PDF header
func IsProbablyPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// IsImage reports whether the declared content type is an image type
func IsImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

// Upload is a file received from a client, held in memory
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Store persists uploads and returns a reference to them
type Store interface {
	Save(ctx context.Context, folder string, upload *Upload) (model.StorageRef, error)
}

// FromMultipart reads a multipart file. At most limit+1 bytes are read so an
// oversized file is detected without buffering all of it. Size always
// carries the declared size.
func FromMultipart(fh *multipart.FileHeader, limit int64) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	size := fh.Size
	if int64(len(data)) > size {
		size = int64(len(data))
	}

	return &Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        size,
		Data:        data,
	}, nil
}
