package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// ProgressFunc receives the fraction of bytes sent, in [0, 1].
type ProgressFunc func(fraction float64)

// Transport uploads one file to a pre-addressed destination and returns the
// public URL under which it can be fetched.
type Transport interface {
	Send(ctx context.Context, f File, destPath, token string, onProgress ProgressFunc) (string, error)
}

// Remover is implemented by transports that can delete what they stored.
type Remover interface {
	Remove(ctx context.Context, destPath, token string) error
}

// File is a binary payload plus the metadata needed to upload it.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Path        string // Set when the payload lives on local disk
	Open        func() (io.ReadCloser, error)
}

// FromMultipart wraps an uploaded form file.
func FromMultipart(h *multipart.FileHeader) File {
	return File{
		Name:        h.Filename,
		Size:        h.Size,
		ContentType: h.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// FromPath wraps a file on disk.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromBytes wraps an in-memory payload.
func FromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return readSeekNopCloser{bytes.NewReader(data)}, nil
		},
	}
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

func (f File) contentType() string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}
