package validation

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	Kind              string // "image" or "video", used in messages
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// WithMaxSize returns a copy of c with a different size cap.
func (c FileConstraints) WithMaxSize(max int64) FileConstraints {
	c.MaxSize = max
	return c
}

var (
	// ImageConstraints defines validation rules for gallery uploads
	ImageConstraints = FileConstraints{
		Kind: "image",
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
			"image/heic": true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
			".heic": true,
		},
		MaxSize: 20 << 20, // 20MB
	}

	// VideoConstraints defines validation rules for video wishes
	VideoConstraints = FileConstraints{
		Kind: "video",
		AllowedMimeTypes: map[string]bool{
			"video/mp4":        true,
			"video/x-m4v":      true,
			"video/quicktime":  true,
			"video/webm":       true,
			"video/x-matroska": true,
		},
		AllowedExtensions: map[string]bool{
			".mp4":  true,
			".m4v":  true,
			".mov":  true,
			".webm": true,
			".mkv":  true,
		},
		MaxSize: 150 << 20, // 150MB
	}
)

// ValidateFile checks size, extension and sniffed content type of one file.
// If multiple constraints are provided, file must match at least one (OR logic).
// The detected MIME type is returned so callers can forward it to storage.
func ValidateFile(name string, size int64, r io.Reader, constraints ...FileConstraints) (string, error) {
	if len(constraints) == 0 {
		return "", fmt.Errorf("no file constraints provided")
	}

	// Sniff once; every constraint set looks at the same magic numbers
	detected := "application/octet-stream"
	if r != nil {
		mt, err := mimetype.DetectReader(r)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		detected = mt.String()
		// Strip parameters such as "; charset=utf-8"
		if i := strings.IndexByte(detected, ';'); i >= 0 {
			detected = strings.TrimSpace(detected[:i])
		}
	}

	var lastErr error
	for _, c := range constraints {
		err := validateAgainstConstraint(name, size, detected, c)
		if err == nil {
			return detected, nil
		}
		lastErr = err
	}

	return "", lastErr
}

func validateAgainstConstraint(name string, size int64, detected string, c FileConstraints) error {
	if size <= 0 {
		return newError("file", "%s is empty", name)
	}

	if c.MaxSize > 0 && size > c.MaxSize {
		return newError("file", "%s is too large: maximum %s size is %d MB", name, kindOf(c), c.MaxSize/(1<<20))
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !c.AllowedExtensions[ext] {
		return newError("file", "%s has an invalid extension %q for %s uploads", name, ext, kindOf(c))
	}

	// Content decides, not the declared header or extension
	if !c.AllowedMimeTypes[detected] {
		return newError("file", "%s is not a valid %s (detected: %s)", name, kindOf(c), detected)
	}

	return nil
}

func kindOf(c FileConstraints) string {
	if c.Kind == "" {
		return "file"
	}
	return c.Kind
}
