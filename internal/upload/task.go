package upload

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/templui/vows/internal/storage"
)

var ErrClosed = errors.New("upload orchestrator is closed")

type State string

const (
	StateQueued    State = "queued"
	StateUploading State = "uploading"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Task tracks one file of a batch. Progress never decreases.
type Task struct {
	Index    int
	File     storage.File
	Path     string
	Progress int
	State    State
	URL      string
	Err      error
}

// Result is the outcome of a batch, returned even when it stopped early.
type Result struct {
	Tasks     []Task
	Committed int
}

// URLs lists the public URLs of committed files in batch order.
func (r *Result) URLs() []string {
	var urls []string
	for _, t := range r.Tasks {
		if t.State == StateCompleted {
			urls = append(urls, t.URL)
		}
	}
	return urls
}

// Error names the file that stopped a batch.
type Error struct {
	File  string
	Index int
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload of %s (file %d) failed: %v", e.File, e.Index+1, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// destPath prefixes the sanitized name with a millisecond stamp.
func destPath(stamp int64, name string) string {
	return fmt.Sprintf("%d-%s", stamp, sanitizeName(name))
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	dash := false
	for _, r := range name {
		ok := r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-')
		if ok {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}

	clean := strings.Trim(b.String(), "-.")
	if clean == "" {
		return "file"
	}
	return clean
}
