package ui

import (
	"github.com/templui/vows/internal/upload"
)

type FileStatus struct {
	Name     string       `json:"name"`
	State    upload.State `json:"state"`
	Progress int          `json:"progress"`
	URL      string       `json:"url,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type BatchStatus struct {
	Committed int          `json:"committed"`
	Files     []FileStatus `json:"files"`
}

// Batch flattens an upload result for the client. Nil stays nil.
func Batch(res *upload.Result) *BatchStatus {
	if res == nil {
		return nil
	}
	out := &BatchStatus{Committed: res.Committed, Files: make([]FileStatus, len(res.Tasks))}
	for i, t := range res.Tasks {
		fs := FileStatus{Name: t.File.Name, State: t.State, Progress: t.Progress, URL: t.URL}
		if t.Err != nil {
			fs.Error = "upload failed"
		}
		out.Files[i] = fs
	}
	return out
}
