package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/templui/vows/internal/media"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    []string
	removed []string
	failOn  map[string]error
}

func (f *fakeTransport) Send(_ context.Context, file storage.File, path, _ string, onProgress storage.ProgressFunc) (string, error) {
	f.mu.Lock()
	f.sent = append(f.sent, file.Name)
	err := f.failOn[file.Name]
	f.mu.Unlock()

	if err != nil {
		onProgress(0.25)
		return "", err
	}
	for i := 1; i <= 4; i++ {
		onProgress(float64(i) / 4)
	}
	return "https://cdn.example.com/" + path, nil
}

func (f *fakeTransport) Remove(_ context.Context, path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeTransport) sentNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type commitLog struct {
	mu    sync.Mutex
	tasks []Task
	fail  error
}

func (c *commitLog) commit(_ context.Context, t Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	c.tasks = append(c.tasks, t)
	return nil
}

func newTestOrchestrator(t *testing.T, prober media.Prober) *Orchestrator {
	t.Helper()
	o := New(prober)
	o.now = func() time.Time { return time.UnixMilli(1700000000000) }
	t.Cleanup(o.Close)
	return o
}

func images(n int) []storage.File {
	files := make([]storage.File, n)
	for i := range files {
		files[i] = storage.FromBytes(fmt.Sprintf("img%02d.png", i), pngHeader)
	}
	return files
}

var imageConstraints = Constraints{MaxFiles: 20, File: validation.ImageConstraints}

func TestSubmitRejectsOversizedBatch(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	tr := &fakeTransport{}
	commits := &commitLog{}

	res, err := o.Submit(context.Background(), Batch{
		Files:     images(21),
		Transport: tr,
		Commit:    commits.commit,
	}, imageConstraints)

	require.Error(t, err)
	assert.True(t, validation.IsValidation(err))
	assert.Nil(t, res)
	assert.Empty(t, tr.sentNames())
	assert.Empty(t, commits.tasks)
}

func TestSubmitAcceptsFullBatch(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	tr := &fakeTransport{}
	commits := &commitLog{}

	var mu sync.Mutex
	var percents []int
	done := 0

	res, err := o.Submit(context.Background(), Batch{
		Files:     images(20),
		Transport: tr,
		Commit:    commits.commit,
		OnProgress: func(p int) {
			mu.Lock()
			percents = append(percents, p)
			mu.Unlock()
		},
		OnDone: func() { done++ },
	}, imageConstraints)

	require.NoError(t, err)
	assert.Equal(t, 20, res.Committed)
	assert.Len(t, res.URLs(), 20)
	assert.Len(t, tr.sentNames(), 20)
	assert.Len(t, commits.tasks, 20)
	assert.Equal(t, 1, done)

	// Files go out in order
	assert.Equal(t, "img00.png", tr.sentNames()[0])
	assert.Equal(t, "img19.png", tr.sentNames()[19])
	assert.Equal(t, "1700000000000-img00.png", commits.tasks[0].Path)
	assert.Equal(t, "image/png", commits.tasks[0].File.ContentType)

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.Greater(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestSubmitVideoDuration(t *testing.T) {
	durations := map[string]time.Duration{
		"short.mp4":   10 * time.Second,
		"min.mp4":     15 * time.Second,
		"typical.mp4": 59 * time.Second,
		"max.mp4":     60 * time.Second,
		"long.mp4":    61 * time.Second,
	}
	prober := media.ProbeFunc(func(_ context.Context, f storage.File) (time.Duration, error) {
		return durations[f.Name], nil
	})
	constraints := Constraints{
		MaxFiles:    1,
		File:        validation.VideoConstraints,
		MinDuration: 15 * time.Second,
		MaxDuration: 60 * time.Second,
	}

	tests := []struct {
		file   string
		accept bool
	}{
		{"short.mp4", false},
		{"min.mp4", true},
		{"typical.mp4", true},
		{"max.mp4", true},
		{"long.mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			o := newTestOrchestrator(t, prober)
			tr := &fakeTransport{}

			_, err := o.Submit(context.Background(), Batch{
				Files:     []storage.File{storage.FromBytes(tt.file, mp4Header)},
				Transport: tr,
			}, constraints)

			if tt.accept {
				require.NoError(t, err)
				assert.Len(t, tr.sentNames(), 1)
				return
			}
			require.Error(t, err)
			assert.True(t, validation.IsValidation(err))
			assert.Empty(t, tr.sentNames())
		})
	}
}

func TestSubmitUnreadableDuration(t *testing.T) {
	prober := media.ProbeFunc(func(context.Context, storage.File) (time.Duration, error) {
		return 0, media.ErrNoDuration
	})
	o := newTestOrchestrator(t, prober)

	_, err := o.Submit(context.Background(), Batch{
		Files:     []storage.File{storage.FromBytes("clip.mp4", mp4Header)},
		Transport: &fakeTransport{},
	}, Constraints{MaxFiles: 1, File: validation.VideoConstraints, MinDuration: time.Second})

	assert.True(t, validation.IsValidation(err))
}

func TestSubmitCallerValidationRunsFirst(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	tr := &fakeTransport{}

	_, err := o.Submit(context.Background(), Batch{
		Files:     images(1),
		Transport: tr,
		Validate: func() error {
			return validation.ValidateName("", 100)
		},
	}, imageConstraints)

	assert.True(t, validation.IsValidation(err))
	assert.Empty(t, tr.sentNames())
}

func TestSubmitStopsAtFirstFailure(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	transportErr := &storage.TransportError{Op: "upload", Path: "x", StatusCode: 500, Body: "boom"}
	tr := &fakeTransport{failOn: map[string]error{"img01.png": transportErr}}
	commits := &commitLog{}
	refreshed := false

	res, err := o.Submit(context.Background(), Batch{
		Files:     images(3),
		Transport: tr,
		Commit:    commits.commit,
		OnDone:    func() { refreshed = true },
	}, imageConstraints)

	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "img01.png", uerr.File)
	assert.Equal(t, 1, uerr.Index)

	var terr *storage.TransportError
	require.ErrorAs(t, err, &terr)

	require.NotNil(t, res)
	assert.Equal(t, 1, res.Committed)
	assert.Len(t, commits.tasks, 1)
	assert.Equal(t, []string{"img00.png", "img01.png"}, tr.sentNames())
	assert.Equal(t, StateCompleted, res.Tasks[0].State)
	assert.Equal(t, StateFailed, res.Tasks[1].State)
	assert.Equal(t, StateQueued, res.Tasks[2].State)
	assert.Equal(t, 25, res.Tasks[1].Progress)
	assert.True(t, refreshed)
}

func TestSubmitCommitFailureRemovesObject(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	tr := &fakeTransport{}
	commits := &commitLog{fail: errors.New("database is locked")}

	res, err := o.Submit(context.Background(), Batch{
		Files:     images(2),
		Transport: tr,
		Commit:    commits.commit,
	}, imageConstraints)

	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 0, uerr.Index)
	assert.Equal(t, 0, res.Committed)
	assert.Equal(t, []string{"1700000000000-img00.png"}, tr.removed)
	assert.Equal(t, []string{"img00.png"}, tr.sentNames())
}

func TestSubmitAfterClose(t *testing.T) {
	o := New(nil)
	o.Close()

	_, err := o.Submit(context.Background(), Batch{
		Files:     images(1),
		Transport: &fakeTransport{},
	}, imageConstraints)

	require.ErrorIs(t, err, ErrClosed)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "wedding-day.jpg", sanitizeName("wedding day.jpg"))
	assert.Equal(t, "passwd", sanitizeName("../../etc/passwd"))
	assert.Equal(t, "file", sanitizeName("   "))
	assert.Equal(t, "1700000000000-IMG_0042.JPG", destPath(1700000000000, "IMG_0042.JPG"))
}
