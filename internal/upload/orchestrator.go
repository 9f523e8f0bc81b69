// Package upload validates batches of media files and pushes them through a
// storage transport one file at a time.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/templui/vows/internal/media"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/validation"
)

// Constraints bound a batch. Zero durations skip the probe.
type Constraints struct {
	MaxFiles    int
	File        validation.FileConstraints
	MinDuration time.Duration
	MaxDuration time.Duration
}

func (c Constraints) probes() bool {
	return c.MinDuration > 0 || c.MaxDuration > 0
}

// Batch is one submission. Commit writes the record for an uploaded file;
// OnProgress and OnTask may be called from a transport goroutine.
type Batch struct {
	Files      []storage.File
	Transport  storage.Transport
	Token      string
	Validate   func() error
	Commit     func(ctx context.Context, t Task) error
	OnProgress func(percent int)
	OnTask     func(t Task)
	OnDone     func()
}

// Orchestrator owns a single worker goroutine. Every task of every batch in
// the process goes through it, so uploads never overlap.
type Orchestrator struct {
	prober media.Prober
	now    func() time.Time

	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

type job struct {
	run  func() error
	done chan error
}

func New(prober media.Prober) *Orchestrator {
	o := &Orchestrator{
		prober: prober,
		now:    time.Now,
		jobs:   make(chan job),
		quit:   make(chan struct{}),
	}
	o.wg.Add(1)
	go o.loop()
	return o
}

func (o *Orchestrator) loop() {
	defer o.wg.Done()
	for {
		select {
		case j := <-o.jobs:
			j.done <- j.run()
		case <-o.quit:
			return
		}
	}
}

// Close stops the worker after the task in flight, if any.
func (o *Orchestrator) Close() {
	o.once.Do(func() {
		close(o.quit)
	})
	o.wg.Wait()
}

// enqueue hands fn to the worker and waits for it. Once the worker has
// picked it up, the task runs to completion.
func (o *Orchestrator) enqueue(ctx context.Context, fn func() error) error {
	j := job{run: fn, done: make(chan error, 1)}
	select {
	case <-o.quit:
		return ErrClosed
	default:
	}
	select {
	case o.jobs <- j:
	case <-o.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.done
}

// Submit validates the whole batch, then uploads and commits file by file.
// The first failure stops the batch: files already committed stay, later
// files are not attempted, and the partial Result comes back with an *Error.
func (o *Orchestrator) Submit(ctx context.Context, b Batch, c Constraints) (*Result, error) {
	files, err := o.validate(ctx, b, c)
	if err != nil {
		return nil, err
	}
	if b.Transport == nil {
		return nil, errors.New("upload batch has no transport")
	}

	stamp := o.now().UnixMilli()
	tasks := make([]Task, len(files))
	for i, f := range files {
		tasks[i] = Task{
			Index: i,
			File:  f,
			Path:  destPath(stamp+int64(i), f.Name),
			State: StateQueued,
		}
	}
	tr := newTracker(tasks, b.OnProgress, b.OnTask)

	// In-flight transfers outlive the caller, like a browser tab closing mid-upload
	sendCtx := context.WithoutCancel(ctx)

	var failure error
	for i := range tasks {
		task := tasks[i]
		err := o.enqueue(ctx, func() error {
			return o.process(sendCtx, b, tr, task)
		})
		if err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, ctx.Err()) {
				tr.fail(i, err)
			}
			failure = &Error{File: task.File.Name, Index: i, Err: err}
			break
		}
	}

	res := tr.result()
	if res.Committed > 0 && b.OnDone != nil {
		b.OnDone()
	}
	if failure != nil {
		slog.Warn("upload batch stopped", "error", failure, "committed", res.Committed, "total", len(tasks))
		return res, failure
	}

	slog.Info("upload batch completed", "files", len(tasks))
	return res, nil
}

func (o *Orchestrator) process(ctx context.Context, b Batch, tr *tracker, task Task) error {
	tr.start(task.Index)

	url, err := b.Transport.Send(ctx, task.File, task.Path, b.Token, func(fraction float64) {
		tr.advance(task.Index, fraction)
	})
	if err != nil {
		tr.fail(task.Index, err)
		return err
	}

	task.URL = url
	if b.Commit != nil {
		err = b.Commit(ctx, task)
		if err != nil {
			tr.fail(task.Index, err)
			o.discard(ctx, b, task)
			return err
		}
	}

	tr.complete(task.Index, url)
	return nil
}

// discard removes an object whose record could not be written.
func (o *Orchestrator) discard(ctx context.Context, b Batch, task Task) {
	remover, ok := b.Transport.(storage.Remover)
	if !ok {
		return
	}
	err := remover.Remove(ctx, task.Path, b.Token)
	if err != nil {
		slog.Error("failed to remove orphaned upload", "error", err, "path", task.Path)
	}
}

// validate runs every check before the first byte leaves the process.
func (o *Orchestrator) validate(ctx context.Context, b Batch, c Constraints) ([]storage.File, error) {
	if b.Validate != nil {
		err := b.Validate()
		if err != nil {
			return nil, err
		}
	}

	if len(b.Files) == 0 {
		return nil, validation.Errorf("files", "at least one file is required")
	}
	if c.MaxFiles > 0 && len(b.Files) > c.MaxFiles {
		return nil, validation.Errorf("files", "too many files: %d selected, maximum is %d", len(b.Files), c.MaxFiles)
	}

	files := make([]storage.File, len(b.Files))
	for i, f := range b.Files {
		mimeType, err := sniff(f, c.File)
		if err != nil {
			return nil, err
		}
		f.ContentType = mimeType

		if c.probes() {
			err = o.checkDuration(ctx, f, c)
			if err != nil {
				return nil, err
			}
		}
		files[i] = f
	}

	return files, nil
}

func sniff(f storage.File, c validation.FileConstraints) (string, error) {
	if f.Open == nil {
		return "", validation.Errorf("file", "%s has no content", f.Name)
	}
	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = r.Close() }()

	return validation.ValidateFile(f.Name, f.Size, r, c)
}

// checkDuration treats both bounds as inclusive.
func (o *Orchestrator) checkDuration(ctx context.Context, f storage.File, c Constraints) error {
	if o.prober == nil {
		return errors.New("duration limits set but no prober configured")
	}

	d, err := o.prober.Duration(ctx, f)
	if err != nil {
		slog.Warn("failed to probe video", "error", err, "file", f.Name)
		return validation.Errorf("video", "could not read the length of %s", f.Name)
	}

	if c.MinDuration > 0 && d < c.MinDuration {
		return validation.Errorf("video", "%s is %s long, minimum is %s", f.Name, d.Round(time.Second), c.MinDuration)
	}
	if c.MaxDuration > 0 && d > c.MaxDuration {
		return validation.Errorf("video", "%s is %s long, maximum is %s", f.Name, d.Round(time.Second), c.MaxDuration)
	}

	return nil
}
