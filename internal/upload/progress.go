package upload

import (
	"sync"
)

// tracker folds per-file fractions into one batch percentage.
// Transports may report from their own goroutine, hence the lock.
type tracker struct {
	mu         sync.Mutex
	tasks      []Task
	completed  int
	last       int
	onProgress func(int)
	onTask     func(Task)
}

func newTracker(tasks []Task, onProgress func(int), onTask func(Task)) *tracker {
	return &tracker{tasks: tasks, onProgress: onProgress, onTask: onTask}
}

func (t *tracker) start(i int) {
	t.mu.Lock()
	t.tasks[i].State = StateUploading
	task := t.tasks[i]
	t.mu.Unlock()
	t.emitTask(task)
}

func (t *tracker) advance(i int, fraction float64) {
	t.mu.Lock()
	pct := int(fraction * 100)
	task := &t.tasks[i]
	changed := pct > task.Progress
	if changed {
		task.Progress = pct
	}
	overall := t.overallLocked(fraction)
	snapshot := *task
	t.mu.Unlock()

	if changed {
		t.emitTask(snapshot)
	}
	t.emitOverall(overall)
}

func (t *tracker) complete(i int, url string) {
	t.mu.Lock()
	task := &t.tasks[i]
	task.State = StateCompleted
	task.Progress = 100
	task.URL = url
	t.completed++
	overall := t.overallLocked(0)
	snapshot := *task
	t.mu.Unlock()

	t.emitTask(snapshot)
	t.emitOverall(overall)
}

func (t *tracker) fail(i int, err error) {
	t.mu.Lock()
	t.tasks[i].State = StateFailed
	t.tasks[i].Err = err
	snapshot := t.tasks[i]
	t.mu.Unlock()
	t.emitTask(snapshot)
}

// overallLocked returns -1 when the percentage did not move forward.
func (t *tracker) overallLocked(inFlight float64) int {
	total := len(t.tasks)
	if total == 0 {
		return -1
	}
	pct := int((float64(t.completed) + inFlight) / float64(total) * 100)
	if pct > 100 {
		pct = 100
	}
	if pct <= t.last {
		return -1
	}
	t.last = pct
	return pct
}

func (t *tracker) emitOverall(pct int) {
	if pct >= 0 && t.onProgress != nil {
		t.onProgress(pct)
	}
}

func (t *tracker) emitTask(task Task) {
	if t.onTask != nil {
		t.onTask(task)
	}
}

func (t *tracker) result() *Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &Result{
		Tasks:     append([]Task(nil), t.tasks...),
		Committed: t.completed,
	}
}
