package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/vows/internal/listview"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/repository"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
)

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, email, password string) (*model.User, error) {
	if password != "correct horse battery" {
		return nil, fmt.Errorf("invalid credentials: %w", service.ErrInvalidCredentials)
	}
	return &model.User{ID: "u1", Email: email}, nil
}

type fakeWishes struct {
	mu      sync.Mutex
	wishes  []model.Wish
	failNow error
	calls   []moderation.Action
}

func (f *fakeWishes) All(context.Context) ([]model.Wish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Wish(nil), f.wishes...), nil
}

func (f *fakeWishes) Moderate(_ context.Context, id string, action moderation.Action) (*model.Wish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, action)
	if f.failNow != nil {
		return nil, f.failNow
	}
	for i, w := range f.wishes {
		if w.ID != id {
			continue
		}
		to, err := moderation.Next(moderation.StateOf(w.IsApproved, w.IsFeatured), action)
		if err != nil {
			return nil, err
		}
		f.wishes[i].IsApproved, f.wishes[i].IsFeatured = to.Flags()
		out := f.wishes[i]
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeWishes) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range f.wishes {
		if w.ID == id {
			f.wishes = append(f.wishes[:i], f.wishes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeGallery struct {
	images  []model.GalleryImage
	uploads [][]string
}

func (f *fakeGallery) Page(_ context.Context, offset, limit int) ([]model.GalleryImage, error) {
	if offset >= len(f.images) {
		return nil, nil
	}
	return f.images[offset:min(offset+limit, len(f.images))], nil
}

func (f *fakeGallery) SetFeatured(_ context.Context, id string, action moderation.Action) (*model.GalleryImage, error) {
	return nil, errors.New("store unavailable")
}

func (f *fakeGallery) Delete(context.Context, string) error {
	return nil
}

func (f *fakeGallery) Upload(_ context.Context, files []storage.File, opts service.UploadOptions) (*service.Uploaded, error) {
	var names []string
	var images []model.GalleryImage
	for i, file := range files {
		names = append(names, file.Name)
		if opts.OnTask != nil {
			opts.OnTask(upload.Task{Index: i, File: file, State: upload.StateUploading})
		}
		if opts.OnProgress != nil {
			opts.OnProgress((i + 1) * 100 / len(files))
		}
		images = append(images, model.GalleryImage{ID: file.Name, ImageURL: "https://cdn/" + file.Name, CreatedAt: time.Now()})
	}
	f.uploads = append(f.uploads, names)
	return &service.Uploaded{Images: images}, nil
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestWishes(ws ...model.Wish) (*wishesModel, *fakeWishes) {
	svc := &fakeWishes{wishes: ws}
	w := newWishesModel(context.Background(), svc, newKeyMap(), newStyles())
	w.update(w.reload()())
	return w, svc
}

func TestLogin(t *testing.T) {
	l := newLoginModel(context.Background(), fakeAuth{})

	// Empty fields never reach the store
	assert.Nil(t, l.submit())
	assert.NotEmpty(t, l.err)

	l.email.SetValue("couple@example.com")
	l.password.SetValue("nope")
	msg := l.submit()().(loginResultMsg)
	require.Error(t, msg.err)
	l.fail(msg.err)
	assert.Equal(t, "invalid email or password", l.err)
	assert.Empty(t, l.password.Value())
	assert.False(t, l.busy)

	l.password.SetValue("correct horse battery")
	msg = l.submit()().(loginResultMsg)
	require.NoError(t, msg.err)

	m := New(context.Background(), Deps{Auth: fakeAuth{}, Wishes: &fakeWishes{}, Gallery: &fakeGallery{}})
	next, _ := m.Update(msg)
	assert.Equal(t, screenMain, next.(Model).screen)
}

func TestTabSwitch(t *testing.T) {
	m := New(context.Background(), Deps{Auth: fakeAuth{}, Wishes: &fakeWishes{}, Gallery: &fakeGallery{}})
	m.screen = screenMain

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabGallery, next.(Model).tab)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabWishes, next.(Model).tab)
}

func TestWishesOptimisticModeration(t *testing.T) {
	w, svc := newTestWishes(
		model.Wish{ID: "1", Name: "Alice", Message: "hi"},
		model.Wish{ID: "2", Name: "Bob", Message: "hi", IsApproved: true},
	)

	// Featuring a pending wish is refused locally
	assert.Nil(t, w.handleKey(keyRune('f')))
	assert.True(t, w.failed)
	assert.Empty(t, svc.calls)

	cmd := w.handleKey(keyRune('a'))
	require.NotNil(t, cmd)
	e, _ := w.list.Entry("1")
	assert.True(t, e.Pending())
	assert.True(t, e.Value.IsApproved)

	// A second action waits for the first to settle
	assert.Nil(t, w.handleKey(keyRune('r')))

	w.update(cmd())
	e, _ = w.list.Entry("1")
	assert.False(t, e.Pending())
	assert.True(t, e.Value.IsApproved)
	assert.Equal(t, []moderation.Action{moderation.Approve}, svc.calls)
}

func TestWishesRollbackOnFailure(t *testing.T) {
	w, svc := newTestWishes(model.Wish{ID: "1", Name: "Alice", Message: "hi", IsApproved: true})
	svc.failNow = errors.New("database is locked")

	cmd := w.handleKey(keyRune('f'))
	require.NotNil(t, cmd)
	e, _ := w.list.Entry("1")
	assert.True(t, e.Value.IsFeatured)

	w.update(cmd())
	e, _ = w.list.Entry("1")
	assert.False(t, e.Pending())
	assert.False(t, e.Value.IsFeatured)
	assert.True(t, w.failed)
}

func TestWishesSearchAndFilter(t *testing.T) {
	var ws []model.Wish
	for i := 0; i < 8; i++ {
		ws = append(ws, model.Wish{ID: fmt.Sprint(i), Name: fmt.Sprintf("Guest %d", i), Message: "hi"})
	}
	ws = append(ws, model.Wish{ID: "z", Name: "Zoë", Message: "hi", IsApproved: true})
	w, _ := newTestWishes(ws...)

	assert.Equal(t, 6, w.list.VisibleCount())
	w.handleKey(keyRune('m'))
	assert.Equal(t, 9, w.list.VisibleCount())

	w.handleKey(keyRune('/'))
	require.True(t, w.capturing())
	w.handleKey(keyRune('z'))
	assert.Equal(t, 1, w.list.VisibleCount())
	w.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, w.capturing())
	assert.Equal(t, 6, w.list.VisibleCount())

	w.handleKey(keyRune('c'))
	assert.Equal(t, listview.Approved, w.list.Criteria().Category)
	assert.Equal(t, 1, w.list.VisibleCount())
}

func TestWishesDeleteConfirm(t *testing.T) {
	w, svc := newTestWishes(model.Wish{ID: "1", Name: "Alice", Message: "hi"})

	assert.Nil(t, w.handleKey(keyRune('d')))
	require.True(t, w.capturing())
	assert.Nil(t, w.handleKey(keyRune('n')))
	assert.False(t, w.capturing())

	w.handleKey(keyRune('d'))
	cmd := w.handleKey(keyRune('y'))
	require.NotNil(t, cmd)
	w.update(cmd())

	assert.Zero(t, w.list.Len())
	assert.Empty(t, svc.wishes)
}

func TestGalleryFeatureRollback(t *testing.T) {
	svc := &fakeGallery{images: []model.GalleryImage{{ID: "a", ImageURL: "u", CreatedAt: time.Now()}}}
	g := newGalleryModel(context.Background(), svc, newKeyMap(), newStyles())
	g.update(g.reload()())
	require.Equal(t, 1, g.feed.Len())

	cmd := g.handleKey(keyRune('f'))
	require.NotNil(t, cmd)
	e, _ := g.feed.Entry("a")
	assert.True(t, e.Value.IsFeatured)

	g.update(cmd())
	e, _ = g.feed.Entry("a")
	assert.False(t, e.Value.IsFeatured)
	assert.True(t, g.failed)
}

func TestGalleryStaleLoadIgnored(t *testing.T) {
	svc := &fakeGallery{images: []model.GalleryImage{{ID: "a", ImageURL: "u", CreatedAt: time.Now()}}}
	g := newGalleryModel(context.Background(), svc, newKeyMap(), newStyles())

	stale := g.reload()()
	fresh := g.reload()()
	g.update(stale)
	assert.Zero(t, g.feed.Len())
	g.update(fresh)
	assert.Equal(t, 1, g.feed.Len())
}

func TestGalleryUpload(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"one.png", "two.png"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("\x89PNG\r\n\x1a\n"), 0o644))
		paths = append(paths, p)
	}

	svc := &fakeGallery{}
	g := newGalleryModel(context.Background(), svc, newKeyMap(), newStyles())

	g.handleKey(keyRune('u'))
	require.True(t, g.capturing())
	g.paths.SetValue(paths[0] + " " + paths[1])
	cmd := g.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, g.uploading)

	for cmd != nil {
		msg := cmd()
		if _, done := msg.(uploadDoneMsg); done {
			g.update(msg)
			break
		}
		cmd = g.update(msg)
	}

	assert.False(t, g.uploading)
	assert.False(t, g.failed)
	assert.Equal(t, [][]string{{"one.png", "two.png"}}, svc.uploads)
}

func TestGalleryUploadMissingFile(t *testing.T) {
	g := newGalleryModel(context.Background(), &fakeGallery{}, newKeyMap(), newStyles())

	assert.Nil(t, g.startUpload([]string{"/does/not/exist.jpg"}))
	assert.True(t, g.failed)
	assert.False(t, g.uploading)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "Zoëzoëzo…", truncate("Zoëzoëzoë and more", 9))
}
