package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/vows/internal/db"
	"github.com/templui/vows/internal/media"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/repository"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
	"github.com/templui/vows/internal/validation"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom")
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    []string
	removed []string
	failOn  string
}

func (f *fakeTransport) Send(_ context.Context, file storage.File, path, _ string, onProgress storage.ProgressFunc) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, file.Name)
	if file.Name == f.failOn {
		return "", &storage.TransportError{Op: "upload", Path: path, StatusCode: 503, Body: "unavailable"}
	}
	onProgress(1)
	return "https://cdn.example.com/" + path, nil
}

func (f *fakeTransport) Remove(_ context.Context, path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

type fixture struct {
	wishes    repository.WishRepository
	gallery   repository.GalleryRepository
	transport *fakeTransport
	wish      *WishService
	images    *GalleryService
	dashboard *DashboardService
	auth      *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Init(ctx, "sqlite", filepath.Join(t.TempDir(), "vows.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.RunMigrations(ctx, conn.DB, "sqlite"))

	prober := media.ProbeFunc(func(context.Context, storage.File) (time.Duration, error) {
		return 30 * time.Second, nil
	})
	uploads := upload.New(prober)
	t.Cleanup(uploads.Close)

	f := &fixture{
		wishes:    repository.NewWishRepository(conn),
		gallery:   repository.NewGalleryRepository(conn),
		transport: &fakeTransport{},
	}
	email := NewEmailService("", "noreply@example.com", "couple@example.com", "http://localhost:8090", "Vows", true)

	f.wish = NewWishService(f.wishes, uploads, f.transport, email, WishLimits{
		NameMax:      100,
		MessageMax:   200,
		MaxVideoSize: 150 << 20,
		MinDuration:  15 * time.Second,
		MaxDuration:  60 * time.Second,
	})
	f.images = NewGalleryService(f.gallery, uploads, f.transport, "service-key", GalleryLimits{
		MaxImages:    20,
		MaxImageSize: 20 << 20,
	})
	f.dashboard = NewDashboardService(f.wishes, f.gallery)
	f.auth = NewAuthService(repository.NewUserRepository(conn), repository.NewAdminRepository(conn), "test-secret", time.Hour, false)
	return f
}

func TestSubmitWishWithoutVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.wish.Submit(ctx, Submission{Name: "  Alice ", Message: "Congratulations!"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", w.Name)
	assert.False(t, w.IsApproved)
	assert.False(t, w.HasVideo())

	approved, err := f.wish.Approved(ctx)
	require.NoError(t, err)
	assert.Empty(t, approved)

	all, err := f.wish.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmitWishValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.wish.Submit(ctx, Submission{Name: "", Message: "hi"})
	assert.True(t, validation.IsValidation(err))

	long := make([]rune, 201)
	for i := range long {
		long[i] = 'x'
	}
	video := storage.FromBytes("clip.mp4", mp4Header)
	_, err = f.wish.Submit(ctx, Submission{Name: "Bob", Message: string(long), Video: &video})
	assert.True(t, validation.IsValidation(err))

	// Nothing reached storage or the table
	assert.Empty(t, f.transport.sent)
	n, err := f.wishes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitWishWithVideo(t *testing.T) {
	f := newFixture(t)
	video := storage.FromBytes("our toast.mp4", mp4Header)

	w, err := f.wish.Submit(context.Background(), Submission{Name: "Carol", Message: "Cheers", Video: &video})
	require.NoError(t, err)
	require.True(t, w.HasVideo())
	assert.Contains(t, *w.VideoURL, "our-toast.mp4")
	assert.Equal(t, []string{"our toast.mp4"}, f.transport.sent)
}

func TestSubmitWishVideoFailure(t *testing.T) {
	f := newFixture(t)
	f.transport.failOn = "clip.mp4"
	video := storage.FromBytes("clip.mp4", mp4Header)

	_, err := f.wish.Submit(context.Background(), Submission{Name: "Dan", Message: "Hi", Video: &video})
	var terr *storage.TransportError
	require.ErrorAs(t, err, &terr)

	n, err := f.wishes.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestModerateWish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w, err := f.wish.Submit(ctx, Submission{Name: "Erin", Message: "Love you both"})
	require.NoError(t, err)

	_, err = f.wish.Moderate(ctx, w.ID, moderation.Feature)
	require.ErrorIs(t, err, moderation.ErrNotApproved)
	got, err := f.wish.ByID(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFeatured)

	got, err = f.wish.Moderate(ctx, w.ID, moderation.Approve)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	got, err = f.wish.Moderate(ctx, w.ID, moderation.Feature)
	require.NoError(t, err)
	assert.True(t, got.IsFeatured)

	featured, err := f.wish.Featured(ctx, FeaturedWishes)
	require.NoError(t, err)
	require.Len(t, featured, 1)

	// Revoking a featured wish clears both flags
	got, err = f.wish.Moderate(ctx, w.ID, moderation.Revoke)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)
	assert.False(t, got.IsFeatured)

	require.NoError(t, f.wish.Delete(ctx, w.ID))
	_, err = f.wish.Moderate(ctx, w.ID, moderation.Approve)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func imageFiles(n int) []storage.File {
	files := make([]storage.File, n)
	for i := range files {
		files[i] = storage.FromBytes(fmt.Sprintf("photo%d.png", i), pngHeader)
	}
	return files
}

func TestGalleryUploadPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.transport.failOn = "photo1.png"
	ctx := context.Background()

	var percents []int
	up, err := f.images.Upload(ctx, imageFiles(3), UploadOptions{
		OnProgress: func(p int) { percents = append(percents, p) },
	})
	created := up.Images

	var uerr *upload.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 1, uerr.Index)
	assert.Equal(t, 1, up.Batch.Committed)
	require.Len(t, created, 1)
	assert.NotNil(t, created[0].StoragePath)
	assert.NotEmpty(t, percents)

	n, err := f.images.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGalleryUploadTooMany(t *testing.T) {
	f := newFixture(t)

	_, err := f.images.Upload(context.Background(), imageFiles(21), UploadOptions{})
	assert.True(t, validation.IsValidation(err))
	assert.Empty(t, f.transport.sent)
}

func TestGalleryFeatureAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	up, err := f.images.Upload(ctx, imageFiles(2), UploadOptions{})
	require.NoError(t, err)
	created := up.Images
	require.Len(t, created, 2)

	_, err = f.images.SetFeatured(ctx, created[0].ID, moderation.Approve)
	require.ErrorIs(t, err, moderation.ErrUnsupportedAction)

	img, err := f.images.SetFeatured(ctx, created[0].ID, moderation.Feature)
	require.NoError(t, err)
	assert.True(t, img.IsFeatured)

	featured, err := f.images.Featured(ctx, FeaturedImages)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	require.NoError(t, f.images.Delete(ctx, created[0].ID))
	assert.Equal(t, []string{*created[0].StoragePath}, f.transport.removed)

	page, err := f.images.Page(ctx, 0, 30)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, created[1].ID, page[0].ID)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := f.wish.Submit(ctx, Submission{Name: name, Message: "hi"})
		require.NoError(t, err)
	}
	all, err := f.wish.All(ctx)
	require.NoError(t, err)
	_, err = f.wish.Moderate(ctx, all[0].ID, moderation.Approve)
	require.NoError(t, err)
	_, err = f.wish.Moderate(ctx, all[0].ID, moderation.Feature)
	require.NoError(t, err)
	_, err = f.images.Upload(ctx, imageFiles(2), UploadOptions{})
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalWishes: 3, PendingWishes: 2, FeaturedWishes: 1, GalleryImages: 2}, stats)
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.CreateAdmin(ctx, "Couple@Example.com", "Tr0ub4dor&3-horse")
	require.NoError(t, err)

	user, err := f.auth.Login(ctx, "couple@example.com", "Tr0ub4dor&3-horse")
	require.NoError(t, err)

	token, expiry, err := f.auth.GenerateJWT(user)
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	got, err := f.auth.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.auth.Login(ctx, "couple@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.UserFromToken(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := f.auth.HashPassword("Tr0ub4dor&3-horse")
	require.NoError(t, err)
	require.NoError(t, f.auth.userRepository.Create(ctx, &model.User{Email: "guest@example.com", PasswordHash: &hash}))

	_, err = f.auth.Login(ctx, "guest@example.com", "Tr0ub4dor&3-horse")
	require.True(t, errors.Is(err, ErrNotAdmin))
}
