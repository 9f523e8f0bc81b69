package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/repository"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
	"github.com/templui/vows/internal/validation"
)

// FeaturedImages is how many featured images the home page shows.
const FeaturedImages = 6

type GalleryLimits struct {
	MaxImages    int
	MaxImageSize int64
}

type GalleryService struct {
	galleryRepository repository.GalleryRepository
	uploads           *upload.Orchestrator
	transport         storage.Transport
	token             string
	limits            GalleryLimits
}

func NewGalleryService(
	galleryRepository repository.GalleryRepository,
	uploads *upload.Orchestrator,
	transport storage.Transport,
	token string,
	limits GalleryLimits,
) *GalleryService {
	return &GalleryService{
		galleryRepository: galleryRepository,
		uploads:           uploads,
		transport:         transport,
		token:             token,
		limits:            limits,
	}
}

// UploadOptions carries the caller's progress hooks.
type UploadOptions struct {
	OnProgress func(percent int)
	OnTask     func(t upload.Task)
	OnDone     func()
}

// Uploaded is what a batch left behind, complete or not.
type Uploaded struct {
	Images []model.GalleryImage
	Batch  *upload.Result
}

// Upload stores a batch of images, one record per file. On a failed file the
// images before it stay and are returned alongside the error.
func (s *GalleryService) Upload(ctx context.Context, files []storage.File, opts UploadOptions) (*Uploaded, error) {
	var created []model.GalleryImage

	res, err := s.uploads.Submit(ctx, upload.Batch{
		Files:     files,
		Transport: s.transport,
		Token:     s.token,
		Commit: func(ctx context.Context, t upload.Task) error {
			path := t.Path
			img := &model.GalleryImage{ImageURL: t.URL, StoragePath: &path}
			err := s.galleryRepository.Create(ctx, img)
			if err != nil {
				return err
			}
			created = append(created, *img)
			return nil
		},
		OnProgress: opts.OnProgress,
		OnTask:     opts.OnTask,
		OnDone:     opts.OnDone,
	}, upload.Constraints{
		MaxFiles: s.limits.MaxImages,
		File:     validation.ImageConstraints.WithMaxSize(s.limits.MaxImageSize),
	})

	if len(created) > 0 {
		slog.Info("gallery images uploaded", "count", len(created))
	}
	return &Uploaded{Images: created, Batch: res}, err
}

// Page returns the range [offset, offset+limit), newest first.
func (s *GalleryService) Page(ctx context.Context, offset, limit int) ([]model.GalleryImage, error) {
	rows, err := s.galleryRepository.List(ctx, repository.Query{}.Range(offset, limit))
	if err != nil {
		return nil, err
	}
	return values(rows), nil
}

func (s *GalleryService) Featured(ctx context.Context, limit int) ([]model.GalleryImage, error) {
	q := repository.Query{Limit: limit}.Where(repository.Eq("is_featured", true))
	rows, err := s.galleryRepository.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return values(rows), nil
}

// SetFeatured applies feature or unfeature. Images have no approval step.
func (s *GalleryService) SetFeatured(ctx context.Context, id string, action moderation.Action) (*model.GalleryImage, error) {
	img, err := s.galleryRepository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	featured, err := moderation.NextImage(img.IsFeatured, action)
	if err != nil {
		return nil, err
	}
	if featured == img.IsFeatured {
		return img, nil
	}

	img, err = s.galleryRepository.Update(ctx, id, repository.GalleryPatch{IsFeatured: &featured})
	if err != nil {
		return nil, fmt.Errorf("failed to %s image: %w", action, err)
	}

	slog.Info("gallery image updated", "image_id", id, "featured", featured)
	return img, nil
}

// Delete removes the record, then its stored object on a best-effort basis.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	img, err := s.galleryRepository.ByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.galleryRepository.Delete(ctx, id)
	if err != nil {
		return err
	}

	remover, ok := s.transport.(storage.Remover)
	if ok && img.StoragePath != nil && *img.StoragePath != "" {
		err = remover.Remove(ctx, *img.StoragePath, s.token)
		if err != nil {
			slog.Error("failed to delete image from storage", "error", err, "image_id", id, "path", *img.StoragePath)
		}
	}

	slog.Info("gallery image deleted", "image_id", id)
	return nil
}

func (s *GalleryService) Count(ctx context.Context) (int, error) {
	return s.galleryRepository.Count(ctx)
}
