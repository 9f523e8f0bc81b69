package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/repository"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
	"github.com/templui/vows/internal/validation"
)

// FeaturedWishes is how many featured wishes the home page shows.
const FeaturedWishes = 4

type WishLimits struct {
	NameMax      int
	MessageMax   int
	MaxVideoSize int64
	MinDuration  time.Duration
	MaxDuration  time.Duration
}

// Submission is a guest's wish as it arrives from the form.
type Submission struct {
	Name    string
	Message string
	Video   *storage.File
}

type WishService struct {
	wishRepository repository.WishRepository
	uploads        *upload.Orchestrator
	videoTransport storage.Transport
	emailService   *EmailService
	limits         WishLimits
}

func NewWishService(
	wishRepository repository.WishRepository,
	uploads *upload.Orchestrator,
	videoTransport storage.Transport,
	emailService *EmailService,
	limits WishLimits,
) *WishService {
	return &WishService{
		wishRepository: wishRepository,
		uploads:        uploads,
		videoTransport: videoTransport,
		emailService:   emailService,
		limits:         limits,
	}
}

// Submit stores a new wish awaiting moderation. A video is validated,
// probed and uploaded before the wish is written.
func (s *WishService) Submit(ctx context.Context, sub Submission) (*model.Wish, error) {
	name := strings.TrimSpace(sub.Name)
	message := strings.TrimSpace(sub.Message)
	validate := func() error {
		err := validation.ValidateName(name, s.limits.NameMax)
		if err != nil {
			return err
		}
		return validation.ValidateMessage(message, s.limits.MessageMax)
	}

	// Guests can never approve or feature their own wish
	wish := &model.Wish{Name: name, Message: message}

	if sub.Video == nil {
		err := validate()
		if err != nil {
			return nil, err
		}
		err = s.wishRepository.Create(ctx, wish)
		if err != nil {
			return nil, fmt.Errorf("failed to save wish: %w", err)
		}
	} else {
		_, err := s.uploads.Submit(ctx, upload.Batch{
			Files:     []storage.File{*sub.Video},
			Transport: s.videoTransport,
			Validate:  validate,
			Commit: func(ctx context.Context, t upload.Task) error {
				wish.VideoURL = &t.URL
				return s.wishRepository.Create(ctx, wish)
			},
			OnProgress: func(pct int) {
				slog.Debug("video upload progress", "file", sub.Video.Name, "progress", pct)
			},
		}, s.videoConstraints())
		if err != nil {
			return nil, err
		}
	}

	slog.Info("wish submitted", "wish_id", wish.ID, "video", wish.HasVideo())

	err := s.emailService.NotifyNewWish(ctx, wish)
	if err != nil {
		slog.Warn("failed to notify about new wish", "error", err, "wish_id", wish.ID)
	}

	return wish, nil
}

func (s *WishService) videoConstraints() upload.Constraints {
	return upload.Constraints{
		MaxFiles:    1,
		File:        validation.VideoConstraints.WithMaxSize(s.limits.MaxVideoSize),
		MinDuration: s.limits.MinDuration,
		MaxDuration: s.limits.MaxDuration,
	}
}

// Approved lists every wish visible to guests, newest first.
func (s *WishService) Approved(ctx context.Context) ([]model.Wish, error) {
	return s.list(ctx, repository.Query{}.Where(repository.Eq("is_approved", true)))
}

// Featured lists up to limit approved, featured wishes.
func (s *WishService) Featured(ctx context.Context, limit int) ([]model.Wish, error) {
	q := repository.Query{Limit: limit}.Where(
		repository.Eq("is_approved", true),
		repository.Eq("is_featured", true),
	)
	return s.list(ctx, q)
}

// All lists every wish for moderation.
func (s *WishService) All(ctx context.Context) ([]model.Wish, error) {
	return s.list(ctx, repository.Query{})
}

func (s *WishService) ByID(ctx context.Context, id string) (*model.Wish, error) {
	return s.wishRepository.ByID(ctx, id)
}

// Moderate applies action and writes both flags in one update. A no-op
// transition writes nothing. Concurrent moderators: the last write wins.
func (s *WishService) Moderate(ctx context.Context, id string, action moderation.Action) (*model.Wish, error) {
	wish, err := s.wishRepository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := moderation.StateOf(wish.IsApproved, wish.IsFeatured)
	to, err := moderation.Next(from, action)
	if err != nil {
		return nil, err
	}
	if to == from {
		return wish, nil
	}

	approved, featured := to.Flags()
	wish, err = s.wishRepository.Update(ctx, id, repository.WishPatch{
		IsApproved: &approved,
		IsFeatured: &featured,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to %s wish: %w", action, err)
	}

	slog.Info("wish moderated", "wish_id", id, "action", action, "from", from, "to", to)
	return wish, nil
}

func (s *WishService) Delete(ctx context.Context, id string) error {
	err := s.wishRepository.Delete(ctx, id)
	if err != nil {
		return err
	}

	slog.Info("wish deleted", "wish_id", id)
	return nil
}

func (s *WishService) list(ctx context.Context, q repository.Query) ([]model.Wish, error) {
	rows, err := s.wishRepository.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return values(rows), nil
}

func values[T any](rows []*T) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}
