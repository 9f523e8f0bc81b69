package service

import (
	"context"

	"github.com/templui/vows/internal/repository"
)

type Stats struct {
	TotalWishes    int `json:"total_wishes"`
	PendingWishes  int `json:"pending_wishes"`
	FeaturedWishes int `json:"featured_wishes"`
	GalleryImages  int `json:"gallery_images"`
}

type DashboardService struct {
	wishRepository    repository.WishRepository
	galleryRepository repository.GalleryRepository
}

func NewDashboardService(wishRepository repository.WishRepository, galleryRepository repository.GalleryRepository) *DashboardService {
	return &DashboardService{
		wishRepository:    wishRepository,
		galleryRepository: galleryRepository,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var err error

	stats.TotalWishes, err = s.wishRepository.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.PendingWishes, err = s.wishRepository.Count(ctx, repository.Eq("is_approved", false))
	if err != nil {
		return nil, err
	}
	stats.FeaturedWishes, err = s.wishRepository.Count(ctx, repository.Eq("is_featured", true))
	if err != nil {
		return nil, err
	}
	stats.GalleryImages, err = s.galleryRepository.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
