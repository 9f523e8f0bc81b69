package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/vows/internal/ctxkeys"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/ui"
)

type HomeHandler struct {
	wishService    *service.WishService
	galleryService *service.GalleryService
}

func NewHomeHandler(wishService *service.WishService, galleryService *service.GalleryService) *HomeHandler {
	return &HomeHandler{
		wishService:    wishService,
		galleryService: galleryService,
	}
}

type homePage struct {
	AppName        string               `json:"app_name"`
	FeaturedWishes []model.Wish         `json:"featured_wishes"`
	FeaturedImages []model.GalleryImage `json:"featured_images"`
	Limits         *uploadLimits        `json:"limits,omitempty"`
}

type uploadLimits struct {
	NameMax          int   `json:"name_max"`
	MessageMax       int   `json:"message_max"`
	MaxVideoSize     int64 `json:"max_video_size"`
	MinVideoDuration int   `json:"min_video_seconds"`
	MaxVideoDuration int   `json:"max_video_seconds"`
}

func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	page := homePage{}

	cfg := ctxkeys.Config(r.Context())
	if cfg != nil {
		page.AppName = cfg.AppName
		page.Limits = &uploadLimits{
			NameMax:          cfg.WishNameMax,
			MessageMax:       cfg.WishMessageMax,
			MaxVideoSize:     cfg.UploadMaxVideoSize,
			MinVideoDuration: int(cfg.VideoMinDuration.Seconds()),
			MaxVideoDuration: int(cfg.VideoMaxDuration.Seconds()),
		}
	}

	var err error
	page.FeaturedWishes, err = h.wishService.Featured(r.Context(), service.FeaturedWishes)
	if err != nil {
		// The home page still renders without its highlights
		slog.Error("failed to load featured wishes", "error", err)
		page.FeaturedWishes = []model.Wish{}
	}

	page.FeaturedImages, err = h.galleryService.Featured(r.Context(), service.FeaturedImages)
	if err != nil {
		slog.Error("failed to load featured images", "error", err)
		page.FeaturedImages = []model.GalleryImage{}
	}

	ui.JSON(w, http.StatusOK, page)
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.JSON(w, http.StatusNotFound, ui.ErrorBody{Error: "Page not found"})
}
