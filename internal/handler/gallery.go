package handler

import (
	"net/http"

	"github.com/templui/vows/internal/listview"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/ui"
)

// maxGalleryPage keeps page*GalleryPageSize well inside an int
const maxGalleryPage = 1 << 20

type GalleryHandler struct {
	galleryService *service.GalleryService
}

func NewGalleryHandler(galleryService *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

type galleryPage struct {
	Images  []model.GalleryImage `json:"images"`
	Page    int                  `json:"page"`
	HasMore bool                 `json:"has_more"`
}

// ListImages returns one range of the gallery, newest first. Clients that
// keep earlier pages merge them themselves (see listview.GalleryFeed).
func (h *GalleryHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	page := min(queryInt(r, "page", 0), maxGalleryPage)

	images, err := h.galleryService.Page(r.Context(), page*listview.GalleryPageSize, listview.GalleryPageSize)
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	ui.JSON(w, http.StatusOK, galleryPage{
		Images:  nonNil(images),
		Page:    page,
		HasMore: len(images) == listview.GalleryPageSize,
	})
}
