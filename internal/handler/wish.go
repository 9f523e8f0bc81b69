package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/vows/internal/listview"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/ui"
	"github.com/templui/vows/internal/validation"
)

// Form fields are small; anything past this in memory spills to disk
const multipartMemory = 32 << 20

type WishHandler struct {
	wishService *service.WishService
	maxBody     int64
}

// NewWishHandler caps request bodies at maxVideoSize plus room for the text fields.
func NewWishHandler(wishService *service.WishService, maxVideoSize int64) *WishHandler {
	return &WishHandler{
		wishService: wishService,
		maxBody:     maxVideoSize + 1<<20,
	}
}

type wishPage struct {
	Wishes  []model.Wish `json:"wishes"`
	Total   int          `json:"total"`
	HasMore bool         `json:"has_more"`
}

// ListWishes serves approved wishes. q filters by guest name; count is how
// many the client already shows, rounded up to whole pages.
func (h *WishHandler) ListWishes(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.wishService.Approved(r.Context())
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	list := listview.NewWishList(listview.PageSize)
	list.SetCollection(wishes)
	list.SetText(r.URL.Query().Get("q"))
	list.Reveal(queryInt(r, "count", 0))

	ui.JSON(w, http.StatusOK, wishPage{
		Wishes:  nonNil(list.Visible()),
		Total:   len(list.Matches()),
		HasMore: list.HasMore(),
	})
}

// MaxBody is the largest request SubmitWish accepts.
func (h *WishHandler) MaxBody() int64 {
	return h.maxBody
}

// SubmitWish accepts a multipart form with name, message and an optional
// video file.
func (h *WishHandler) SubmitWish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ui.Error(w, r, validation.Errorf("video", "the video is too large"))
			return
		}
		ui.Error(w, r, validation.Errorf("form", "could not read the form"))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	sub := service.Submission{
		Name:    r.FormValue("name"),
		Message: r.FormValue("message"),
	}
	if r.MultipartForm != nil {
		headers := r.MultipartForm.File["video"]
		if len(headers) > 1 {
			ui.Error(w, r, validation.Errorf("video", "only one video per wish"))
			return
		}
		if len(headers) == 1 {
			video := storage.FromMultipart(headers[0])
			sub.Video = &video
		}
	}

	wish, err := h.wishService.Submit(r.Context(), sub)
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	slog.Info("wish received", "wish_id", wish.ID)
	ui.JSON(w, http.StatusCreated, wish)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
