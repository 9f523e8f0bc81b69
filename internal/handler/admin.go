package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/vows/internal/ctxkeys"
	"github.com/templui/vows/internal/listview"
	"github.com/templui/vows/internal/middleware"
	"github.com/templui/vows/internal/model"
	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/ui"
	"github.com/templui/vows/internal/validation"
)

type AdminHandler struct {
	authService      *service.AuthService
	wishService      *service.WishService
	galleryService   *service.GalleryService
	dashboardService *service.DashboardService
	maxUploadBody    int64
}

func NewAdminHandler(
	authService *service.AuthService,
	wishService *service.WishService,
	galleryService *service.GalleryService,
	dashboardService *service.DashboardService,
	maxImages int,
	maxImageSize int64,
) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		wishService:      wishService,
		galleryService:   galleryService,
		dashboardService: dashboardService,
		maxUploadBody:    int64(maxImages)*maxImageSize + 1<<20,
	}
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.JSON(w, http.StatusOK, map[string]string{
		"csrf_token": ctxkeys.CSRFToken(r.Context()),
	})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	if email == "" || password == "" {
		ui.Error(w, r, validation.Errorf("email", "email and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrNotAdmin) {
			slog.Warn("login by non-admin", "email", email)
		}
		ui.Error(w, r, err)
		return
	}

	token, expiry, err := h.authService.GenerateJWT(user)
	if err != nil {
		ui.Error(w, r, err)
		return
	}
	h.authService.SetJWTCookie(w, token, expiry)

	slog.Info("admin logged in", "user_id", user.ID)
	ui.Redirect(w, r, middleware.AdminHome)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	ui.Redirect(w, r, "/")
}

type dashboardPage struct {
	Email string         `json:"email"`
	Stats *service.Stats `json:"stats"`
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	ui.JSON(w, http.StatusOK, dashboardPage{
		Email: ctxkeys.User(r.Context()).Email,
		Stats: stats,
	})
}

type adminWishPage struct {
	wishPage
	Filter listview.Category `json:"filter"`
}

// ListWishes serves every wish for moderation, filtered by q and filter.
func (h *AdminHandler) ListWishes(w http.ResponseWriter, r *http.Request) {
	category, err := listview.ParseCategory(r.URL.Query().Get("filter"))
	if err != nil {
		ui.Error(w, r, validation.Errorf("filter", "%v", err))
		return
	}

	wishes, err := h.wishService.All(r.Context())
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	list := listview.NewWishList(listview.PageSize)
	list.SetCollection(wishes)
	list.SetText(r.URL.Query().Get("q"))
	list.SetCategory(category)
	list.Reveal(queryInt(r, "count", 0))

	ui.JSON(w, http.StatusOK, adminWishPage{
		wishPage: wishPage{
			Wishes:  nonNil(list.Visible()),
			Total:   len(list.Matches()),
			HasMore: list.HasMore(),
		},
		Filter: category,
	})
}

// ModerateWish applies the action in the path: approve, revoke, feature or unfeature.
func (h *AdminHandler) ModerateWish(w http.ResponseWriter, r *http.Request) {
	action, err := moderation.ParseAction(r.PathValue("action"))
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	wish, err := h.wishService.Moderate(r.Context(), r.PathValue("id"), action)
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	ui.JSON(w, http.StatusOK, wish)
}

func (h *AdminHandler) DeleteWish(w http.ResponseWriter, r *http.Request) {
	err := h.wishService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		ui.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	NewGalleryHandler(h.galleryService).ListImages(w, r)
}

type uploadResponse struct {
	Images []model.GalleryImage `json:"images"`
	Batch  *ui.BatchStatus      `json:"batch"`
}

// MaxUploadBody is the largest request UploadImages accepts.
func (h *AdminHandler) MaxUploadBody() int64 {
	return h.maxUploadBody
}

// UploadImages stores every file of the "images" field. If one fails, the
// ones before it are kept and reported next to the error.
func (h *AdminHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBody)

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ui.Error(w, r, validation.Errorf("images", "the selected images are too large"))
			return
		}
		ui.Error(w, r, validation.Errorf("images", "could not read the upload"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["images"]
	files := make([]storage.File, len(headers))
	for i, fh := range headers {
		files[i] = storage.FromMultipart(fh)
	}

	up, err := h.galleryService.Upload(r.Context(), files, service.UploadOptions{})
	if err != nil {
		if up != nil && up.Batch != nil {
			ui.ErrorWithResult(w, r, err, uploadResponse{Images: nonNil(up.Images), Batch: ui.Batch(up.Batch)})
			return
		}
		ui.Error(w, r, err)
		return
	}

	ui.JSON(w, http.StatusCreated, uploadResponse{Images: nonNil(up.Images), Batch: ui.Batch(up.Batch)})
}

func (h *AdminHandler) FeatureImage(w http.ResponseWriter, r *http.Request) {
	action, err := moderation.ParseAction(r.PathValue("action"))
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	img, err := h.galleryService.SetFeatured(r.Context(), r.PathValue("id"), action)
	if err != nil {
		ui.Error(w, r, err)
		return
	}

	ui.JSON(w, http.StatusOK, img)
}

func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	err := h.galleryService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		ui.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
