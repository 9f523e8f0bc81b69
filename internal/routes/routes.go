package routes

import (
	"net/http"

	"github.com/templui/vows/internal/app"
	"github.com/templui/vows/internal/handler"
	"github.com/templui/vows/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.WishService, app.GalleryService)
	health := handler.NewHealthHandler(app.DB)
	wishes := handler.NewWishHandler(app.WishService, app.Cfg.UploadMaxVideoSize)
	gallery := handler.NewGalleryHandler(app.GalleryService)
	admin := handler.NewAdminHandler(
		app.AuthService,
		app.WishService,
		app.GalleryService,
		app.DashboardService,
		app.Cfg.UploadMaxImages,
		app.Cfg.UploadMaxImageSize,
	)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /{$}", home.HomePage)

	// Wishes (submission rate limited)
	submitLimit := middleware.RateLimit(app.SubmissionLimiter)
	mux.HandleFunc("GET /wishes", wishes.ListWishes)
	mux.HandleFunc("POST /wishes", submitLimit(wishes.SubmitWish))

	// Gallery
	mux.HandleFunc("GET /gallery", gallery.ListImages)

	// ============================================================================
	// ADMIN AUTH
	// ============================================================================

	loginLimit := middleware.RateLimit(app.LoginLimiter)
	mux.HandleFunc("GET /admin/login", middleware.RequireGuest(admin.LoginPage))
	mux.HandleFunc("POST /admin/login", loginLimit(middleware.RequireGuest(admin.Login)))
	mux.HandleFunc("POST /admin/logout", admin.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/admin/*)
	// ============================================================================

	mux.HandleFunc("GET /admin", middleware.RequireAdmin(admin.Dashboard))

	// Wish moderation
	mux.HandleFunc("GET /admin/wishes", middleware.RequireAdmin(admin.ListWishes))
	mux.HandleFunc("POST /admin/wishes/{id}/{action}", middleware.RequireAdmin(admin.ModerateWish))
	mux.HandleFunc("DELETE /admin/wishes/{id}", middleware.RequireAdmin(admin.DeleteWish))

	// Gallery management
	mux.HandleFunc("GET /admin/gallery", middleware.RequireAdmin(admin.ListImages))
	mux.HandleFunc("POST /admin/gallery", middleware.RequireAdmin(admin.UploadImages))
	mux.HandleFunc("POST /admin/gallery/{id}/{action}", middleware.RequireAdmin(admin.FeatureImage))
	mux.HandleFunc("DELETE /admin/gallery/{id}", middleware.RequireAdmin(admin.DeleteImage))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (CSRF reads the cookie policy from it)
		middleware.RequestLogging,
		middleware.LimitBody(middleware.BodyLimits{
			"POST /wishes":        wishes.MaxBody(),
			"POST /admin/gallery": admin.MaxUploadBody(),
		}),
		middleware.CSRFProtection, // Reads the form, so the body is capped before it

		middleware.AuthMiddleware(app.AuthService),
		middleware.WithURLPath,
	)

	return handler
}
