package middleware

import (
	"log/slog"
	"net/http"

	"github.com/templui/vows/internal/ctxkeys"
	"github.com/templui/vows/internal/service"
)

const (
	LoginPath = "/admin/login"
	AdminHome = "/admin"
)

// AuthMiddleware checks for a JWT cookie and adds the user and their admin
// flag to the context if valid
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AuthCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserFromToken(r.Context(), cookie.Value)
			if err != nil {
				// Invalid or stale token, clear cookie and continue as a guest
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			isAdmin, err := authService.IsAdmin(r.Context(), user.ID)
			if err != nil {
				slog.Error("failed to check admin", "error", err, "user_id", user.ID)
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = nil

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithAdmin(ctx, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sends guests to the login page and signed-in non-admins home.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		if !ctxkeys.IsAdmin(r.Context()) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest ensures the user is not signed in as an admin
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil && ctxkeys.IsAdmin(r.Context()) {
			http.Redirect(w, r, AdminHome, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
