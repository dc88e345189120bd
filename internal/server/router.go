package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

type RouterOptions struct {
	RateLimitPerMinute int
	StaticDir          string
	TemplateDir        string
}

// NewRouter mounts the JSON API under /api, the static asset directories and
// the single-page app shell for every other path.
func NewRouter(h *handlers.Handler, sessions *auth.Sessions, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(sessions.Middleware)

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(
				opts.RateLimitPerMinute,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
		}
		r.NotFound(handlers.NotFound)
		r.MethodNotAllowed(handlers.MethodNotAllowed)

		// Account
		r.Get("/me/", h.Me)
		r.Post("/logout/", h.Logout)
		r.Post("/contact/", h.Contact)
		r.Post("/auth/register/", h.Register)
		r.Post("/auth/login/", h.Login)
		r.Post("/auth/password-reset/", h.RequestPasswordReset)
		r.Post("/auth/password-reset-confirm/{uid}/{token}/", h.ConfirmPasswordReset)
		r.Get("/google_login/", h.GoogleLogin)
		r.Get("/google_callback/", h.GoogleCallback)
		r.Get("/apple_callback/", h.AppleCallback)
		r.Post("/apple_callback/", h.AppleCallback)

		// Profile
		r.Get("/profile/", h.Profile)
		r.Post("/profile/", h.Profile)
		r.Post("/profile/avatar/", h.UploadAvatar)

		// Listings
		for _, path := range []string{"/listings/", "/listings/list"} {
			r.Get(path, h.SearchListings)
			r.Post(path, h.CreateListing)
		}
		r.Get("/listings/{id}/", h.GetListing)
		r.Put("/listings/{id}/", h.UpdateListing)
		r.Delete("/listings/{id}/", h.DeleteListing)
		r.Post("/listings/{id}/images/", h.UploadListingImage)

		// Neighbours
		r.Get("/neighbours/list", h.SearchNeighbours)
		r.Get("/neighbours/{id}/", h.GetNeighbour)

		// Favorites
		r.Post("/favorites/add/", h.AddFavorite)
		r.Post("/favorites/remove/", h.RemoveFavorite)
		r.Get("/favorites/", h.ListFavorites)
		r.Get("/favorites/is-favorite/", h.IsFavorite)
		r.Get("/favorites/is_favorite/", h.IsFavorite)
		r.Get("/favorites/is_favorite", h.IsFavorite)

		// Articles
		r.Get("/articles/", h.ListArticles)
		r.Get("/articles/{id}/", h.GetArticle)
	})

	static := http.Dir(opts.StaticDir)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static)))
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Join(opts.StaticDir, "assets")))))
	r.Handle("/fonts/*", http.StripPrefix("/fonts/", http.FileServer(http.Dir(filepath.Join(opts.StaticDir, "fonts")))))

	index := filepath.Join(opts.TemplateDir, "index.html")
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			handlers.MethodNotAllowed(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	return r
}
