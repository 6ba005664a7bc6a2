package httptransport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"eventsite/internal/domains"
	"eventsite/internal/httpx"
	"eventsite/internal/metrics"
)

// Services is everything the HTTP surface calls into.
type Services struct {
	Auth       AuthServices
	Users      UserServices
	Templates  TemplateServices
	Microsites MicrositeServices
	Sites      SiteServices
	Guests     GuestServices
	Wishes     WishServices
	Media      MediaServices
}

type Options struct {
	JWTSecret string
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	// ShowStack attaches panic traces to 500 responses.
	ShowStack bool
	Now       func() time.Time
}

func Router(svc Services, opts Options) *mux.Router {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	router := mux.NewRouter()
	router.NotFoundHandler = notFound(router)
	router.MethodNotAllowedHandler = http.HandlerFunc(httpx.MethodNotAllowed)
	router.Use(httpx.Recover(opts.Logger, opts.ShowStack))
	router.Use(httpx.Logger(opts.Logger))
	router.Use(opts.Metrics.Middleware)

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	authHandler := NewAuthHandlers(svc.Auth)
	userHandler := NewUserHandlers(svc.Users)
	templateHandler := NewTemplateHandlers(svc.Templates)
	micrositeHandler := NewMicrositeHandlers(svc.Microsites)
	siteHandler := NewSiteHandlers(svc.Sites)
	guestHandler := NewGuestHandlers(svc.Guests)
	wishHandler := NewWishHandlers(svc.Wishes)
	mediaHandler := NewMediaHandlers(svc.Media)

	router.HandleFunc("/s/{slug}", PublicPage(svc.Microsites.RenderPublicMicrosite, svc.Sites.RenderPublicSite)).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: opts.Now().UTC().Format(time.RFC3339)})
	}).Methods(http.MethodGet)

	// Public routes. They are registered before the protected subrouters so
	// "/public" never matches an {id} pattern.
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/templates/public", templateHandler.ListPublicTemplates).Methods(http.MethodGet)
	api.HandleFunc("/media/serve/{filename}", mediaHandler.Serve).Methods(http.MethodGet, http.MethodHead)

	api.HandleFunc("/microsites/public/{slug}", micrositeHandler.GetPublic).Methods(http.MethodGet)
	api.HandleFunc("/microsites/public/{slug}/rsvp", micrositeHandler.SubmitRsvp).Methods(http.MethodPost)
	api.HandleFunc("/microsites/public/{slug}/wish", micrositeHandler.SubmitWish).Methods(http.MethodPost)
	api.HandleFunc("/microsites/public/{slug}/wishes", wishHandler.PublicWishes(domains.SiteKindMicrosite)).Methods(http.MethodGet)

	api.HandleFunc("/sites/public/{slug}", siteHandler.GetPublic).Methods(http.MethodGet)
	api.HandleFunc("/sites/public/{slug}/rsvp", siteHandler.SubmitRsvp).Methods(http.MethodPost)
	api.HandleFunc("/sites/public/{slug}/rsvp", siteHandler.UpdateRsvp).Methods(http.MethodPut)
	api.HandleFunc("/sites/public/{slug}/wish", siteHandler.SubmitWish).Methods(http.MethodPost)
	api.HandleFunc("/sites/public/{slug}/wishes", wishHandler.PublicWishes(domains.SiteKindSite)).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(httpx.Protected(opts.JWTSecret))

	protected.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/builder/interpolate", Interpolate).Methods(http.MethodPost)

	users := protected.PathPrefix("/users").Subrouter()
	users.Use(httpx.RequireRole(domains.RoleAdmin))
	users.HandleFunc("", userHandler.ListUsers).Methods(http.MethodGet)
	users.HandleFunc("", userHandler.CreateUser).Methods(http.MethodPost)

	templates := protected.PathPrefix("/templates").Subrouter()
	templates.HandleFunc("", templateHandler.ListTemplates).Methods(http.MethodGet)
	templates.HandleFunc("/{id}", templateHandler.GetTemplate).Methods(http.MethodGet)
	templates.HandleFunc("/{id}/versions", templateHandler.ListVersions).Methods(http.MethodGet)
	templates.HandleFunc("/{id}/preview", templateHandler.PreviewTemplate).Methods(http.MethodGet)

	catalog := templates.NewRoute().Subrouter()
	catalog.Use(httpx.RequireRole(domains.RoleAdmin))
	catalog.HandleFunc("", templateHandler.CreateTemplate).Methods(http.MethodPost)
	catalog.HandleFunc("/{id}", templateHandler.UpdateTemplate).Methods(http.MethodPut)
	catalog.HandleFunc("/{id}", templateHandler.DeleteTemplate).Methods(http.MethodDelete)
	catalog.HandleFunc("/{id}/version", templateHandler.UpdateVersion).Methods(http.MethodPut)
	catalog.HandleFunc("/{id}/duplicate", templateHandler.DuplicateTemplate).Methods(http.MethodPost)
	catalog.HandleFunc("/{id}/publish", templateHandler.PublishTemplate).Methods(http.MethodPost)
	catalog.HandleFunc("/{id}/unpublish", templateHandler.UnpublishTemplate).Methods(http.MethodPost)
	catalog.HandleFunc("/{id}/new-version", templateHandler.CreateNewVersion).Methods(http.MethodPost)
	catalog.HandleFunc("/{id}/sections", templateHandler.AddSection).Methods(http.MethodPost)
	catalog.HandleFunc("/{id}/sections/reorder", templateHandler.ReorderSections).Methods(http.MethodPut)
	catalog.HandleFunc("/{id}/sections/{sectionId}", templateHandler.UpdateSection).Methods(http.MethodPut)
	catalog.HandleFunc("/{id}/sections/{sectionId}", templateHandler.DeleteSection).Methods(http.MethodDelete)

	microsites := protected.PathPrefix("/microsites").Subrouter()
	microsites.HandleFunc("", micrositeHandler.ListMicrosites).Methods(http.MethodGet)
	microsites.HandleFunc("", micrositeHandler.CreateMicrosite).Methods(http.MethodPost)
	microsites.HandleFunc("/{id}", micrositeHandler.GetMicrosite).Methods(http.MethodGet)
	microsites.HandleFunc("/{id}", micrositeHandler.UpdateMicrosite).Methods(http.MethodPut)
	microsites.HandleFunc("/{id}", micrositeHandler.DeleteMicrosite).Methods(http.MethodDelete)
	microsites.HandleFunc("/{id}/publish", micrositeHandler.Publish).Methods(http.MethodPost)
	microsites.HandleFunc("/{id}/unpublish", micrositeHandler.Unpublish).Methods(http.MethodPost)
	microsites.HandleFunc("/{id}/archive", micrositeHandler.Archive).Methods(http.MethodPost)
	microsites.HandleFunc("/{id}/qr", micrositeHandler.QRCode).Methods(http.MethodGet)
	microsites.HandleFunc("/{id}/sections/reorder", micrositeHandler.ReorderSections).Methods(http.MethodPut)
	microsites.HandleFunc("/{id}/sections/{sectionId}", micrositeHandler.UpdateSection).Methods(http.MethodPut)
	microsites.HandleFunc("/{id}/sections/{sectionId}/toggle", micrositeHandler.ToggleSection).Methods(http.MethodPost)

	sites := protected.PathPrefix("/sites").Subrouter()
	sites.HandleFunc("", siteHandler.ListSites).Methods(http.MethodGet)
	sites.HandleFunc("", siteHandler.CreateSite).Methods(http.MethodPost)
	sites.HandleFunc("/{id}", siteHandler.GetSite).Methods(http.MethodGet)
	sites.HandleFunc("/{id}", siteHandler.UpdateSite).Methods(http.MethodPut)
	sites.HandleFunc("/{id}", siteHandler.DeleteSite).Methods(http.MethodDelete)
	sites.HandleFunc("/{id}/publish", siteHandler.Publish).Methods(http.MethodPost)
	sites.HandleFunc("/{id}/unpublish", siteHandler.Unpublish).Methods(http.MethodPost)

	guests := protected.PathPrefix("/guests/{siteId}").Subrouter()
	guests.HandleFunc("", guestHandler.ListGuests).Methods(http.MethodGet)
	guests.HandleFunc("/export", guestHandler.ExportGuests).Methods(http.MethodGet)
	guests.HandleFunc("/{guestId}", guestHandler.GetGuest).Methods(http.MethodGet)
	guests.HandleFunc("/{guestId}", guestHandler.DeleteGuest).Methods(http.MethodDelete)
	guests.HandleFunc("/{guestId}/status", guestHandler.UpdateStatus).Methods(http.MethodPut)

	wishes := protected.PathPrefix("/wishes/{siteId}").Subrouter()
	wishes.HandleFunc("", wishHandler.ListWishes).Methods(http.MethodGet)
	wishes.HandleFunc("/{wishId}/status", wishHandler.Moderate).Methods(http.MethodPut)
	wishes.HandleFunc("/{wishId}/highlight", wishHandler.ToggleHighlight).Methods(http.MethodPost)
	wishes.HandleFunc("/{wishId}", wishHandler.DeleteWish).Methods(http.MethodDelete)

	protected.HandleFunc("/media", mediaHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/media", mediaHandler.Upload).Methods(http.MethodPost)
	protected.HandleFunc("/media/{id}", mediaHandler.Delete).Methods(http.MethodDelete)

	return router
}

var routeMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete,
}

// notFound answers 405 when the path routes under another method. mux drops
// the method mismatch as soon as a later route in the same subtree matches
// the shared /api prefix, so it cannot be relied on to report it.
func notFound(router *mux.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		for _, method := range routeMethods {
			if method == r.Method {
				continue
			}
			alt := r.Clone(r.Context())
			alt.Method = method
			var match mux.RouteMatch
			if router.Match(alt, &match) && match.MatchErr == nil {
				allowed = append(allowed, method)
			}
		}
		if len(allowed) == 0 {
			httpx.NotFound(w, r)
			return
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		httpx.MethodNotAllowed(w, r)
	}
}
