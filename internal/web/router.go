package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shaunplee/superlists/internal/accounts"
	"github.com/shaunplee/superlists/internal/lists"
)

// RouterOptions controls middleware behaviour for the HTTP surface.
type RouterOptions struct {
	AllowedOrigins    []string
	RequestsPerMinute int
	CookieSecure      bool
	Log               zerolog.Logger
}

// NewRouter constructs the chi router containing every endpoint: the HTML
// pages, the JSON item API, the account flows, and the ops endpoints.
func NewRouter(listsSvc *lists.Service, accountsSvc *accounts.Service, opts RouterOptions) (http.Handler, error) {
	if listsSvc == nil {
		return nil, errors.New("lists service is required")
	}
	if accountsSvc == nil {
		return nil, errors.New("accounts service is required")
	}

	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		lists:        listsSvc,
		accounts:     accountsSvc,
		render:       engine,
		sanitize:     bluemonday.StrictPolicy(),
		log:          opts.Log,
		cookieSecure: opts.CookieSecure,
	}

	allowed := opts.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	perMinute := opts.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "superlists")
	})
	r.Use(requestLogger(opts.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(perMinute, time.Minute))
	r.Use(h.withIdentity)

	r.Get("/", h.handleHome)

	r.Route("/lists", func(r chi.Router) {
		r.Post("/new", h.handleNewList)
		r.Get("/users/{email}/", h.handleMyLists)
		r.Get("/{listID}/", h.handleViewList)
		r.Post("/{listID}/", h.handleAddItem)
		r.Post("/{listID}/share", h.handleShareList)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/send_login_email", h.handleSendLoginEmail)
		r.Get("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/logout", h.handleLogout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/lists/{listID}/items", h.handleAPIListItems)
		r.Post("/lists/{listID}/items", h.handleAPICreateItem)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	return r, nil
}
