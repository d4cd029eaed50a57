package web

import (
	"context"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"joarchive/internal/config"
	"joarchive/internal/model"
	"joarchive/internal/usecases"
)

//go:embed templates static
var assets embed.FS

type PricesReader interface {
	GetCurrent(ctx context.Context) (*model.MetalPrices, error)
}

type PriceRefresher interface {
	RefreshPrices(ctx context.Context) (*model.MetalPrices, error)
	Stats() usecases.RefreshStats
}

type JewelryService interface {
	List(ctx context.Context, query string, classification string) ([]*model.JewelryRecord, error)
	Classifications(ctx context.Context) ([]string, error)
	Get(ctx context.Context, joNumber string) (*model.JewelryRecord, error)
	Create(ctx context.Context, input usecases.JewelryInput) (*model.JewelryRecord, error)
	Update(ctx context.Context, joNumber string, input usecases.JewelryInput) (*model.JewelryRecord, error)
	UploadImage(ctx context.Context, joNumber string, contentType string, size int64, body io.Reader) (string, error)
}

// Dependencies are the collaborators behind the HTTP routes.
type Dependencies struct {
	Authorizer     *Authorizer
	Prices         PricesReader
	Refresher      PriceRefresher
	Jewelry        JewelryService
	CurrencySymbol string
	Location       *time.Location
}

// Server serves the archive pages, the calculator API and the refresh trigger.
type Server struct {
	logger *slog.Logger
	router *chi.Mux
	server *http.Server
	deps   Dependencies
	pages  pages
}

func New(logger *slog.Logger, cnf config.HTTP, deps Dependencies) *Server {
	if deps.Location == nil {
		deps.Location = time.UTC
	}

	s := &Server{
		logger: logger.With("component", "web"),
		router: chi.NewRouter(),
		deps:   deps,
	}
	s.pages = mustParsePages(s.templateFuncs())

	s.setupMiddleware(cnf)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cnf.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupMiddleware(cnf config.HTTP) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// The refresh waits for three upstream calls with their own timeouts.
	s.router.Use(middleware.Timeout(55 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cnf.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Cron-Secret"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !cnf.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	static, _ := fs.Sub(assets, "static")
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/access", s.handleAccessPage)
	s.router.Post("/api/access", s.handleAccess)

	// Guarded by AuthorizeRefresh rather than the page gate.
	s.router.Get("/api/admin/update-metal-prices", s.handleRefresh)
	s.router.Post("/api/admin/update-metal-prices", s.handleRefresh)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAccess)

		r.Get("/", s.handleListPage)
		r.Get("/add", s.handleAddPage)
		r.Post("/add", s.handleAdd)
		r.Route("/j/{jo}", func(r chi.Router) {
			r.Get("/", s.handleDetailPage)
			r.Get("/edit", s.handleEditPage)
			r.Post("/edit", s.handleEdit)
			r.Post("/image", s.handleImage)
		})

		r.Route("/api", func(r chi.Router) {
			r.Post("/logout", s.handleLogout)
			r.Get("/prices", s.handleGetPrices)
			r.Post("/calculator", s.handleCalculator)
			r.Get("/classifications", s.handleClassifications)
		})
	})
}

// requireAccess lets requests with a valid session through. Pages redirect to the access page,
// API calls get a 401.
func (s *Server) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Authorizer.HasSession(r) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			s.writeJSON(w, http.StatusUnauthorized, refreshResponse{Success: false, Error: "unauthorized"})
			return
		}

		http.Redirect(w, r, "/access", http.StatusFound)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}
