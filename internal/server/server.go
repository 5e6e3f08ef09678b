package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/sereniteo/crm/internal/auth"
	"github.com/sereniteo/crm/internal/email"
	"github.com/sereniteo/crm/internal/handler"
	"github.com/sereniteo/crm/internal/middleware"
	"github.com/sereniteo/crm/internal/store"
	ws "github.com/sereniteo/crm/internal/websocket"
)

const (
	// Credential endpoints allow 10 attempts per client IP per window.
	authRateLimit  = 10
	authRateWindow = 15 * time.Minute
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	BaseURL       string
	Admin         auth.Credentials
	AllowedEmails auth.AllowList
	EmailClient   *email.Client
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	contactH       *handler.ContactHandler
	statsH         *handler.StatsHandler
	authH          *handler.AuthHandler
	sessionStore   *store.SessionStore
	magicLinkStore *store.MagicLinkStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	contactStore := store.NewContactStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)

	return &Server{
		db:             db,
		hub:            hub,
		contactH:       handler.NewContactHandler(contactStore, hub, logger.With("component", "contact")),
		statsH:         handler.NewStatsHandler(contactStore, logger.With("component", "stats")),
		authH:          handler.NewAuthHandler(sessionStore, magicLinkStore, cfg.EmailClient, cfg.Admin, cfg.AllowedEmails, cfg.BaseURL, logger.With("component", "auth")),
		sessionStore:   sessionStore,
		magicLinkStore: magicLinkStore,
		rateLimiter:    middleware.NewRateLimiter(),
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return s.magicLinkStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no session required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/magic-link", s.rateLimited(s.authH.MagicLink))
	outerMux.HandleFunc("POST /api/auth/magic-link/verify", s.authH.MagicLinkVerify)
	outerMux.HandleFunc("GET /api/auth/session", s.authH.Session)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	protectedMux.HandleFunc("GET /api/contacts", s.contactH.List)
	protectedMux.HandleFunc("GET /api/contacts/{id}", s.contactH.Get)
	protectedMux.HandleFunc("POST /api/contacts", s.contactH.Create)
	protectedMux.HandleFunc("GET /api/stats", s.statsH.Get)
	protectedMux.Handle("GET /api/ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	limited := middleware.RateLimit(s.rateLimiter, middleware.RealIP, authRateLimit, authRateWindow)(next)
	return limited.ServeHTTP
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
