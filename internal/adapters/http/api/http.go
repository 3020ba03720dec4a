// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/okian/reelrank/internal/authority"
	"github.com/okian/reelrank/pkg/logger"
)

const (
	maxBodySize        = 4096
	defaultMaxLimit    = 100
	defaultReqTimeout  = 10 * time.Second
	defaultRankingSize = 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the authority implementation.
type Dependencies interface {
	AuthDependencies
	ItemDependencies
	ScoreDependencies
	CommentDependencies
	RankingDependencies
	StatsProvider
}

// Server wires HTTP routes for the authority API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	authHandler     *AuthHandler
	itemsHandler    *ItemsHandler
	scoresHandler   *ScoresHandler
	commentsHandler *CommentsHandler
	rankingHandler  *RankingHandler

	auth    Authenticator
	logger  logger.Logger
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRequestTimeout bounds handler execution.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLimit int, opts ...Option) *Server {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		authHandler:     NewAuthHandler(deps),
		itemsHandler:    NewItemsHandler(deps, maxLimit),
		scoresHandler:   NewScoresHandler(deps),
		commentsHandler: NewCommentsHandler(deps),
		rankingHandler:  NewRankingHandler(deps, maxLimit),
		auth:            deps,
		logger:          logger.Nop(),
		timeout:         defaultReqTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Use(
		LoggerMiddleware(s.logger),
		middleware.StripSlashes,
		middleware.Recoverer,
		middleware.Timeout(s.timeout),
		bodyLimiter(maxBodySize),
	)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Post("/auth/login", MetricsMiddleware(s.authHandler.HandleLogin, "auth_login"))
	r.Get("/scores/{itemID}", MetricsMiddleware(s.scoresHandler.HandleGetAverage, "scores"))
	r.Get("/comments/{itemID}", MetricsMiddleware(s.commentsHandler.HandleList, "comments"))
	r.Get("/items", MetricsMiddleware(s.itemsHandler.HandleList, "items_list"))
	r.Get("/items/{itemID}", MetricsMiddleware(s.itemsHandler.HandleGet, "items"))
	r.Get("/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	r.Get("/ranking/top", MetricsMiddleware(s.rankingHandler.HandleGetTop, "ranking_top"))
	r.Get("/ranking/users/{userID}", MetricsMiddleware(s.rankingHandler.HandleGetUser, "ranking_user"))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.auth))
		r.Post("/auth/logout", MetricsMiddleware(s.authHandler.HandleLogout, "auth_logout"))
		r.Post("/items", MetricsMiddleware(s.itemsHandler.HandleCreate, "items"))
		r.Post("/scores/{itemID}", MetricsMiddleware(s.scoresHandler.HandleSubmit, "scores"))
		r.Post("/comments/{itemID}", MetricsMiddleware(s.commentsHandler.HandleSubmit, "comments"))
		r.Get("/ranking/me", MetricsMiddleware(s.rankingHandler.HandleGetSelf, "ranking_me"))
	})
}

// NewRouter returns a chi router with every route registered.
func NewRouter(deps Dependencies, maxLimit int, opts ...Option) http.Handler {
	r := chi.NewRouter()
	NewServer(deps, maxLimit, opts...).Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates authority errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authority.ErrInvalidScore),
		errors.Is(err, authority.ErrInvalidComment),
		errors.Is(err, authority.ErrInvalidItem),
		errors.Is(err, authority.ErrInvalidUser),
		errors.Is(err, authority.ErrInvalidPage),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, authority.ErrUnauthorized), errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, authority.ErrItemNotFound), errors.Is(err, authority.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, authority.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

// nonNil keeps empty lists encoding as [].
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
