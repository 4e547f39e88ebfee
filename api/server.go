package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"powledger/api/handlers"
)

// Server wires the node API routes onto a gorilla/mux router.
type Server struct {
	ledger  handlers.Ledger
	hub     *EventHub
	router  *mux.Router
	limiter *rate.Limiter
	logger  *slog.Logger
}

type Option func(*Server)

// WithRateLimit caps the request rate for the whole API. A limit of zero
// or less leaves the API unlimited.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithEventHub exposes hub on GET /ws.
func WithEventHub(hub *EventHub) Option {
	return func(s *Server) { s.hub = hub }
}

func NewServer(l handlers.Ledger, opts ...Option) *Server {
	s := &Server{
		ledger: l,
		router: mux.NewRouter(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) route(path string, h func(http.ResponseWriter, *http.Request, handlers.Ledger)) *mux.Route {
	return s.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		h(w, r, s.ledger)
	})
}

func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)
	if s.limiter != nil {
		s.router.Use(RateLimit(s.limiter))
	}

	s.route("/mine", handlers.HandleMine).Methods(http.MethodGet)
	s.route("/transactions/new", handlers.HandleNewTransaction).Methods(http.MethodPost)
	s.route("/transactions/pending", handlers.HandlePendingTransactions).Methods(http.MethodGet)

	s.route("/chain", handlers.HandleChain).Methods(http.MethodGet)
	s.route("/chain/height", handlers.HandleChainHeight).Methods(http.MethodGet)
	s.route("/chain/head", handlers.HandleChainHead).Methods(http.MethodGet)
	s.route("/chain/stats", handlers.HandleChainStats).Methods(http.MethodGet)
	s.route("/blocks/{hash}", handlers.HandleBlockByHash).Methods(http.MethodGet)

	s.route("/nodes", handlers.HandleListNodes).Methods(http.MethodGet)
	s.route("/nodes/register", handlers.HandleRegisterNodes).Methods(http.MethodPost)
	s.route("/nodes/resolve", handlers.HandleResolve).Methods(http.MethodGet)

	if s.hub != nil {
		s.router.Handle("/ws", s.hub).Methods(http.MethodGet)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Handled request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
