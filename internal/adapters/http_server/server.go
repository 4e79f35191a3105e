package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Timeout      time.Duration
	RateLimitRPM int      // per client IP; 0 disables
	CORSOrigins  []string // empty disables CORS headers
}

func DefaultOptions() Options {
	return Options{Timeout: 15 * time.Second, RateLimitRPM: 600}
}

type Server struct{ mux *chi.Mux }

func New(o Options) *Server {
	if o.Timeout <= 0 {
		o.Timeout = DefaultOptions().Timeout
	}
	m := chi.NewRouter()

	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(o.Timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	if len(o.CORSOrigins) > 0 {
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: o.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match"},
			ExposedHeaders: []string{"ETag"},
			MaxAge:         300,
		}))
	}
	if o.RateLimitRPM > 0 {
		m.Use(httprate.LimitByIP(o.RateLimitRPM, time.Minute))
	}

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
