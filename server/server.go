package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mail-server/internal/config"
	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/jrsteele09/go-mail-server/sessions"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	linking  *linking.Service
	sessions sessions.Resolver
	limiter  *RateLimiter
	proxies  trustedProxies
}

func New(config config.Config, linkingService *linking.Service, resolver sessions.Resolver) (*Server, error) {
	if linkingService == nil {
		return nil, fmt.Errorf("[Server New] linking service is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("[Server New] session resolver is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		linking:  linkingService,
		sessions: resolver,
	}
	s.env = config.GetEnv()

	proxies, err := parseTrustedProxies(config.GetTrustedProxies())
	if err != nil {
		return nil, fmt.Errorf("[Server New] trusted proxies: %w", err)
	}
	s.proxies = proxies
	if config.GetEnableRateLimiting() {
		s.limiter = NewRateLimiter(config.GetRateLimitPerMinute())
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes returns the registered patterns in registration order.
func (s *Server) Routes() []string {
	routes := make([]string, len(s.routes))
	copy(routes, s.routes)
	return routes
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}

