package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/bot-dashboard/auth"
	"github.com/jrsteele09/bot-dashboard/dashboard"
	"github.com/jrsteele09/bot-dashboard/internal/config"
	"github.com/jrsteele09/bot-dashboard/tenants"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// HealthChecker reports whether the central store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Gateway    *auth.Gateway
	Tenants    tenants.ClientFactory
	Aggregator *dashboard.Aggregator
	Health     HealthChecker
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	gateway    *auth.Gateway
	tenants    tenants.ClientFactory
	aggregator *dashboard.Aggregator
	health     HealthChecker
	cors       *cors.Cors
	pages      *pages
}

func New(config config.Config, deps Deps) (*Server, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("[Server New] gateway is required")
	}
	if deps.Tenants == nil {
		return nil, fmt.Errorf("[Server New] tenant client factory is required")
	}
	if deps.Aggregator == nil {
		return nil, fmt.Errorf("[Server New] aggregator is required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		gateway:    deps.Gateway,
		tenants:    deps.Tenants,
		aggregator: deps.Aggregator,
		health:     deps.Health,
		pages:      pages,
		cors: cors.New(cors.Options{
			AllowedOrigins: config.GetAllowedOrigins(),
			AllowedMethods: config.GetAllowedMethods(),
			AllowedHeaders: config.GetAllowedHeaders(),
			MaxAge:         86400,
		}),
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

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1], 0)
		} else {
			logRoute("", parts[0], 0)
		}
	}
}

func logRoute(method, path string, status int) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	displayMethod := color + paddedMethod + ResetColor
	if status == 0 {
		log.Debug().Msgf("[%-19s] %s", displayMethod, path)
		return
	}
	log.Debug().Msgf("[%-19s] %s %s", displayMethod, path, statusColour(status))
}

func statusColour(status int) string {
	switch {
	case status >= 500:
		return Red + fmt.Sprint(status) + ResetColor
	case status >= 400:
		return Yellow + fmt.Sprint(status) + ResetColor
	default:
		return Green + fmt.Sprint(status) + ResetColor
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
