package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteRoot, ChainMiddleware(s.RootHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Forced password rotation
	s.RegisterRouteHandler("GET "+RouteChangePassword, ChainMiddleware(s.ChangePasswordPageHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))
	s.RegisterRouteHandler("POST "+RouteChangePassword, ChainMiddleware(s.ChangePasswordSubmissionHandler(), s.HTMLMiddleWare(s.RequireSessionAuth())...))

	// Dashboard (session)
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSessionAuth(), s.RequireRotatedCredential())...))
	s.RegisterRouteHandler("GET "+RouteAPIConversation, ChainMiddleware(s.ConversationHandler(), s.APIMiddleware(s.RequireSessionAPIAuth())...))

	// Stateless JSON API
	s.RegisterRouteHandler("POST "+RouteAPILogin, ChainMiddleware(s.APILoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIDashboardData, ChainMiddleware(s.APIDashboardDataHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPreflight, ChainMiddleware(notFound, s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare()...))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := "css/" + r.PathValue("file")
		if err := StreamFile(w, r, filePath); err != nil {
			logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
