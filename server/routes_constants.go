package server

// Route path constants
const (
	RouteRoot           = "/{$}"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteChangePassword = "/change-password"
	RouteDashboard      = "/dashboard"
	RouteHealth         = "/health"

	// Session authenticated JSON
	RouteAPIConversation = "/api/conversation/{externalParticipantId}"

	// Token authenticated JSON
	RouteAPILogin         = "/api/login"
	RouteAPIDashboardData = "/api/dashboard_data"
	RouteAPIPreflight     = "/api/"

	RouteStaticCSS = "/css/{file}"
)
