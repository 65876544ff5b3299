package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Gmail linking
	RouteGmailAuth     = "/api/auth/google"
	RouteGmailCallback = "/api/auth/google/callback"

	// API Routes
	RouteAPIPrefix   = "/api/"
	RouteGmailLabels = "/api/gmail/labels"
	RouteMailAccount = "/api/mail/accounts"
	RouteHealth      = "/healthz"

	// Frontend pages the flow redirects to
	RouteSignIn    = "/sign-in"
	RouteDashboard = "/dashboard"
)
