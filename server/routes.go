package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	// Gmail linking (browser navigations)
	s.RegisterRouteHandler("GET "+RouteGmailAuth, ChainMiddleware(s.GmailAuthStartHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGmailCallback, ChainMiddleware(s.GmailCallbackHandler(), s.BrowserMiddleware()...))

	// JSON API routes (require a session)
	s.RegisterRouteHandler("GET "+RouteGmailLabels, ChainMiddleware(s.GmailLabelsHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteMailAccount, ChainMiddleware(s.MailAccountsHandler(), s.APIMiddleware(s.RequireSession())...))

	// CORS preflight for every API route
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix, ChainMiddleware(noContent, s.CorsMiddleware))
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
