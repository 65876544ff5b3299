package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/jrsteele09/go-mail-server/mail"
)

// setStateCookie stores the CSRF state, scoped to the callback path only.
func (s *Server) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetStateCookieName(),
		Value:    state,
		Path:     RouteGmailCallback,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetStateTTL().Seconds()),
	})
}

// clearStateCookie expires the state cookie. Attributes must match setStateCookie.
func (s *Server) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetStateCookieName(),
		Value:    "",
		Path:     RouteGmailCallback,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) readStateCookie(r *http.Request) string {
	cookie, err := r.Cookie(s.config.GetStateCookieName())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// redirectForOutcome is the single place a callback outcome becomes a response.
func redirectForOutcome(w http.ResponseWriter, r *http.Request, outcome linking.Outcome) {
	if outcome.Succeeded() {
		redirectSuccess(w, r, RouteDashboard+"?connected="+url.QueryEscape(string(mail.ProviderGmail)))
		return
	}

	path := RouteDashboard
	if outcome.ToSignIn() {
		path = RouteSignIn
	}
	if code := outcome.ErrorCode(); code != "" {
		redirectWithError(w, r, path, code)
		return
	}
	redirectSuccess(w, r, path)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorCode string) {
	fullPath := path + "?error=" + url.QueryEscape(errorCode)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
