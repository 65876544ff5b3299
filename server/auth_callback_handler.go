package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/rs/zerolog/log"
)

// GmailAuthStartHandler sends the signed-in user to Google's consent screen.
func (s *Server) GmailAuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := s.sessions.ActiveUserID(r)

		auth, err := s.linking.BeginAuthorization(userID)
		if errors.Is(err, linking.ErrUnauthenticated) {
			redirectSuccess(w, r, RouteSignIn)
			return
		}
		if err != nil {
			log.Err(err).Msg("failed to begin gmail authorization")
			http.Error(w, "Failed to start authorization", http.StatusInternalServerError)
			return
		}

		s.setStateCookie(w, auth.State)
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, auth.RedirectURL, http.StatusFound)
	}
}

// GmailCallbackHandler completes the link. The state cookie is single use, so it is
// cleared before anything else happens.
func (s *Server) GmailCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		storedState := s.readStateCookie(r)
		s.clearStateCookie(w)

		if providerErr := query.Get("error"); providerErr != "" {
			log.Warn().Str("error", providerErr).Msg("google returned an authorization error")
		}

		result := s.linking.HandleCallback(r.Context(), linking.CallbackInput{
			Code:        query.Get("code"),
			State:       query.Get("state"),
			StoredState: storedState,
			ActiveUser: func() (string, bool) {
				return s.sessions.ActiveUserID(r)
			},
		})

		w.Header().Set("Cache-Control", "no-store")
		redirectForOutcome(w, r, result.Outcome)
	}
}
