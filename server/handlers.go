package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-mail-server/linking"
	"github.com/rs/zerolog/log"
)

// refreshErrorMessages are the 401 bodies for each reason stored tokens cannot be used.
var refreshErrorMessages = []struct {
	err     error
	message string
}{
	{linking.ErrNoToken, "Unauthorized: No access token found"},
	{linking.ErrExpiredNoRefresh, "Access token expired, and no refresh token present."},
	{linking.ErrRefreshFailed, "Unable to refresh tokens."},
}

// GmailLabelsHandler lists the labels of the user's linked Gmail account.
func (s *Server) GmailLabelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())

		labels, err := s.linking.Labels(r.Context(), userID)
		if err != nil {
			for _, known := range refreshErrorMessages {
				if errors.Is(err, known.err) {
					writeJSONError(w, http.StatusUnauthorized, known.message)
					return
				}
			}
			log.Err(err).Str("userId", userID).Msg("failed to list gmail labels")
			writeJSONError(w, http.StatusInternalServerError, "Failed to fetch labels from Gmail API")
			return
		}

		writeJSON(w, http.StatusOK, labels)
	}
}

// MailAccountsHandler lists the user's linked mail accounts without token material.
func (s *Server) MailAccountsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())

		accounts, err := s.linking.Accounts(r.Context(), userID)
		if err != nil {
			log.Err(err).Str("userId", userID).Msg("failed to list mail accounts")
			writeJSONError(w, http.StatusInternalServerError, "Failed to load mail accounts")
			return
		}

		writeJSON(w, http.StatusOK, accounts)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"app":    s.config.GetAppName(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
