package handler

import (
	"fmt"
	"net/http"

	"github.com/mvdbrink/pubtube/model"
	"github.com/mvdbrink/pubtube/storage"
	"golang.org/x/exp/slog"
	"golang.org/x/oauth2"
)

type AuthAPI struct {
	oauth    *oauth2.Config
	tokens   storage.TokenStore
	sessions *SessionManager
	logger   *slog.Logger
}

func NewAuthAPI(oauth *oauth2.Config, tokens storage.TokenStore, sessions *SessionManager, logger *slog.Logger) *AuthAPI {
	return &AuthAPI{
		oauth:    oauth,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

func (a *AuthAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && head == "login":
		a.Login(w, r)
	case r.Method == http.MethodGet && head == "callback":
		a.Callback(w, r)
	case r.Method == http.MethodPost && head == "logout":
		a.Logout(w, r)
	default:
		Error(w, http.StatusNotFound, fmt.Errorf("method %s with subpath %q was not registered in the auth api", r.Method, head))
	}
}

// Login redirects to the consent screen. Offline access with forced consent
// makes sure a refresh token is issued, not just an access token.
func (a *AuthAPI) Login(w http.ResponseWriter, r *http.Request) {
	state := a.sessions.NewState(w, r)
	url := a.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	http.Redirect(w, r, url, http.StatusFound)
}

// Callback exchanges the authorization code and persists the token pair
// under the caller's session id.
func (a *AuthAPI) Callback(w http.ResponseWriter, r *http.Request) {
	if state := r.FormValue("state"); state == "" || state != a.sessions.ConsumeState(w, r) {
		Error(w, http.StatusBadRequest, fmt.Errorf("state mismatch"))
		return
	}
	code := r.FormValue("code")
	if code == "" {
		Error(w, http.StatusBadRequest, fmt.Errorf("missing authorization code"))
		return
	}

	token, err := a.oauth.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("code exchange failed", err)
		Error(w, http.StatusUnauthorized, model.WrapError(model.KindAuthorization, "code exchange rejected", err))
		return
	}

	sessionID := a.sessions.ID(w, r)
	if err := a.tokens.Save(sessionID, model.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}); err != nil {
		a.logger.Error("failed to store token", err)
		Error(w, http.StatusInternalServerError, fmt.Errorf("could not store token"))
		return
	}
	a.logger.Info("session signed in", slog.String("session", sessionID))

	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *AuthAPI) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := a.sessions.ID(w, r)
	if err := a.tokens.Delete(sessionID); err != nil {
		a.logger.Error("failed to delete token", err)
		Error(w, http.StatusInternalServerError, fmt.Errorf("could not sign out"))
		return
	}

	JSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
