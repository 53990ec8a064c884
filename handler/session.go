package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName = "pubtube"

	sessionKeyID    = "id"
	sessionKeyState = "oauthstate"
)

// SessionManager binds a browser to a session id through a cookie. The id
// keys the server-side token store; the token pair itself never leaves the
// server.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(secret string) *SessionManager {
	return &SessionManager{
		store: sessions.NewCookieStore([]byte(secret)),
	}
}

// ID returns the session id for this request, minting and persisting a new
// one when the request carries no valid session cookie.
func (m *SessionManager) ID(w http.ResponseWriter, r *http.Request) string {
	session, _ := m.store.Get(r, sessionName)
	id, ok := session.Values[sessionKeyID].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values[sessionKeyID] = id
		session.Save(r, w)
	}

	return id
}

// NewState mints a fresh OAuth state nonce and stores it in the session.
func (m *SessionManager) NewState(w http.ResponseWriter, r *http.Request) string {
	session, _ := m.store.Get(r, sessionName)
	state := uuid.NewString()
	session.Values[sessionKeyState] = state
	session.Save(r, w)

	return state
}

// ConsumeState returns the stored OAuth state nonce and clears it.
func (m *SessionManager) ConsumeState(w http.ResponseWriter, r *http.Request) string {
	session, _ := m.store.Get(r, sessionName)
	state, _ := session.Values[sessionKeyState].(string)
	delete(session.Values, sessionKeyState)
	session.Save(r, w)

	return state
}
