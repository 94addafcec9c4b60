// Package session keeps the signed-in identity in a gorilla/sessions session.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"team-project/dashboard/models"
)

const (
	CookieName = "team-dashboard"
	// UserKey holds the identity as one flat JSON record.
	UserKey = "user"
	// DashboardKey names the per-sign-in dashboard state held by the server.
	DashboardKey = "dashboard"
)

var ErrNoIdentity = errors.New("no identity in session")

// storedIdentity is what survives a page reload.
type storedIdentity struct {
	Username  string      `json:"username"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      models.Role `json:"role"`
}

type Manager struct {
	store sessions.Store
	name  string
}

func NewManager(store sessions.Store) *Manager {
	return &Manager{store: store, name: CookieName}
}

// NewCookieStore returns a store whose cookie lives for the browser session only.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = BrowserSessionOptions(secure)
	store.MaxAge(0)
	return store
}

func BrowserSessionOptions(secure bool) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Identity returns the signed-in identity of r.
func (m *Manager) Identity(r *http.Request) (models.Identity, error) {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		return models.Identity{}, fmt.Errorf("read session: %w", err)
	}
	raw, ok := s.Values[UserKey].(string)
	if !ok || raw == "" {
		return models.Identity{}, ErrNoIdentity
	}

	var stored storedIdentity
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return models.Identity{}, fmt.Errorf("decode session identity: %w", err)
	}
	if stored.Username == "" {
		return models.Identity{}, ErrNoIdentity
	}
	return models.Identity{
		Username:  stored.Username,
		FirstName: stored.FirstName,
		LastName:  stored.LastName,
		Role:      stored.Role,
	}, nil
}

func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, identity models.Identity) error {
	// A stale or foreign cookie still yields a fresh session to write into.
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return fmt.Errorf("read session: %w", err)
	}
	raw, err := json.Marshal(storedIdentity{
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      identity.Role,
	})
	if err != nil {
		return fmt.Errorf("encode session identity: %w", err)
	}
	s.Values[UserKey] = string(raw)
	s.Values[DashboardKey] = uuid.NewString()
	return s.Save(r, w)
}

// DashboardKey returns the key of r's server-side dashboard state. Sessions
// written before the key existed fall back to the username.
func (m *Manager) DashboardKey(r *http.Request) string {
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return ""
	}
	if key, ok := s.Values[DashboardKey].(string); ok && key != "" {
		return key
	}
	if identity, err := m.Identity(r); err == nil {
		return identity.Username
	}
	return ""
}

// SignOut removes the identity and expires the cookie.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return fmt.Errorf("read session: %w", err)
	}
	delete(s.Values, UserKey)
	delete(s.Values, DashboardKey)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}

// AddFlash queues a one-shot message for the next page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return fmt.Errorf("read session: %w", err)
	}
	s.AddFlash(message)
	return s.Save(r, w)
}

// Flashes returns and clears the queued messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	s, err := m.store.Get(r, m.name)
	if err != nil && s == nil {
		return nil
	}
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save(r, w)

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
