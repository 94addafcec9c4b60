package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team-project/dashboard/models"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func carryCookies(from *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range from.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSignInRoundTrip(t *testing.T) {
	m := NewManager(NewCookieStore(secret, false))
	alice := models.Identity{ID: "u1", Username: "alice", FirstName: "Alice", LastName: "Liddell", Role: models.RoleTeamLeader, Email: "a@example.com"}

	rec := httptest.NewRecorder()
	require.NoError(t, m.SignIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), alice))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Zero(t, cookies[0].MaxAge, "browser-session cookie")
	assert.True(t, cookies[0].Expires.IsZero())
	assert.True(t, cookies[0].HttpOnly)

	identity, err := m.Identity(carryCookies(rec, http.MethodGet, "/leader"))
	require.NoError(t, err)
	assert.Equal(t, models.Identity{Username: "alice", FirstName: "Alice", LastName: "Liddell", Role: models.RoleTeamLeader}, identity)
}

func TestIdentityWithoutSession(t *testing.T) {
	m := NewManager(NewCookieStore(secret, false))

	_, err := m.Identity(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestForgedCookieIsRejected(t *testing.T) {
	m := NewManager(NewCookieStore(secret, false))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-signed-value"})

	_, err := m.Identity(req)
	assert.Error(t, err)
}

func TestSignOut(t *testing.T) {
	m := NewManager(NewCookieStore(secret, false))
	rec := httptest.NewRecorder()
	require.NoError(t, m.SignIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), models.Identity{Username: "carol", Role: models.RoleTeamMember}))

	out := httptest.NewRecorder()
	require.NoError(t, m.SignOut(out, carryCookies(rec, http.MethodPost, "/logout")))

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestFlashesAreOneShot(t *testing.T) {
	m := NewManager(NewCookieStore(secret, false))

	rec := httptest.NewRecorder()
	require.NoError(t, m.AddFlash(rec, httptest.NewRequest(http.MethodPost, "/leader/tasks", nil), "Please check the form: name is required."))

	read := httptest.NewRecorder()
	assert.Equal(t, []string{"Please check the form: name is required."}, m.Flashes(read, carryCookies(rec, http.MethodGet, "/leader")))

	again := httptest.NewRecorder()
	assert.Empty(t, m.Flashes(again, carryCookies(read, http.MethodGet, "/leader")))
}

func TestMongoStoreNewWithoutCookie(t *testing.T) {
	store := NewMongoStore(nil, BrowserSessionOptions(true), secret)

	s, err := store.New(httptest.NewRequest(http.MethodGet, "/", nil), CookieName)
	require.NoError(t, err)
	assert.True(t, s.IsNew)
	assert.Empty(t, s.ID)
	assert.True(t, s.Options.Secure)
}

func TestEachSignInGetsItsOwnDashboardKey(t *testing.T) {
	m := NewManager(NewCookieStore(secret, false))
	carol := models.Identity{Username: "carol", Role: models.RoleTeamMember}

	first := httptest.NewRecorder()
	require.NoError(t, m.SignIn(first, httptest.NewRequest(http.MethodPost, "/login", nil), carol))
	second := httptest.NewRecorder()
	require.NoError(t, m.SignIn(second, httptest.NewRequest(http.MethodPost, "/login", nil), carol))

	firstKey := m.DashboardKey(carryCookies(first, http.MethodGet, "/member"))
	secondKey := m.DashboardKey(carryCookies(second, http.MethodGet, "/member"))
	assert.NotEmpty(t, firstKey)
	assert.NotEqual(t, firstKey, secondKey)
	assert.Equal(t, firstKey, m.DashboardKey(carryCookies(first, http.MethodGet, "/member")))

	assert.Empty(t, m.DashboardKey(httptest.NewRequest(http.MethodGet, "/member", nil)))
}
