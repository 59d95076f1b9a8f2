package httpapi

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclub/roster-admin/pkg/auth"
)

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_RedirectsWithState(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/auth/login?redirect=/participants?page=2", "", nil, "")
	require.Equal(t, http.StatusFound, rec.Code)

	state := findCookie(rec, stateCookie)
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.Equal(t, "https://accounts.example.com/auth?state="+state.Value, rec.Header().Get("Location"))

	redirect := findCookie(rec, redirectCookie)
	require.NotNil(t, redirect)
	value, err := url.QueryUnescape(redirect.Value)
	require.NoError(t, err)
	assert.Equal(t, "/participants?page=2", value)

	rec = api.do(http.MethodGet, "/auth/login?redirect=//evil.example.com", "", nil, "")
	assert.Nil(t, findCookie(rec, redirectCookie))
}

func callbackRequest(state, queryState, code string) *http.Request {
	target := "/auth/callback?" + url.Values{"state": {queryState}, "code": {code}}.Encode()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if state != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
	}
	return req
}

func TestCallback_SignsIn(t *testing.T) {
	api := newTestAPI(t)
	api.signIn.email = leaderEmail

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, callbackRequest("s1", "s1", "code-1"))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://roster.example.com/leader-dashboard", rec.Header().Get("Location"))
	assert.Equal(t, []string{"code-1"}, api.signIn.codes)
	assert.True(t, api.store.authUsers[leaderEmail])

	session := findCookie(rec, auth.CookieName)
	require.NotNil(t, session)
	assert.Equal(t, 3600, session.MaxAge)

	sess, err := api.manager.Authenticate(context.Background(), session.Value)
	require.NoError(t, err)
	assert.Equal(t, leaderEmail, sess.Email)
}

func TestCallback_HonoursRedirect(t *testing.T) {
	api := newTestAPI(t)
	api.signIn.email = adminEmail

	req := callbackRequest("s1", "s1", "code")
	req.AddCookie(&http.Cookie{Name: redirectCookie, Value: "/meetings"})
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://roster.example.com/meetings", rec.Header().Get("Location"))
}

func TestCallback_RoleTablesDecideAccess(t *testing.T) {
	api := newTestAPI(t)

	// registered for sign-in but no longer a leader or admin
	api.store.authUsers["former@example.com"] = true
	api.signIn.email = "former@example.com"
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, callbackRequest("s1", "s1", "code-1"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://roster.example.com/login?error=unauthorized", rec.Header().Get("Location"))
	assert.Nil(t, findCookie(rec, auth.CookieName))

	// admin never provisioned is admitted and recorded
	require.False(t, api.store.authUsers[adminEmail])
	api.signIn.email = adminEmail
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, callbackRequest("s2", "s2", "code-2"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://roster.example.com/participants", rec.Header().Get("Location"))
	assert.True(t, api.store.authUsers[adminEmail])
}

func TestCallback_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		exchange   error
		cookie     string
		query      string
		wantStatus int
		wantTarget string
	}{
		{
			name:       "missing state cookie",
			query:      "s1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "state mismatch",
			cookie:     "s1",
			query:      "s2",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "exchange failure",
			cookie:     "s1",
			query:      "s1",
			exchange:   errors.New("bad code"),
			wantStatus: http.StatusFound,
			wantTarget: "https://roster.example.com/login?error=signin_failed",
		},
		{
			name:       "unregistered email",
			email:      "stranger@example.com",
			cookie:     "s1",
			query:      "s1",
			wantStatus: http.StatusFound,
			wantTarget: "https://roster.example.com/login?error=unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			api.signIn.email = tt.email
			api.signIn.err = tt.exchange

			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, callbackRequest(tt.cookie, tt.query, "code"))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantTarget != "" {
				assert.Equal(t, tt.wantTarget, rec.Header().Get("Location"))
			}
			assert.Nil(t, findCookie(rec, auth.CookieName))
		})
	}
}

func TestSessionAndLogout(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, adminEmail)

	rec := api.do(http.MethodGet, "/auth/session", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"admin@example.com"`)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	rec = api.do(http.MethodPost, "/auth/logout", token, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/auth/session", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCookieIsAccepted(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: api.token(t, leaderEmail)})
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"leader"`)
}

func TestEvents_EndOnSignOut(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	token := api.token(t, adminEmail)
	other := api.token(t, adminEmail)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	type result struct {
		lines []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			done <- result{err: err}
			return
		}
		defer resp.Body.Close()
		var lines []string
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				lines = append(lines, line)
			}
		}
		done <- result{lines: lines, err: scanner.Err()}
	}()

	require.Eventually(t, func() bool {
		api.sessions.mu.Lock()
		defer api.sessions.mu.Unlock()
		return len(api.sessions.subs[adminEmail]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Ending a different session keeps the stream open
	require.NoError(t, api.manager.SignOut(context.Background(), other))
	require.NoError(t, api.manager.SignOut(context.Background(), token))

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, []string{"event:session", `data:{"session":null}`}, res.lines)
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not end")
	}
}
