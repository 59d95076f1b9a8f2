package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/bookclub/roster-admin/internal/config"
)

const (
	AuthPort     = 3000
	authTimeout  = 5 * time.Minute
	callbackPath = "/oauth/callback"
	tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

// ScopeSheetsReadonly lets the CLI read roster tabs
const ScopeSheetsReadonly = "https://www.googleapis.com/auth/spreadsheets.readonly"

// GetOAuthConfig builds the installed-app OAuth2 config used by the CLI
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	if oauthCfg.Installed == nil {
		return nil, fmt.Errorf("oauth client config has no installed section")
	}

	data, err := json.Marshal(struct {
		Installed *config.OAuthClient `json:"installed"`
	}{oauthCfg.Installed})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	cfg, err := google.ConfigFromJSON(data, ScopeSheetsReadonly)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)
	return cfg, nil
}

// InstalledAuth obtains CLI tokens: from the store when still usable,
// otherwise by a browser consent flow answered on a local callback server
type InstalledAuth struct {
	oauth  *oauth2.Config
	store  *TokenStore
	env    string
	logger *zap.Logger

	// tokenInfoURL and listen are replaced in tests
	tokenInfoURL string
	listen       func(ctx context.Context, state string) (string, error)
}

func NewInstalledAuth(oauth *oauth2.Config, store *TokenStore, env string, logger *zap.Logger) *InstalledAuth {
	a := &InstalledAuth{
		oauth:        oauth,
		store:        store,
		env:          env,
		logger:       logger,
		tokenInfoURL: tokenInfoURL,
	}
	a.listen = a.listenForCode
	return a
}

// Token returns a token carrying the required scopes
func (a *InstalledAuth) Token(ctx context.Context) (*oauth2.Token, error) {
	stored, err := a.store.Load(a.env)
	if err != nil {
		a.logger.Warn("Ignoring unreadable stored token", zap.Error(err))
	}
	if stored != nil {
		if token, ok := a.reuse(ctx, stored); ok {
			return token, nil
		}
	}

	a.logger.Info("No valid token found, starting OAuth flow")
	token, err := a.consent(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.store.Save(a.env, token); err != nil {
		a.logger.Warn("Failed to save token", zap.Error(err))
	}
	return token, nil
}

// reuse accepts a stored token that is valid, or refreshable, and still
// carries the required scopes. Rejected tokens are deleted.
func (a *InstalledAuth) reuse(ctx context.Context, stored *oauth2.Token) (*oauth2.Token, bool) {
	token := stored
	refreshed := false

	if !stored.Valid() {
		if stored.RefreshToken == "" {
			return nil, false
		}
		fresh, err := a.oauth.TokenSource(ctx, stored).Token()
		if err != nil {
			a.logger.Warn("Token refresh failed", zap.Error(err))
			return nil, false
		}
		token, refreshed = fresh, true
	}

	if err := a.checkScopes(ctx, token); err != nil {
		a.logger.Warn("Stored token rejected", zap.Error(err))
		if err := a.store.Delete(a.env); err != nil {
			a.logger.Warn("Failed to delete rejected token", zap.Error(err))
		}
		return nil, false
	}

	if refreshed {
		a.logger.Debug("Token refreshed")
		if err := a.store.Save(a.env, token); err != nil {
			a.logger.Warn("Failed to save refreshed token", zap.Error(err))
		}
	}
	return token, true
}

// consent runs the browser flow with a random state and a PKCE verifier
func (a *InstalledAuth) consent(ctx context.Context) (*oauth2.Token, error) {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	authURL := a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	fmt.Printf("\nVisit this URL to authorize the application:\n%s\n\n", authURL)

	code, err := a.listen(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := a.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := a.checkScopes(ctx, token); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return token, nil
}

// checkScopes asks Google's tokeninfo endpoint which scopes the token holds
func (a *InstalledAuth) checkScopes(ctx context.Context, token *oauth2.Token) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.tokenInfoURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create tokeninfo request: %w", err)
	}
	q := req.URL.Query()
	q.Set("access_token", token.AccessToken)
	req.URL.RawQuery = q.Encode()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tokeninfo request failed with status %d", resp.StatusCode)
	}

	var info struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	granted := make(map[string]bool)
	for _, s := range strings.Fields(info.Scope) {
		granted[s] = true
	}
	var missing []string
	for _, s := range a.oauth.Scopes {
		if !granted[s] {
			missing = append(missing, s)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("token is missing required scopes %v; grant every permission on the consent screen", missing)
	}
	return nil
}

// listenForCode serves the redirect target until Google calls back with a
// code for state, the context ends, or the flow times out
func (a *InstalledAuth) listenForCode(ctx context.Context, state string) (string, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", AuthPort))
	if err != nil {
		return "", fmt.Errorf("failed to listen for oauth callback: %w", err)
	}
	return serveCallback(ctx, ln, state, authTimeout)
}

func serveCallback(ctx context.Context, ln net.Listener, state string, timeout time.Duration) (string, error) {
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "Authorization failed: state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			select {
			case errs <- fmt.Errorf("no authorization code received (%s)", q.Get("error")):
			default:
			}
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Authorization Successful</title></head>
<body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>`)

		select {
		case codes <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		code    string
		authErr error
	)
	select {
	case code = <-codes:
	case authErr = <-errs:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", timeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	return code, authErr
}
