package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/internal/config"
	"github.com/bookclub/roster-admin/pkg/clients/sheetsclient"
	"github.com/bookclub/roster-admin/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Logger   *zap.Logger
	Ctx      context.Context

	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
}

// OAuthClient loads the Google OAuth client file on first use
func (a *AppContext) OAuthClient() (*config.OAuthClientConfig, error) {
	if a.oauthCfg != nil {
		return a.oauthCfg, nil
	}

	a.Logger.Info("Loading OAuth client configuration")
	cfg, err := config.LoadOAuthClientWithEnv(a.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	a.oauthCfg = cfg
	return cfg, nil
}

// SheetsClient authenticates against Google Sheets on first use. Later calls
// in an interactive session reuse the client.
func (a *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if a.sheetsClient != nil {
		return a.sheetsClient, nil
	}

	oauthCfg, err := a.OAuthClient()
	if err != nil {
		return nil, err
	}

	a.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(a.Ctx, oauthCfg, a.Env, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	a.sheetsClient = client
	return client, nil
}
