package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOAuthClient() *OAuthClient {
	return &OAuthClient{
		ClientID:                "test-client-id.apps.googleusercontent.com",
		ProjectID:               "test-project",
		AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
		TokenURI:                "https://oauth2.googleapis.com/token",
		AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
		ClientSecret:            "test-secret",
		RedirectURIs:            []string{"http://localhost"},
	}
}

func TestValidateOAuthClient_InstalledOnly(t *testing.T) {
	err := ValidateOAuthClient(&OAuthClientConfig{Installed: testOAuthClient()})
	assert.NoError(t, err)
}

func TestValidateOAuthClient_WebOnly(t *testing.T) {
	err := ValidateOAuthClient(&OAuthClientConfig{Web: testOAuthClient()})
	assert.NoError(t, err)
}

func TestValidateOAuthClient_NoSections(t *testing.T) {
	err := ValidateOAuthClient(&OAuthClientConfig{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateOAuthClient_MissingClientID(t *testing.T) {
	client := testOAuthClient()
	client.ClientID = ""

	err := ValidateOAuthClient(&OAuthClientConfig{Installed: client})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ClientID")
}

func TestValidateOAuthClient_InvalidURL(t *testing.T) {
	client := testOAuthClient()
	client.AuthURI = "not-a-valid-url"

	err := ValidateOAuthClient(&OAuthClientConfig{Web: client})
	assert.Error(t, err)
}

func TestLoadOAuthClientFromPath_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	oauthPath := filepath.Join(tmpDir, "oauthClient.json")

	oauthContent := `{
  "web": {
    "client_id": "web-client.apps.googleusercontent.com",
    "project_id": "test-project",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "web-secret",
    "redirect_uris": ["https://roster.example.com/auth/callback"]
  }
}`
	require.NoError(t, os.WriteFile(oauthPath, []byte(oauthContent), 0644))

	cfg, err := LoadOAuthClientFromPath(oauthPath)
	require.NoError(t, err)
	require.NotNil(t, cfg.Web)
	assert.Nil(t, cfg.Installed)
	assert.Equal(t, "web-client.apps.googleusercontent.com", cfg.Web.ClientID)
	assert.Equal(t, []string{"https://roster.example.com/auth/callback"}, cfg.Web.RedirectURIs)
}

func TestLoadOAuthClientFromPath_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	oauthPath := filepath.Join(tmpDir, "oauthClient.json")
	require.NoError(t, os.WriteFile(oauthPath, []byte("{not json"), 0644))

	_, err := LoadOAuthClientFromPath(oauthPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse oauth client file")
}

func TestFindOAuthFile_EnvSuffix(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)

	require.NoError(t, os.WriteFile("oauthClient.test.json", []byte("{}"), 0644))

	path, err := findOAuthFile("test")
	require.NoError(t, err)
	assert.Equal(t, "oauthClient.test.json", path)

	_, err = findOAuthFile("prod")
	assert.Error(t, err)
}
