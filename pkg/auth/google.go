package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// ErrUnverifiedEmail means Google did not vouch for the account's email
var ErrUnverifiedEmail = errors.New("google account email is not verified")

// IDTokenValidator checks a Google ID token for the given audience
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// Google runs the web sign-in flow and yields verified emails
type Google struct {
	oauth    *oauth2.Config
	validate IDTokenValidator
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
}

// AuthCodeURL is the consent page the browser is sent to
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the account's verified email
func (g *Google) Exchange(ctx context.Context, code string) (string, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", fmt.Errorf("token response has no id_token")
	}

	payload, err := g.validate(ctx, rawIDToken, g.oauth.ClientID)
	if err != nil {
		return "", fmt.Errorf("failed to validate id token: %w", err)
	}

	return emailFromClaims(payload.Claims)
}

func emailFromClaims(claims map[string]interface{}) (string, error) {
	email, _ := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("id token has no email claim")
	}

	switch v := claims["email_verified"].(type) {
	case bool:
		if !v {
			return "", ErrUnverifiedEmail
		}
	case string:
		if v != "true" {
			return "", ErrUnverifiedEmail
		}
	default:
		return "", ErrUnverifiedEmail
	}

	return email, nil
}
