// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	authorityURL = "https://login.microsoftonline.com"
	graphScope   = "https://graph.microsoft.com/.default"
)

// CredentialInterface is the tagged union of the two Entra ID credential
// presets. Both produce an equivalent token source; the preset is a
// configuration choice, not a behavioral difference.
type CredentialInterface interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

var (
	_ CredentialInterface = (*SharedSecretCredential)(nil)
	_ CredentialInterface = (*DelegatedCredential)(nil)
)

// SharedSecretCredential authenticates the application itself with a client
// secret (OAuth2 client credentials grant).
type SharedSecretCredential struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// Authority overrides the token endpoint base, for tests.
	Authority string
}

func (c *SharedSecretCredential) TokenSource(ctx context.Context) oauth2.TokenSource {
	cfg := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     tokenURL(c.Authority, c.TenantID),
		Scopes:       []string{graphScope},
	}
	return cfg.TokenSource(ctx)
}

// DelegatedCredential authenticates on behalf of a user principal (OAuth2
// resource owner password grant).
type DelegatedCredential struct {
	TenantID string
	ClientID string
	Username string
	Password string

	Authority string
}

func (c *DelegatedCredential) TokenSource(ctx context.Context) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID: c.ClientID,
		Endpoint: oauth2.Endpoint{TokenURL: tokenURL(c.Authority, c.TenantID)},
		Scopes:   []string{graphScope},
	}
	return oauth2.ReuseTokenSource(nil, &passwordTokenSource{
		ctx:      ctx,
		config:   cfg,
		username: c.Username,
		password: c.Password,
	})
}

// passwordTokenSource defers the password grant until a token is first
// needed, so constructing a client never performs network I/O.
type passwordTokenSource struct {
	ctx      context.Context
	config   *oauth2.Config
	username string
	password string
}

func (s *passwordTokenSource) Token() (*oauth2.Token, error) {
	return s.config.PasswordCredentialsToken(s.ctx, s.username, s.password)
}

func tokenURL(authority, tenantID string) string {
	if authority == "" {
		authority = authorityURL
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, tenantID)
}
