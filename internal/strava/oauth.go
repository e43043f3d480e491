package strava

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"

	// Refresh tokens that expire within this many seconds
	expirySlack = 300
)

// OAuthConfig returns an OAuth2 config for Strava's web redirect flow.
func OAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		RedirectURL: redirectURI,
		Scopes:      []string{"read,activity:read_all"},
	}
}

// Token is the subset of the Strava OAuth token response the server stores.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

func tokenFromOAuth2(token *oauth2.Token) *Token {
	return &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
	}
}

// AuthCodeURL builds the Strava authorization URL for the given CSRF state.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// Exchange trades an authorization code for tokens.
func Exchange(ctx context.Context, cfg *oauth2.Config, code string) (*Token, error) {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	return tokenFromOAuth2(token), nil
}

// Refresh obtains a fresh access token using the stored refresh token.
func Refresh(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*Token, error) {
	// An already-expired token forces TokenSource to refresh
	oldToken := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour),
	}

	newToken, err := cfg.TokenSource(ctx, oldToken).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return tokenFromOAuth2(newToken), nil
}

// TokenExpired checks if the token is expired or will expire soon.
func TokenExpired(expiresAt int64) bool {
	return time.Now().Unix() > (expiresAt - expirySlack)
}
