package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// ErrEmptyToken is returned when a client is requested without a token.
var ErrEmptyToken = errors.New("access token is empty")

// TokenSource returns a static bearer token source for a personal access
// token. Asana PATs and GitHub tokens never expire mid-run, so there is
// nothing to refresh.
func TokenSource(token string) (oauth2.TokenSource, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}), nil
}

// GetClient retrieves an *http.Client that authorizes every request with the
// given token.
//
// If ctx carries an *http.Client under oauth2.HTTPClient, its transport is
// used as the base transport. Tests rely on this to reach httptest servers.
func GetClient(ctx context.Context, token string) (*http.Client, error) {
	src, err := TokenSource(token)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, src), nil
}
