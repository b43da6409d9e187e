// Package auth holds the sign-in flow and the session object that feature
// components receive at composition time. Components read the session; only
// the sign-in flow writes it.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/moimhq/moim/internal/api"
)

// Session is the authenticated context passed into feature components.
type Session struct {
	User  *api.User
	Token *oauth2.Token
}

// HTTPClient returns an http.Client that attaches the session's bearer
// token to every request.
func (s *Session) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(s.Token))
}

// SignIn exchanges credentials for a token pair and persists it, so later
// invocations can resume without re-entering the password.
func SignIn(ctx context.Context, baseURL, email, password, tokenPath string) (*oauth2.Token, error) {
	client, err := api.NewClient(baseURL, http.DefaultClient)
	if err != nil {
		return nil, err
	}
	resp, err := client.SignIn(ctx, api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	tok := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.GrantType,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if err := SaveToken(tokenPath, tok); err != nil {
		return nil, fmt.Errorf("unable to save token: %w", err)
	}
	return tok, nil
}

// Resume loads a previously saved token and fetches the member's profile,
// producing a ready session.
func Resume(ctx context.Context, baseURL, tokenPath string) (*Session, error) {
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("not signed in: %w", err)
	}
	s := &Session{Token: tok}
	client, err := api.NewClient(baseURL, s.HTTPClient(ctx))
	if err != nil {
		return nil, err
	}
	user, err := client.MyPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	s.User = user
	return s, nil
}
