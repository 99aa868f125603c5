package whoop

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// Config carries the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       string // space separated
}

// OAuth runs the authorization-code flow against the vendor endpoints.
type OAuth struct {
	cfg   *oauth2.Config
	token *resty.Client
}

func NewOAuth(c Config) *OAuth {
	return &OAuth{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       strings.Fields(c.Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:   c.AuthURL,
				TokenURL:  c.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		token: resty.New().SetTimeout(30 * time.Second),
	}
}

// Configured reports whether a client id is set.
func (o *OAuth) Configured() bool { return o.cfg.ClientID != "" }

// NewState returns an 8 character URL-safe state string.
func NewState() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:8], nil
}

// AuthCodeURL builds the vendor authorization URL for state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state)
}

// TokenError reports a non-success response from the token endpoint.
type TokenError struct {
	StatusCode int
	Body       string
}

func (e *TokenError) Error() string { return fmt.Sprintf("token endpoint status %d: %s", e.StatusCode, e.Body) }

// Exchange trades an authorization code for a session.
func (o *OAuth) Exchange(ctx context.Context, code string) (Session, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return Session{}, &TokenError{StatusCode: re.Response.StatusCode, Body: string(re.Body)}
		}
		return Session{}, err
	}
	sess := Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		sess.Scope = scope
	}
	return sess, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// Refresh obtains a new session from refreshToken. The vendor requires the
// offline scope on refresh requests, which oauth2.TokenSource does not send.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	var out tokenResponse
	resp, err := o.token.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     o.cfg.ClientID,
			"client_secret": o.cfg.ClientSecret,
			"scope":         "offline",
		}).
		SetResult(&out).
		Post(o.cfg.Endpoint.TokenURL)
	if err != nil {
		return Session{}, fmt.Errorf("refresh request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Session{}, &TokenError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	sess := Session{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken, Scope: out.Scope}
	if out.ExpiresIn > 0 {
		sess.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return sess, nil
}

// ExpiresIn returns whole seconds until expiry, or 0 when unknown.
func (s Session) ExpiresIn() int {
	if s.Expiry.IsZero() {
		return 0
	}
	d := time.Until(s.Expiry)
	if d < 0 {
		return 0
	}
	return int(d.Round(time.Second).Seconds())
}
