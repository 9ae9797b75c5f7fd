package spotify

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strings"
)

const (
	// AuthURL is the Spotify authorization endpoint.
	AuthURL = "https://accounts.spotify.com/authorize"

	// TokenURL is the Spotify token endpoint.
	TokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRedirectURI is the default callback URI for the local server.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"

	// CodeVerifierLength is the length of the PKCE code verifier.
	// Spotify requires 43-128 characters.
	CodeVerifierLength = 64

	// StateLength is the length of the state parameter for CSRF protection.
	StateLength = 32
)

// Scopes are the only permissions the trigger needs.
var Scopes = []string{
	"user-modify-playback-state",
	"user-read-playback-state",
}

// OAuthConfig holds the OAuth application settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string

	// TokenEndpoint overrides TokenURL, for tests.
	TokenEndpoint string
}

// NewOAuthConfig creates an OAuth configuration with the default redirect
// URI and scopes.
func NewOAuthConfig(clientID, clientSecret string) *OAuthConfig {
	return &OAuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  DefaultRedirectURI,
		Scopes:       Scopes,
	}
}

func (c *OAuthConfig) tokenURL() string {
	if c.TokenEndpoint != "" {
		return c.TokenEndpoint
	}
	return TokenURL
}

// PKCE holds the code verifier and challenge for the OAuth PKCE flow.
type PKCE struct {
	Verifier  string
	Challenge string
	State     string
}

// NewPKCE generates a new PKCE code verifier, challenge, and state.
func NewPKCE() (*PKCE, error) {
	verifier, err := randomString(CodeVerifierLength)
	if err != nil {
		return nil, err
	}

	state, err := randomString(StateLength)
	if err != nil {
		return nil, err
	}

	return &PKCE{
		Verifier:  verifier,
		Challenge: challengeFor(verifier),
		State:     state,
	}, nil
}

// randomString returns length URL-safe base64 characters.
func randomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(b)
	return encoded[:length], nil
}

// challengeFor returns base64url(sha256(verifier)).
func challengeFor(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// BuildAuthURL constructs the authorization URL with PKCE parameters.
func (c *OAuthConfig) BuildAuthURL(pkce *PKCE) string {
	u, _ := url.Parse(AuthURL)

	q := u.Query()
	q.Set("client_id", c.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.RedirectURI)
	q.Set("code_challenge_method", "S256")
	q.Set("code_challenge", pkce.Challenge)
	q.Set("state", pkce.State)
	if len(c.Scopes) > 0 {
		q.Set("scope", strings.Join(c.Scopes, " "))
	}

	u.RawQuery = q.Encode()
	return u.String()
}
