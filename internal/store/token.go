package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ayusman/performative/internal/spotify"
)

// TokenRepository holds the single cached Spotify token. It implements
// spotify.TokenStore.
type TokenRepository struct {
	db *sql.DB
}

// Tokens returns the token repository for this store.
func (s *Store) Tokens() *TokenRepository {
	return &TokenRepository{db: s.db}
}

// Load returns the cached token, or nil with no error when none is stored.
func (r *TokenRepository) Load() (*spotify.Token, error) {
	t := &spotify.Token{}
	err := r.db.QueryRow(
		`SELECT access_token, token_type, scope, refresh_token, expires_at
		 FROM spotify_tokens WHERE id = 1`,
	).Scan(&t.AccessToken, &t.TokenType, &t.Scope, &t.RefreshToken, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// Save replaces the cached token.
func (r *TokenRepository) Save(t *spotify.Token) error {
	_, err := r.db.Exec(
		`INSERT INTO spotify_tokens (id, access_token, token_type, scope, refresh_token, expires_at, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			scope = excluded.scope,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		t.AccessToken, t.TokenType, t.Scope, t.RefreshToken, t.ExpiresAt, time.Now(),
	)
	return err
}

// Delete removes the cached token. It is not an error if none is stored.
func (r *TokenRepository) Delete() error {
	_, err := r.db.Exec(`DELETE FROM spotify_tokens WHERE id = 1`)
	return err
}

// Exists reports whether a token is cached.
func (r *TokenRepository) Exists() (bool, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM spotify_tokens`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
