package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - small key-value pairs such as the last used device
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Spotify tokens table - holds at most one row
		`CREATE TABLE IF NOT EXISTS spotify_tokens (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			access_token TEXT NOT NULL,
			token_type TEXT NOT NULL DEFAULT 'Bearer',
			scope TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			expires_at DATETIME NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
