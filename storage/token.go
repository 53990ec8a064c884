package storage

import (
	"database/sql"
	"time"

	"github.com/mvdbrink/pubtube/model"
)

type PostgresTokenStore struct {
	postgres *Postgres
}

func NewPostgresTokenStore(postgres *Postgres) *PostgresTokenStore {
	return &PostgresTokenStore{postgres: postgres}
}

func (s *PostgresTokenStore) Save(sessionID string, token model.Token) error {
	var expiresAt *time.Time
	if !token.ExpiresAt.IsZero() {
		expiresAt = &token.ExpiresAt
	}

	_, err := s.postgres.db.Exec(`
INSERT INTO session_token (session_id, access_token, refresh_token, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id) DO UPDATE
SET access_token = $2, refresh_token = $3, expires_at = $4
`, sessionID, token.AccessToken, token.RefreshToken, expiresAt)

	return err
}

func (s *PostgresTokenStore) Find(sessionID string) (model.Token, error) {
	row := s.postgres.db.QueryRow(`
SELECT access_token, refresh_token, expires_at
FROM session_token
WHERE session_id = $1
`, sessionID)

	var token model.Token
	var expiresAt sql.NullTime
	err := row.Scan(&token.AccessToken, &token.RefreshToken, &expiresAt)
	switch {
	case err == sql.ErrNoRows:
		return model.Token{}, ErrNotFound
	case err != nil:
		return model.Token{}, err
	}
	if expiresAt.Valid {
		token.ExpiresAt = expiresAt.Time
	}

	return token, nil
}

func (s *PostgresTokenStore) Delete(sessionID string) error {
	_, err := s.postgres.db.Exec(`DELETE FROM session_token WHERE session_id = $1`, sessionID)

	return err
}
