package storage

import (
	"github.com/mvdbrink/pubtube/model"
)

type PostgresAttemptRepository struct {
	postgres *Postgres
}

func NewPostgresAttemptRepository(postgres *Postgres) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{postgres: postgres}
}

func (r *PostgresAttemptRepository) Record(attempt model.Attempt) error {
	_, err := r.postgres.db.Exec(`
INSERT INTO publish_attempt (id, session_id, video_id, title, created_at)
VALUES ($1, $2, $3, $4, $5)
`, attempt.ID, attempt.SessionID, attempt.VideoID, attempt.Title, attempt.CreatedAt)

	return err
}

func (r *PostgresAttemptRepository) FindBySession(sessionID string) ([]model.Attempt, error) {
	rows, err := r.postgres.db.Query(`
SELECT id, session_id, video_id, title, created_at
FROM publish_attempt
WHERE session_id = $1
ORDER BY created_at
`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.Attempt{}
	for rows.Next() {
		var attempt model.Attempt
		if err := rows.Scan(&attempt.ID, &attempt.SessionID, &attempt.VideoID, &attempt.Title, &attempt.CreatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}
