package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-grading-service/internal/domain"
)

// ConfigLoader loads raw quiz config JSONB from Postgres. Rows may hold any
// config version; resolution happens in the repositories.
type ConfigLoader struct {
	pool *pgxpool.Pool
}

func NewConfigLoader(pool *pgxpool.Pool) *ConfigLoader {
	return &ConfigLoader{pool: pool}
}

func (l *ConfigLoader) LoadRawConfig(ctx context.Context, quizID string) ([]byte, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quiz_configs WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz config: %w", err)
	}
	return raw, nil
}
