package follow

import (
	"context"
	"database/sql"
	"fmt"

	"linkup/infrastructure"
)

type Repository interface {
	Counts(ctx context.Context, userID string) (Stats, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	Insert(ctx context.Context, followerID, followeeID string) error
	Delete(ctx context.Context, followerID, followeeID string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Counts(ctx context.Context, userID string) (Stats, error) {
	var stats Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, userID).Scan(&stats.Followers, &stats.Following)
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return Stats{}, infrastructure.ErrSchemaNotProvisioned
		}
		return Stats{}, fmt.Errorf("failed to count follows: %w", err)
	}
	return stats, nil
}

func (r *PostgresRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2
		)
	`, followerID, followeeID).Scan(&exists)
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return false, infrastructure.ErrSchemaNotProvisioned
		}
		return false, fmt.Errorf("failed to query follow state: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID)
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return infrastructure.ErrSchemaNotProvisioned
		}
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2
	`, followerID, followeeID)
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return infrastructure.ErrSchemaNotProvisioned
		}
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}
