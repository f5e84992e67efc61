package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"linkup/infrastructure"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*User, error)
}

const userColumns = `id, name, username, avatar_url, bio, email, phone, address, created_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, infrastructure.ErrNotFound
		}
		if infrastructure.IsUndefinedTable(err) {
			return nil, infrastructure.ErrSchemaNotProvisioned
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByIDs fetches profiles in a single round trip. Missing identifiers are
// simply absent from the result; callers substitute placeholders.
func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return nil, infrastructure.ErrSchemaNotProvisioned
		}
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var username, avatarURL, bio, email, phone, address sql.NullString
	var createdAt sql.NullTime

	err := row.Scan(&u.ID, &u.Name, &username, &avatarURL, &bio, &email, &phone, &address, &createdAt)
	if err != nil {
		return nil, err
	}

	u.Username = nullableString(username)
	u.AvatarURL = nullableString(avatarURL)
	u.Bio = nullableString(bio)
	u.Email = nullableString(email)
	u.Phone = nullableString(phone)
	u.Address = nullableString(address)
	if createdAt.Valid {
		t := createdAt.Time
		u.CreatedAt = &t
	}
	return &u, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
