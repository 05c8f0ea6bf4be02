package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teju/task-manager/backend/internal/models"
)

// PostgresStore handles user and task CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and tasks tables if they don't exist. The
// unique constraint on email is what makes concurrent registrations of
// the same address safe; the service layer never check-then-inserts.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         BIGSERIAL    PRIMARY KEY,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			full_name  VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS tasks (
			id          BIGSERIAL    PRIMARY KEY,
			user_id     BIGINT       NOT NULL REFERENCES users(id),
			title       VARCHAR(255) NOT NULL,
			description TEXT         NOT NULL DEFAULT '',
			status      VARCHAR(20)  NOT NULL,
			priority    VARCHAR(20)  NOT NULL,
			due_date    TIMESTAMPTZ,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks (user_id)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, hashedPassword, fullName string) (*models.User, error) {
	u := models.User{Email: email, Password: hashedPassword, FullName: fullName}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		email, hashedPassword, fullName,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password, full_name, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
