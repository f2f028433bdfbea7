package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/folio/internal/db"
	"github.com/debemdeboas/folio/internal/model"
	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	// Upsert creates the user on first sign-in and refreshes the profile
	// fields afterwards. The id never changes.
	Upsert(ctx context.Context, identity Identity) (*model.User, error)
	GetByID(ctx context.Context, id model.UserID) (*model.User, error)
}

type DBUserRepository struct { // implements UserRepository
	db  db.DB
	now func() time.Time
}

func NewDBUserRepository(database db.DB) *DBUserRepository {
	return &DBUserRepository{db: database, now: time.Now}
}

func (r *DBUserRepository) Upsert(ctx context.Context, identity Identity) (*model.User, error) {
	now := r.now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, google_id, email, name, picture, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(google_id) DO UPDATE SET
    email = excluded.email,
    name = excluded.name,
    picture = excluded.picture,
    updated_at = excluded.updated_at`,
		uuid.NewString(), identity.Subject, identity.Email, identity.Name, identity.Picture, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("error upserting user: %w", err)
	}

	return r.getOne(ctx, `WHERE google_id = ?`, identity.Subject)
}

func (r *DBUserRepository) GetByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *DBUserRepository) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, google_id, email, name, picture, created_at, updated_at FROM users `+where, arg,
	).Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Picture, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}
