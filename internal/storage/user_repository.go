package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/easysks/easysks/internal/domain"
)

// UserRepository maps external identities (auth provider + subject) to
// application users.
type UserRepository struct {
	ext sqlx.ExtContext
}

type userRow struct {
	ID                 string  `db:"id"`
	AuthProvider       string  `db:"auth_provider"`
	AuthProviderUserID string  `db:"auth_provider_user_id"`
	Email              *string `db:"email"`
	CreatedAt          string  `db:"created_at"`
	UpdatedAt          string  `db:"updated_at"`
}

const userColumns = "id, auth_provider, auth_provider_user_id, email, created_at, updated_at"

// GetOrCreate returns the user for the given external identity, creating it
// on first sight. The stored email is refreshed when the token carries one.
func (r *UserRepository) GetOrCreate(ctx context.Context, provider, providerUserID string, email *string) (*domain.AppUser, error) {
	existing, err := r.getByIdentity(ctx, provider, providerUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if email != nil && (existing.Email == nil || *existing.Email != *email) {
			now := time.Now().UTC()
			_, err := r.ext.ExecContext(ctx,
				"UPDATE users SET email = ?, updated_at = ? WHERE id = ?",
				email, timeText(now), existing.ID)
			if err != nil {
				return nil, fmt.Errorf("update user email: %w", err)
			}
			existing.Email = email
			existing.UpdatedAt = now
		}
		return existing, nil
	}

	now := time.Now().UTC()
	user := domain.AppUser{
		ID:                 uuid.NewString(),
		AuthProvider:       provider,
		AuthProviderUserID: providerUserID,
		Email:              email,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	_, err = r.ext.ExecContext(ctx, `
		INSERT INTO users (id, auth_provider, auth_provider_user_id, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (auth_provider, auth_provider_user_id) DO NOTHING`,
		user.ID, user.AuthProvider, user.AuthProviderUserID, user.Email,
		timeText(now), timeText(now))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Re-read to cover the lost-insert case under concurrent provisioning.
	created, err := r.getByIdentity(ctx, provider, providerUserID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("user %s/%s vanished after insert", provider, providerUserID)
	}
	return created, nil
}

// GetByID returns the user with the given application id, or nil.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.AppUser, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return row.toDomain()
}

func (r *UserRepository) getByIdentity(ctx context.Context, provider, providerUserID string) (*domain.AppUser, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.ext, &row,
		"SELECT "+userColumns+" FROM users WHERE auth_provider = ? AND auth_provider_user_id = ?",
		provider, providerUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s/%s: %w", provider, providerUserID, err)
	}
	return row.toDomain()
}

func (row userRow) toDomain() (*domain.AppUser, error) {
	createdAt, err := parseTimeText(row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user row %s: %w", row.ID, err)
	}
	updatedAt, err := parseTimeText(row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("user row %s: %w", row.ID, err)
	}
	return &domain.AppUser{
		ID:                 row.ID,
		AuthProvider:       row.AuthProvider,
		AuthProviderUserID: row.AuthProviderUserID,
		Email:              row.Email,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}
