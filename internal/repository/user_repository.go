package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brandpulse/alerts-backend-go/internal/models"
)

// UserRepository resolves recipient and brand identities. User and brand
// lifecycle is owned by the account collaborator; this repository only
// mirrors the fields the notification engine needs.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(id string) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRow(
		"SELECT id, email, phone, role, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Email, &u.Phone, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

// GetBrand retrieves a brand by ID
func (r *UserRepository) GetBrand(id string) (*models.Brand, error) {
	b := &models.Brand{}
	err := r.db.QueryRow(
		"SELECT id, user_id, name, created_at FROM brands WHERE id = ?", id,
	).Scan(&b.ID, &b.UserID, &b.Name, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan brand: %w", err)
	}
	return b, nil
}

// UpsertUser writes a user row, replacing any previous copy. Called when
// the account collaborator pushes identity updates.
func (r *UserRepository) UpsertUser(u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO users (id, email, phone, role, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, phone = excluded.phone, role = excluded.role`,
		u.ID, u.Email, u.Phone, u.Role, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// UpsertBrand writes a brand row, replacing any previous copy
func (r *UserRepository) UpsertBrand(b *models.Brand) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO brands (id, user_id, name, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, name = excluded.name`,
		b.ID, b.UserID, b.Name, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert brand: %w", err)
	}
	return nil
}
