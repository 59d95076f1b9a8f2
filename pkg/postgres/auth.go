package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/db"
)

// GetAdministratorByEmail matches case-insensitively
func (d *DB) GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	var (
		a      model.Administrator
		gender string
	)
	err := d.pool.QueryRow(ctx, `
		SELECT id, gender, name, phone, google_email
		FROM administrators
		WHERE LOWER(google_email) = LOWER($1)
	`, strings.TrimSpace(email)).Scan(&a.ID, &gender, &a.Name, &a.Phone, &a.GoogleEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to get administrator by email: %w", notFound(err))
	}
	a.Gender = model.Gender(gender)
	return &a, nil
}

// CreateAuthUser registers an email for sign-in
func (d *DB) CreateAuthUser(ctx context.Context, email string) error {
	_, err := d.pool.Exec(ctx, `INSERT INTO auth_users (email) VALUES ($1)`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isUniqueViolation(err) {
			return db.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create auth user: %w", err)
	}
	return nil
}

// TouchAuthUser records a sign-in, registering the email if needed. Access
// is decided by the role tables, not by this record.
func (d *DB) TouchAuthUser(ctx context.Context, email string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO auth_users (email, last_sign_in_at) VALUES ($1, NOW())
		ON CONFLICT (email) DO UPDATE SET last_sign_in_at = NOW()
	`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to record sign-in: %w", err)
	}
	return nil
}
