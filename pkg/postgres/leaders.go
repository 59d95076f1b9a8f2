package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/db"
)

const leaderSelect = `
	SELECT l.id, l.gender, l.name, l.phone, l.google_email, l.assigned_meeting_id, m.name,
		l.created_at, l.updated_at
	FROM leaders l
	LEFT JOIN meetings m ON m.id = l.assigned_meeting_id`

func scanLeader(row scanner) (*model.Leader, error) {
	var (
		l      model.Leader
		gender string
	)
	err := row.Scan(&l.ID, &gender, &l.Name, &l.Phone, &l.GoogleEmail, &l.AssignedMeetingID, &l.MeetingName,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Gender = model.Gender(gender)
	return &l, nil
}

// ListLeaders returns all leaders, newest first, with their meeting name
func (d *DB) ListLeaders(ctx context.Context) ([]model.Leader, error) {
	rows, err := d.pool.Query(ctx, leaderSelect+` ORDER BY l.created_at DESC, l.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaders: %w", err)
	}
	defer rows.Close()

	leaders := []model.Leader{}
	for rows.Next() {
		l, err := scanLeader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leader: %w", err)
		}
		leaders = append(leaders, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaders: %w", err)
	}

	return leaders, nil
}

func (d *DB) GetLeader(ctx context.Context, id string) (*model.Leader, error) {
	l, err := scanLeader(d.pool.QueryRow(ctx, leaderSelect+` WHERE l.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get leader %s: %w", id, notFound(err))
	}
	return l, nil
}

// GetLeaderByEmail matches case-insensitively
func (d *DB) GetLeaderByEmail(ctx context.Context, email string) (*model.Leader, error) {
	l, err := scanLeader(d.pool.QueryRow(ctx, leaderSelect+` WHERE LOWER(l.google_email) = LOWER($1)`, strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get leader by email: %w", notFound(err))
	}
	return l, nil
}

// InsertLeader stores a leader. A duplicate email is a validation error.
func (d *DB) InsertLeader(ctx context.Context, in model.LeaderInput) (*model.Leader, error) {
	id := uuid.NewString()
	_, err := d.pool.Exec(ctx, `
		INSERT INTO leaders (id, gender, name, phone, google_email, assigned_meeting_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, string(in.Gender), strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone),
		strings.ToLower(strings.TrimSpace(in.GoogleEmail)), nullableString(in.AssignedMeetingID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewValidationError("google_email", "is already registered to another leader")
		}
		return nil, fmt.Errorf("failed to insert leader: %w", err)
	}

	return d.GetLeader(ctx, id)
}

func (d *DB) UpdateLeader(ctx context.Context, id string, upd model.LeaderUpdate) (*model.Leader, error) {
	var set setClause
	if upd.Gender != nil {
		set.add("gender", string(*upd.Gender))
	}
	if upd.Name != nil {
		set.add("name", strings.TrimSpace(*upd.Name))
	}
	if upd.Phone != nil {
		set.add("phone", strings.TrimSpace(*upd.Phone))
	}
	if upd.GoogleEmail != nil {
		set.add("google_email", strings.ToLower(strings.TrimSpace(*upd.GoogleEmail)))
	}
	if upd.AssignedMeetingID != nil {
		set.addNullable("assigned_meeting_id", *upd.AssignedMeetingID)
	}
	if set.empty() {
		return d.GetLeader(ctx, id)
	}

	clause, args := set.sql(id)
	tag, err := d.pool.Exec(ctx, `UPDATE leaders `+clause, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.NewValidationError("google_email", "is already registered to another leader")
		}
		return nil, fmt.Errorf("failed to update leader %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("failed to update leader %s: %w", id, db.ErrNotFound)
	}

	return d.GetLeader(ctx, id)
}

func (d *DB) DeleteLeader(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM leaders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leader %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete leader %s: %w", id, db.ErrNotFound)
	}
	return nil
}
