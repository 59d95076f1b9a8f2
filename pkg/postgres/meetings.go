package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/db"
)

const meetingColumns = `id, name, description, created_at, updated_at`

func scanMeeting(row scanner) (*model.Meeting, error) {
	var m model.Meeting
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMeetings returns all meetings ordered by name
func (d *DB) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+meetingColumns+` FROM meetings ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	meetings := []model.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meetings: %w", err)
	}

	return meetings, nil
}

func (d *DB) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	m, err := scanMeeting(d.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting %s: %w", id, notFound(err))
	}
	return m, nil
}

// FindMeetingByName returns the oldest meeting with the given name
func (d *DB) FindMeetingByName(ctx context.Context, name string) (*model.Meeting, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE name = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, strings.TrimSpace(name))

	m, err := scanMeeting(row)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting %q: %w", name, notFound(err))
	}
	return m, nil
}

func (d *DB) InsertMeeting(ctx context.Context, in model.MeetingInput) (*model.Meeting, error) {
	row := d.pool.QueryRow(ctx, `
		INSERT INTO meetings (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING `+meetingColumns,
		uuid.NewString(), strings.TrimSpace(in.Name), nullableString(in.Description))

	m, err := scanMeeting(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meeting: %w", err)
	}
	return m, nil
}

func (d *DB) UpdateMeeting(ctx context.Context, id string, upd model.MeetingUpdate) (*model.Meeting, error) {
	var set setClause
	if upd.Name != nil {
		set.add("name", strings.TrimSpace(*upd.Name))
	}
	if upd.Description != nil {
		set.addNullable("description", *upd.Description)
	}
	if set.empty() {
		return d.GetMeeting(ctx, id)
	}

	clause, args := set.sql(id)
	m, err := scanMeeting(d.pool.QueryRow(ctx, `UPDATE meetings `+clause+` RETURNING `+meetingColumns, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting %s: %w", id, notFound(err))
	}
	return m, nil
}

// DeleteMeeting removes a meeting. Participants and leaders referencing it
// are detached by the foreign key.
func (d *DB) DeleteMeeting(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete meeting %s: %w", id, db.ErrNotFound)
	}
	return nil
}
