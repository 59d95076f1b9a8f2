package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/db"
)

const participantSelectColumns = `id, gender, age, name, months, first_registration_month, phone, fee,
	re_registration, latest_registration, current_meeting_id, notes, past_meetings, created_at, updated_at`

func scanParticipant(row scanner) (*model.Participant, error) {
	var (
		p      model.Participant
		gender string
	)
	err := row.Scan(&p.ID, &gender, &p.Age, &p.Name, &p.Months, &p.FirstRegistrationMonth, &p.Phone, &p.Fee,
		&p.ReRegistration, &p.LatestRegistration, &p.CurrentMeetingID, &p.Notes, &p.PastMeetings, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Gender = model.Gender(gender)
	if p.PastMeetings == nil {
		p.PastMeetings = []string{}
	}
	return &p, nil
}

// FindParticipants runs a participant search and counts all matches
func (d *DB) FindParticipants(ctx context.Context, q query.Query) ([]model.Participant, int, error) {
	built, err := buildParticipantSQL(q)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := d.pool.QueryRow(ctx, built.Count, built.CountArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count participants: %w", err)
	}

	rows, err := d.pool.Query(ctx, built.Select, built.SelectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, total, nil
}

// GetParticipant returns db.ErrNotFound when no participant has the id
func (d *DB) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+participantSelectColumns+` FROM participants WHERE id = $1`, id)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %s: %w", id, notFound(err))
	}
	return p, nil
}

// InsertParticipant inserts a participant and returns the stored record
func (d *DB) InsertParticipant(ctx context.Context, in model.ParticipantInput) (*model.Participant, error) {
	pastMeetings := in.PastMeetings
	if pastMeetings == nil {
		pastMeetings = []string{}
	}

	row := d.pool.QueryRow(ctx, `
		INSERT INTO participants (id, gender, age, name, months, first_registration_month, phone, fee,
			re_registration, latest_registration, current_meeting_id, notes, past_meetings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+participantSelectColumns,
		uuid.NewString(), string(in.Gender), in.Age, strings.TrimSpace(in.Name), in.Months, in.FirstRegistrationMonth,
		strings.TrimSpace(in.Phone), in.Fee, in.ReRegistration, in.LatestRegistration,
		nullableString(in.CurrentMeetingID), nullableString(in.Notes), pastMeetings)

	p, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participant: %w", err)
	}
	return p, nil
}

// UpdateParticipant applies the non-nil fields of upd
func (d *DB) UpdateParticipant(ctx context.Context, id string, upd model.ParticipantUpdate) (*model.Participant, error) {
	var set setClause
	if upd.Gender != nil {
		set.add("gender", string(*upd.Gender))
	}
	if upd.Age != nil {
		set.add("age", *upd.Age)
	}
	if upd.Name != nil {
		set.add("name", strings.TrimSpace(*upd.Name))
	}
	if upd.Months != nil {
		set.add("months", *upd.Months)
	}
	if upd.FirstRegistrationMonth != nil {
		set.add("first_registration_month", *upd.FirstRegistrationMonth)
	}
	if upd.Phone != nil {
		set.add("phone", strings.TrimSpace(*upd.Phone))
	}
	if upd.Fee != nil {
		set.add("fee", *upd.Fee)
	}
	if upd.ReRegistration != nil {
		set.add("re_registration", *upd.ReRegistration)
	}
	if upd.LatestRegistration != nil {
		set.add("latest_registration", *upd.LatestRegistration)
	}
	if upd.CurrentMeetingID != nil {
		set.addNullable("current_meeting_id", *upd.CurrentMeetingID)
	}
	if upd.Notes != nil {
		set.addNullable("notes", *upd.Notes)
	}
	if upd.PastMeetings != nil {
		past := *upd.PastMeetings
		if past == nil {
			past = []string{}
		}
		set.add("past_meetings", past)
	}

	if set.empty() {
		return d.GetParticipant(ctx, id)
	}

	clause, args := set.sql(id)
	row := d.pool.QueryRow(ctx, `UPDATE participants `+clause+` RETURNING `+participantSelectColumns, args...)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant %s: %w", id, notFound(err))
	}
	return p, nil
}

// DeleteParticipant returns db.ErrNotFound when nothing was deleted
func (d *DB) DeleteParticipant(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete participant %s: %w", id, db.ErrNotFound)
	}
	return nil
}
