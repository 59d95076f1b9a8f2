package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/db"
)

// ParticipantAdminStore defines the database operations needed to manage participants
type ParticipantAdminStore interface {
	db.ParticipantStore
	GetMeeting(ctx context.Context, id string) (*model.Meeting, error)
}

// CreateParticipant validates and stores a new participant
func CreateParticipant(ctx context.Context, store ParticipantAdminStore, logger *zap.Logger, in model.ParticipantInput) (*model.Participant, error) {
	in = trimParticipantInput(in)
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, store, "current_meeting_id", in.CurrentMeetingID); err != nil {
		return nil, err
	}

	p, err := store.InsertParticipant(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participant: %w", err)
	}

	logger.Info("Created participant", zap.String("id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateParticipant applies a partial update. Only the fields present are validated.
func UpdateParticipant(ctx context.Context, store ParticipantAdminStore, logger *zap.Logger, id string, upd model.ParticipantUpdate) (*model.Participant, error) {
	upd.Name = trimPtr(upd.Name)
	upd.Phone = trimPtr(upd.Phone)
	upd.CurrentMeetingID = trimPtr(upd.CurrentMeetingID)
	if err := model.Validate(upd); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, store, "current_meeting_id", upd.CurrentMeetingID); err != nil {
		return nil, err
	}

	p, err := store.UpdateParticipant(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update participant %s: %w", id, err)
	}

	logger.Info("Updated participant", zap.String("id", id))
	return p, nil
}

// DeleteParticipant removes a participant by id
func DeleteParticipant(ctx context.Context, store db.ParticipantStore, logger *zap.Logger, id string) error {
	if err := store.DeleteParticipant(ctx, id); err != nil {
		return fmt.Errorf("failed to delete participant %s: %w", id, err)
	}
	logger.Info("Deleted participant", zap.String("id", id))
	return nil
}

// GetParticipant fetches a participant by id
func GetParticipant(ctx context.Context, store db.ParticipantStore, id string) (*model.Participant, error) {
	p, err := store.GetParticipant(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}
	return p, nil
}

func trimParticipantInput(in model.ParticipantInput) model.ParticipantInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CurrentMeetingID = trimPtr(in.CurrentMeetingID)
	if in.CurrentMeetingID != nil && *in.CurrentMeetingID == "" {
		in.CurrentMeetingID = nil
	}
	if in.PastMeetings == nil {
		in.PastMeetings = []string{}
	}
	return in
}

// meetingGetter is satisfied by any store that can look meetings up by id
type meetingGetter interface {
	GetMeeting(ctx context.Context, id string) (*model.Meeting, error)
}

// checkMeetingRef rejects references to meetings that do not exist. A nil or
// empty reference is always accepted.
func checkMeetingRef(ctx context.Context, store meetingGetter, field string, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	_, err := store.GetMeeting(ctx, *id)
	if errors.Is(err, db.ErrNotFound) {
		return model.NewValidationError(field, "must reference an existing meeting")
	}
	if err != nil {
		return fmt.Errorf("failed to look up meeting %s: %w", *id, err)
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
