package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/db"
)

// ListMeetingOptions returns id/name pairs sorted by name
func ListMeetingOptions(ctx context.Context, store db.MeetingStore) ([]model.MeetingOption, error) {
	meetings, err := store.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	options := make([]model.MeetingOption, 0, len(meetings))
	for _, m := range meetings {
		options = append(options, model.MeetingOption{ID: m.ID, Name: m.Name})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Name < options[j].Name
	})
	return options, nil
}

// CreateMeeting validates and stores a new meeting
func CreateMeeting(ctx context.Context, store db.MeetingStore, logger *zap.Logger, in model.MeetingInput) (*model.Meeting, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	m, err := store.InsertMeeting(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to insert meeting: %w", err)
	}

	logger.Info("Created meeting", zap.String("id", m.ID), zap.String("name", m.Name))
	return m, nil
}

// UpdateMeeting applies a partial update to a meeting
func UpdateMeeting(ctx context.Context, store db.MeetingStore, logger *zap.Logger, id string, upd model.MeetingUpdate) (*model.Meeting, error) {
	upd.Name = trimPtr(upd.Name)
	if err := model.Validate(upd); err != nil {
		return nil, err
	}

	m, err := store.UpdateMeeting(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting %s: %w", id, err)
	}

	logger.Info("Updated meeting", zap.String("id", id))
	return m, nil
}

// DeleteMeeting removes a meeting. References to it are cleared by the store.
func DeleteMeeting(ctx context.Context, store db.MeetingStore, logger *zap.Logger, id string) error {
	if err := store.DeleteMeeting(ctx, id); err != nil {
		return fmt.Errorf("failed to delete meeting %s: %w", id, err)
	}
	logger.Info("Deleted meeting", zap.String("id", id))
	return nil
}

// meetingNameResolver maps meeting ids to names. Unknown ids resolve to
// themselves and a nil id resolves to "".
func meetingNameResolver(meetings []model.Meeting) func(id *string) string {
	names := make(map[string]string, len(meetings))
	for _, m := range meetings {
		names[m.ID] = m.Name
	}
	return func(id *string) string {
		if id == nil || *id == "" {
			return ""
		}
		if name, ok := names[*id]; ok {
			return name
		}
		return *id
	}
}
