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

// LeaderAdminStore defines the database operations needed to manage leaders
type LeaderAdminStore interface {
	db.LeaderStore
	db.AuthUserStore
	GetMeeting(ctx context.Context, id string) (*model.Meeting, error)
}

// ListLeaders returns leaders newest first with their meeting names
func ListLeaders(ctx context.Context, store db.LeaderStore) ([]model.Leader, error) {
	leaders, err := store.ListLeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaders: %w", err)
	}
	if leaders == nil {
		leaders = []model.Leader{}
	}
	return leaders, nil
}

// CreateLeader registers the leader's email for sign-in and stores the leader
func CreateLeader(ctx context.Context, store LeaderAdminStore, logger *zap.Logger, in model.LeaderInput) (*model.Leader, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.GoogleEmail = strings.ToLower(strings.TrimSpace(in.GoogleEmail))
	in.AssignedMeetingID = trimPtr(in.AssignedMeetingID)
	if in.AssignedMeetingID != nil && *in.AssignedMeetingID == "" {
		in.AssignedMeetingID = nil
	}

	if err := model.Validate(in); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, store, "assigned_meeting_id", in.AssignedMeetingID); err != nil {
		return nil, err
	}

	if err := ensureAuthUser(ctx, store, logger, in.GoogleEmail); err != nil {
		return nil, err
	}

	leader, err := store.InsertLeader(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to insert leader: %w", err)
	}

	logger.Info("Created leader", zap.String("id", leader.ID), zap.String("email", leader.GoogleEmail))
	return leader, nil
}

// UpdateLeader applies a partial update. A changed email is registered for sign-in first.
func UpdateLeader(ctx context.Context, store LeaderAdminStore, logger *zap.Logger, id string, upd model.LeaderUpdate) (*model.Leader, error) {
	upd.Name = trimPtr(upd.Name)
	upd.Phone = trimPtr(upd.Phone)
	upd.AssignedMeetingID = trimPtr(upd.AssignedMeetingID)
	if upd.GoogleEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.GoogleEmail))
		upd.GoogleEmail = &email
	}

	if err := model.Validate(upd); err != nil {
		return nil, err
	}
	if err := checkMeetingRef(ctx, store, "assigned_meeting_id", upd.AssignedMeetingID); err != nil {
		return nil, err
	}

	if upd.GoogleEmail != nil {
		if err := ensureAuthUser(ctx, store, logger, *upd.GoogleEmail); err != nil {
			return nil, err
		}
	}

	leader, err := store.UpdateLeader(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update leader %s: %w", id, err)
	}

	logger.Info("Updated leader", zap.String("id", id))
	return leader, nil
}

// DeleteLeader removes a leader. The sign-in registration is kept.
func DeleteLeader(ctx context.Context, store db.LeaderStore, logger *zap.Logger, id string) error {
	if err := store.DeleteLeader(ctx, id); err != nil {
		return fmt.Errorf("failed to delete leader %s: %w", id, err)
	}
	logger.Info("Deleted leader", zap.String("id", id))
	return nil
}

// GetLeaderByEmail returns the leader profile signed in as email
func GetLeaderByEmail(ctx context.Context, store db.LeaderStore, email string) (*model.Leader, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	leader, err := store.GetLeaderByEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get leader: %w", err)
	}
	return leader, nil
}

// ensureAuthUser registers email for sign-in. An already registered email
// is not an error.
func ensureAuthUser(ctx context.Context, store db.AuthUserStore, logger *zap.Logger, email string) error {
	err := store.CreateAuthUser(ctx, email)
	if errors.Is(err, db.ErrAlreadyRegistered) {
		logger.Debug("Auth user already registered", zap.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to register auth user: %w", err)
	}
	return nil
}
