package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/db"
)

var (
	// ErrInvalidEmail means the email was missing or malformed
	ErrInvalidEmail = errors.New("a valid email is required")
	// ErrUnregistered means the email is in neither role table
	ErrUnregistered = errors.New("this Google account is not registered; contact an administrator")
)

// RoleStore defines the lookups needed to resolve a role
type RoleStore interface {
	GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error)
	GetLeaderByEmail(ctx context.Context, email string) (*model.Leader, error)
}

// NormalizeEmail trims and lower-cases an email and checks its shape
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// ResolveRole looks an email up in the administrator table, then the leader table
func ResolveRole(ctx context.Context, store RoleStore, logger *zap.Logger, email string) (*model.RoleResolution, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	admin, err := store.GetAdministratorByEmail(ctx, normalized)
	switch {
	case err == nil:
		logger.Debug("Resolved administrator", zap.String("email", normalized))
		return &model.RoleResolution{Role: model.RoleAdmin, ProfileID: admin.ID}, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to look up administrator: %w", err)
	}

	leader, err := store.GetLeaderByEmail(ctx, normalized)
	switch {
	case err == nil:
		logger.Debug("Resolved leader", zap.String("email", normalized))
		return &model.RoleResolution{
			Role:              model.RoleLeader,
			ProfileID:         leader.ID,
			AssignedMeetingID: leader.AssignedMeetingID,
		}, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to look up leader: %w", err)
	}

	logger.Info("Unregistered account attempted sign-in", zap.String("email", normalized))
	return nil, ErrUnregistered
}
