package db

import (
	"context"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
)

// ParticipantStore defines the interface for participant database operations
type ParticipantStore interface {
	query.Finder
	InsertParticipant(ctx context.Context, in model.ParticipantInput) (*model.Participant, error)
	UpdateParticipant(ctx context.Context, id string, upd model.ParticipantUpdate) (*model.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	GetParticipant(ctx context.Context, id string) (*model.Participant, error)
}

// MeetingStore defines the interface for meeting database operations
type MeetingStore interface {
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*model.Meeting, error)
	// FindMeetingByName matches on the trimmed name; ErrNotFound when absent
	FindMeetingByName(ctx context.Context, name string) (*model.Meeting, error)
	InsertMeeting(ctx context.Context, in model.MeetingInput) (*model.Meeting, error)
	UpdateMeeting(ctx context.Context, id string, upd model.MeetingUpdate) (*model.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// LeaderStore defines the interface for leader database operations
type LeaderStore interface {
	ListLeaders(ctx context.Context) ([]model.Leader, error)
	GetLeader(ctx context.Context, id string) (*model.Leader, error)
	GetLeaderByEmail(ctx context.Context, email string) (*model.Leader, error)
	InsertLeader(ctx context.Context, in model.LeaderInput) (*model.Leader, error)
	UpdateLeader(ctx context.Context, id string, upd model.LeaderUpdate) (*model.Leader, error)
	DeleteLeader(ctx context.Context, id string) error
}

// AdministratorStore is read-only; administrators are provisioned out of band
type AdministratorStore interface {
	GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error)
}

// AuthUserStore records which emails may sign in
type AuthUserStore interface {
	// CreateAuthUser returns ErrAlreadyRegistered when the email exists
	CreateAuthUser(ctx context.Context, email string) error
	TouchAuthUser(ctx context.Context, email string) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	ParticipantStore
	MeetingStore
	LeaderStore
	AdministratorStore
	AuthUserStore
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}
