package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/rosterimport"
	"github.com/bookclub/roster-admin/pkg/db"
	"github.com/bookclub/roster-admin/pkg/spreadsheet"
)

// ImportStore defines the database operations needed to import a roster
type ImportStore interface {
	FindMeetingByName(ctx context.Context, name string) (*model.Meeting, error)
	InsertMeeting(ctx context.Context, in model.MeetingInput) (*model.Meeting, error)
	InsertParticipant(ctx context.Context, in model.ParticipantInput) (*model.Participant, error)
}

// ImportFailure is a row that could not be imported
type ImportFailure struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportResult summarises an import
type ImportResult struct {
	ParticipationMonth string                `json:"participation_month"`
	Imported           int                   `json:"imported"`
	Failures           []ImportFailure       `json:"failures"`
	Meetings           []model.MeetingOption `json:"meetings"`
	DryRun             bool                  `json:"dry_run"`
}

// ImportRosterFile reads the first worksheet of an xlsx payload and imports it.
// An unreadable payload aborts the import before anything is written.
func ImportRosterFile(ctx context.Context, store ImportStore, logger *zap.Logger, r io.Reader, filename string, dryRun bool) (*ImportResult, error) {
	rows, err := spreadsheet.ReadFirstSheet(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	logger.Debug("Read roster file", zap.String("filename", filename), zap.Int("rows", len(rows)))

	return ImportRoster(ctx, store, logger, rows, filename, dryRun)
}

// ImportRoster normalizes rows and stores every valid participant. source is
// the file name (or any label) that carries the participation month.
// Invalid rows are reported in the result; store failures abort.
func ImportRoster(ctx context.Context, store ImportStore, logger *zap.Logger, rows []rosterimport.Row, source string, dryRun bool) (*ImportResult, error) {
	records := rosterimport.Normalize(rows, source)

	result := &ImportResult{
		ParticipationMonth: rosterimport.ParticipationMonthFromFilename(source),
		Failures:           []ImportFailure{},
		Meetings:           []model.MeetingOption{},
		DryRun:             dryRun,
	}
	logger.Info("Importing roster",
		zap.String("source", source),
		zap.Int("records", len(records)),
		zap.Bool("dry_run", dryRun))

	meetings := newMeetingResolver(store, dryRun)

	for _, rec := range records {
		in := rec.Input
		if err := model.Validate(in); err != nil {
			result.fail(logger, rec, err)
			continue
		}

		if rec.MeetingName != "" {
			opt, err := meetings.resolve(ctx, rec.MeetingName)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve meeting %q (row %d): %w", rec.MeetingName, rec.Row, err)
			}
			if opt.ID != "" {
				id := opt.ID
				in.CurrentMeetingID = &id
			}
		}

		if dryRun {
			result.Imported++
			continue
		}

		if _, err := store.InsertParticipant(ctx, in); err != nil {
			if model.IsValidationError(err) {
				result.fail(logger, rec, err)
				continue
			}
			return nil, fmt.Errorf("failed to insert participant (row %d): %w", rec.Row, err)
		}
		result.Imported++
	}

	result.Meetings = meetings.resolved
	logger.Info("Roster import finished",
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Failures)),
		zap.Int("meetings", len(result.Meetings)))

	return result, nil
}

func (r *ImportResult) fail(logger *zap.Logger, rec rosterimport.Record, err error) {
	logger.Warn("Skipping roster row",
		zap.Int("row", rec.Row),
		zap.String("name", rec.Input.Name),
		zap.Error(err))
	r.Failures = append(r.Failures, ImportFailure{Row: rec.Row, Name: rec.Input.Name, Reason: err.Error()})
}

// meetingResolver finds or creates meetings by name once per import. In a
// dry run missing meetings are reported with an empty id instead of created.
type meetingResolver struct {
	store    ImportStore
	dryRun   bool
	byName   map[string]model.MeetingOption
	resolved []model.MeetingOption
}

func newMeetingResolver(store ImportStore, dryRun bool) *meetingResolver {
	return &meetingResolver{
		store:    store,
		dryRun:   dryRun,
		byName:   make(map[string]model.MeetingOption),
		resolved: []model.MeetingOption{},
	}
}

func (m *meetingResolver) resolve(ctx context.Context, name string) (model.MeetingOption, error) {
	if opt, ok := m.byName[name]; ok {
		return opt, nil
	}

	var opt model.MeetingOption
	existing, err := m.store.FindMeetingByName(ctx, name)
	switch {
	case err == nil:
		opt = model.MeetingOption{ID: existing.ID, Name: existing.Name}
	case !errors.Is(err, db.ErrNotFound):
		return model.MeetingOption{}, err
	case m.dryRun:
		opt = model.MeetingOption{Name: name}
	default:
		created, err := m.store.InsertMeeting(ctx, model.MeetingInput{Name: name})
		if err != nil {
			return model.MeetingOption{}, err
		}
		opt = model.MeetingOption{ID: created.ID, Name: created.Name}
	}

	m.byName[name] = opt
	m.resolved = append(m.resolved, opt)
	return opt, nil
}
