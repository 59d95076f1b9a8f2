package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/db"
)

// mockStore is an in-memory stand-in for every store interface the services use
type mockStore struct {
	participants map[string]model.Participant
	meetings     []model.Meeting
	leaders      []model.Leader
	admins       []model.Administrator
	authUsers    map[string]bool

	// FindParticipants returns these instead of evaluating the query
	findRows  []model.Participant
	findTotal int
	findErr   error
	findCalls int
	lastQuery query.Query

	lastParticipantUpdate model.ParticipantUpdate

	insertParticipantErr error
	insertMeetingCalls   int
	createAuthUserErr    error
	adminLookupErr       error
	leaderLookupErr      error
	listMeetingsErr      error
}

func newMockStore() *mockStore {
	return &mockStore{
		participants: make(map[string]model.Participant),
		authUsers:    make(map[string]bool),
	}
}

func (m *mockStore) FindParticipants(ctx context.Context, q query.Query) ([]model.Participant, int, error) {
	m.findCalls++
	m.lastQuery = q
	if m.findErr != nil {
		return nil, 0, m.findErr
	}
	return m.findRows, m.findTotal, nil
}

func (m *mockStore) InsertParticipant(ctx context.Context, in model.ParticipantInput) (*model.Participant, error) {
	if m.insertParticipantErr != nil {
		return nil, m.insertParticipantErr
	}
	p := model.Participant{
		ID:                     uuid.NewString(),
		Gender:                 in.Gender,
		Age:                    in.Age,
		Name:                   in.Name,
		Months:                 in.Months,
		FirstRegistrationMonth: in.FirstRegistrationMonth,
		Phone:                  in.Phone,
		Fee:                    in.Fee,
		ReRegistration:         in.ReRegistration,
		LatestRegistration:     in.LatestRegistration,
		CurrentMeetingID:       in.CurrentMeetingID,
		Notes:                  in.Notes,
		PastMeetings:           in.PastMeetings,
		CreatedAt:              time.Date(2025, 12, 8, 1, 0, 0, 0, time.UTC),
	}
	m.participants[p.ID] = p
	return &p, nil
}

func (m *mockStore) UpdateParticipant(ctx context.Context, id string, upd model.ParticipantUpdate) (*model.Participant, error) {
	p, ok := m.participants[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	m.lastParticipantUpdate = upd
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Age != nil {
		p.Age = *upd.Age
	}
	m.participants[id] = p
	return &p, nil
}

func (m *mockStore) DeleteParticipant(ctx context.Context, id string) error {
	if _, ok := m.participants[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.participants, id)
	return nil
}

func (m *mockStore) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	p, ok := m.participants[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *mockStore) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	if m.listMeetingsErr != nil {
		return nil, m.listMeetingsErr
	}
	out := append([]model.Meeting(nil), m.meetings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStore) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	for _, mt := range m.meetings {
		if mt.ID == id {
			mt := mt
			return &mt, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) FindMeetingByName(ctx context.Context, name string) (*model.Meeting, error) {
	for _, mt := range m.meetings {
		if mt.Name == strings.TrimSpace(name) {
			mt := mt
			return &mt, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) InsertMeeting(ctx context.Context, in model.MeetingInput) (*model.Meeting, error) {
	m.insertMeetingCalls++
	mt := model.Meeting{ID: uuid.NewString(), Name: in.Name, Description: in.Description}
	m.meetings = append(m.meetings, mt)
	return &mt, nil
}

func (m *mockStore) UpdateMeeting(ctx context.Context, id string, upd model.MeetingUpdate) (*model.Meeting, error) {
	for i, mt := range m.meetings {
		if mt.ID == id {
			if upd.Name != nil {
				m.meetings[i].Name = *upd.Name
			}
			out := m.meetings[i]
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) DeleteMeeting(ctx context.Context, id string) error {
	for i, mt := range m.meetings {
		if mt.ID == id {
			m.meetings = append(m.meetings[:i], m.meetings[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) ListLeaders(ctx context.Context) ([]model.Leader, error) {
	return m.leaders, nil
}

func (m *mockStore) GetLeader(ctx context.Context, id string) (*model.Leader, error) {
	for _, l := range m.leaders {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) GetLeaderByEmail(ctx context.Context, email string) (*model.Leader, error) {
	if m.leaderLookupErr != nil {
		return nil, m.leaderLookupErr
	}
	for _, l := range m.leaders {
		if strings.EqualFold(l.GoogleEmail, email) {
			l := l
			return &l, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) InsertLeader(ctx context.Context, in model.LeaderInput) (*model.Leader, error) {
	l := model.Leader{
		ID:                uuid.NewString(),
		Gender:            in.Gender,
		Name:              in.Name,
		Phone:             in.Phone,
		GoogleEmail:       in.GoogleEmail,
		AssignedMeetingID: in.AssignedMeetingID,
	}
	m.leaders = append(m.leaders, l)
	return &l, nil
}

func (m *mockStore) UpdateLeader(ctx context.Context, id string, upd model.LeaderUpdate) (*model.Leader, error) {
	for i, l := range m.leaders {
		if l.ID == id {
			if upd.GoogleEmail != nil {
				m.leaders[i].GoogleEmail = *upd.GoogleEmail
			}
			if upd.Name != nil {
				m.leaders[i].Name = *upd.Name
			}
			out := m.leaders[i]
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) DeleteLeader(ctx context.Context, id string) error {
	for i, l := range m.leaders {
		if l.ID == id {
			m.leaders = append(m.leaders[:i], m.leaders[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (m *mockStore) GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	if m.adminLookupErr != nil {
		return nil, m.adminLookupErr
	}
	for _, a := range m.admins {
		if strings.EqualFold(a.GoogleEmail, email) {
			a := a
			return &a, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) CreateAuthUser(ctx context.Context, email string) error {
	if m.createAuthUserErr != nil {
		return m.createAuthUserErr
	}
	if m.authUsers[email] {
		return db.ErrAlreadyRegistered
	}
	m.authUsers[email] = true
	return nil
}

func (m *mockStore) TouchAuthUser(ctx context.Context, email string) error {
	m.authUsers[email] = true
	return nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
