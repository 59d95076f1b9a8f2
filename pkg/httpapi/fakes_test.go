package httpapi

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bookclub/roster-admin/pkg/auth"
	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/db"
)

// fakeStore is an in-memory Store
type fakeStore struct {
	participants map[string]model.Participant
	meetings     []model.Meeting
	leaders      []model.Leader
	admins       []model.Administrator
	authUsers    map[string]bool

	findRows  []model.Participant
	findTotal int
	findErr   error
	lastQuery query.Query
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		participants: make(map[string]model.Participant),
		authUsers:    make(map[string]bool),
	}
}

func (f *fakeStore) FindParticipants(ctx context.Context, q query.Query) ([]model.Participant, int, error) {
	f.lastQuery = q
	if f.findErr != nil {
		return nil, 0, f.findErr
	}
	return f.findRows, f.findTotal, nil
}

func (f *fakeStore) InsertParticipant(ctx context.Context, in model.ParticipantInput) (*model.Participant, error) {
	p := model.Participant{
		ID:                     uuid.NewString(),
		Gender:                 in.Gender,
		Age:                    in.Age,
		Name:                   in.Name,
		Months:                 in.Months,
		FirstRegistrationMonth: in.FirstRegistrationMonth,
		Phone:                  in.Phone,
		Fee:                    in.Fee,
		LatestRegistration:     in.LatestRegistration,
		CurrentMeetingID:       in.CurrentMeetingID,
	}
	f.participants[p.ID] = p
	return &p, nil
}

func (f *fakeStore) UpdateParticipant(ctx context.Context, id string, upd model.ParticipantUpdate) (*model.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	f.participants[id] = p
	return &p, nil
}

func (f *fakeStore) DeleteParticipant(ctx context.Context, id string) error {
	if _, ok := f.participants[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.participants, id)
	return nil
}

func (f *fakeStore) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	p, ok := f.participants[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	return f.meetings, nil
}

func (f *fakeStore) GetMeeting(ctx context.Context, id string) (*model.Meeting, error) {
	for _, m := range f.meetings {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) FindMeetingByName(ctx context.Context, name string) (*model.Meeting, error) {
	for _, m := range f.meetings {
		if m.Name == strings.TrimSpace(name) {
			m := m
			return &m, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) InsertMeeting(ctx context.Context, in model.MeetingInput) (*model.Meeting, error) {
	m := model.Meeting{ID: uuid.NewString(), Name: in.Name, Description: in.Description}
	f.meetings = append(f.meetings, m)
	return &m, nil
}

func (f *fakeStore) UpdateMeeting(ctx context.Context, id string, upd model.MeetingUpdate) (*model.Meeting, error) {
	for i, m := range f.meetings {
		if m.ID == id {
			if upd.Name != nil {
				f.meetings[i].Name = *upd.Name
			}
			out := f.meetings[i]
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) DeleteMeeting(ctx context.Context, id string) error {
	for i, m := range f.meetings {
		if m.ID == id {
			f.meetings = append(f.meetings[:i], f.meetings[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeStore) ListLeaders(ctx context.Context) ([]model.Leader, error) {
	return f.leaders, nil
}

func (f *fakeStore) GetLeader(ctx context.Context, id string) (*model.Leader, error) {
	for _, l := range f.leaders {
		if l.ID == id {
			l := l
			return &l, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) GetLeaderByEmail(ctx context.Context, email string) (*model.Leader, error) {
	for _, l := range f.leaders {
		if strings.EqualFold(l.GoogleEmail, email) {
			l := l
			return &l, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) InsertLeader(ctx context.Context, in model.LeaderInput) (*model.Leader, error) {
	l := model.Leader{
		ID:                uuid.NewString(),
		Gender:            in.Gender,
		Name:              in.Name,
		Phone:             in.Phone,
		GoogleEmail:       in.GoogleEmail,
		AssignedMeetingID: in.AssignedMeetingID,
	}
	f.leaders = append(f.leaders, l)
	return &l, nil
}

func (f *fakeStore) UpdateLeader(ctx context.Context, id string, upd model.LeaderUpdate) (*model.Leader, error) {
	for i, l := range f.leaders {
		if l.ID == id {
			if upd.Name != nil {
				f.leaders[i].Name = *upd.Name
			}
			out := f.leaders[i]
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) DeleteLeader(ctx context.Context, id string) error {
	for i, l := range f.leaders {
		if l.ID == id {
			f.leaders = append(f.leaders[:i], f.leaders[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeStore) GetAdministratorByEmail(ctx context.Context, email string) (*model.Administrator, error) {
	for _, a := range f.admins {
		if strings.EqualFold(a.GoogleEmail, email) {
			a := a
			return &a, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) CreateAuthUser(ctx context.Context, email string) error {
	if f.authUsers[email] {
		return db.ErrAlreadyRegistered
	}
	f.authUsers[email] = true
	return nil
}

func (f *fakeStore) TouchAuthUser(ctx context.Context, email string) error {
	f.authUsers[email] = true
	return nil
}

// fakeSessions is an in-memory auth.Store
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
	subs     map[string][]chan auth.SessionEvent
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		sessions: make(map[string]auth.Session),
		subs:     make(map[string][]chan auth.SessionEvent),
	}
}

func (f *fakeSessions) Save(ctx context.Context, sess auth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sess.ID] = sess
	f.publish(sess.Email, auth.SessionEvent{Session: &sess})
	return nil
}

func (f *fakeSessions) Load(ctx context.Context, id string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, auth.ErrNoSession
	}
	return &sess, nil
}

func (f *fakeSessions) Remove(ctx context.Context, sess auth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sess.ID)
	f.publish(sess.Email, auth.SessionEvent{})
	return nil
}

func (f *fakeSessions) Subscribe(ctx context.Context, email string) (<-chan auth.SessionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan auth.SessionEvent, 8)
	f.subs[email] = append(f.subs[email], ch)
	return ch, nil
}

func (f *fakeSessions) publish(email string, evt auth.SessionEvent) {
	for _, ch := range f.subs[email] {
		ch <- evt
	}
}

// fakeSignIn stands in for Google
type fakeSignIn struct {
	email string
	err   error
	codes []string
}

func (f *fakeSignIn) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeSignIn) Exchange(ctx context.Context, code string) (string, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return "", f.err
	}
	return f.email, nil
}

func strPtr(s string) *string { return &s }
