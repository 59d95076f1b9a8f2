package model

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleLeader Role = "leader"
)

// Participant represents a book-club member record
type Participant struct {
	ID                     string    `json:"id"`
	Gender                 Gender    `json:"gender"`
	Age                    int       `json:"age"`
	Name                   string    `json:"name"`
	Months                 int       `json:"months"`
	FirstRegistrationMonth string    `json:"first_registration_month"`
	Phone                  string    `json:"phone"`
	Fee                    int       `json:"fee"`
	ReRegistration         bool      `json:"re_registration"`
	LatestRegistration     string    `json:"latest_registration"`
	CurrentMeetingID       *string   `json:"current_meeting_id"`
	Notes                  *string   `json:"notes"`
	PastMeetings           []string  `json:"past_meetings"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ParticipantInput holds the fields accepted when creating a participant
type ParticipantInput struct {
	Gender                 Gender   `json:"gender" validate:"required,oneof=male female"`
	Age                    int      `json:"age" validate:"gt=0"`
	Name                   string   `json:"name" validate:"notblank"`
	Months                 int      `json:"months" validate:"gte=0"`
	FirstRegistrationMonth string   `json:"first_registration_month" validate:"yearmonth"`
	Phone                  string   `json:"phone" validate:"krphone"`
	Fee                    int      `json:"fee"`
	ReRegistration         bool     `json:"re_registration"`
	LatestRegistration     string   `json:"latest_registration" validate:"yearmonth"`
	CurrentMeetingID       *string  `json:"current_meeting_id" validate:"omitnil,ref"`
	Notes                  *string  `json:"notes"`
	PastMeetings           []string `json:"past_meetings"`
}

// ParticipantUpdate is a partial update. Nil fields are left unchanged.
// An empty CurrentMeetingID or Notes clears the stored value.
type ParticipantUpdate struct {
	Gender                 *Gender   `json:"gender" validate:"omitnil,oneof=male female"`
	Age                    *int      `json:"age" validate:"omitnil,gt=0"`
	Name                   *string   `json:"name" validate:"omitnil,notblank"`
	Months                 *int      `json:"months" validate:"omitnil,gte=0"`
	FirstRegistrationMonth *string   `json:"first_registration_month" validate:"omitnil,yearmonth"`
	Phone                  *string   `json:"phone" validate:"omitnil,krphone"`
	Fee                    *int      `json:"fee"`
	ReRegistration         *bool     `json:"re_registration"`
	LatestRegistration     *string   `json:"latest_registration" validate:"omitnil,yearmonth"`
	CurrentMeetingID       *string   `json:"current_meeting_id" validate:"omitnil,ref"`
	Notes                  *string   `json:"notes"`
	PastMeetings           *[]string `json:"past_meetings"`
}

// IsEmpty reports whether the update carries no changes
func (u ParticipantUpdate) IsEmpty() bool {
	return u == (ParticipantUpdate{})
}

// Meeting is a named group participants and leaders belong to
type Meeting struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MeetingInput struct {
	Name        string  `json:"name" validate:"notblank"`
	Description *string `json:"description"`
}

type MeetingUpdate struct {
	Name        *string `json:"name" validate:"omitnil,notblank"`
	Description *string `json:"description"`
}

// MeetingOption is the id/name pair used by selectors and name lookups
type MeetingOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Leader is a viewer scoped to one meeting
type Leader struct {
	ID                string    `json:"id"`
	Gender            Gender    `json:"gender"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	GoogleEmail       string    `json:"google_email"`
	AssignedMeetingID *string   `json:"assigned_meeting_id"`
	MeetingName       *string   `json:"meeting_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type LeaderInput struct {
	Gender            Gender  `json:"gender" validate:"required,oneof=male female"`
	Name              string  `json:"name" validate:"notblank"`
	Phone             string  `json:"phone" validate:"krphone"`
	GoogleEmail       string  `json:"google_email" validate:"required,email"`
	AssignedMeetingID *string `json:"assigned_meeting_id" validate:"omitnil,ref"`
}

type LeaderUpdate struct {
	Gender            *Gender `json:"gender" validate:"omitnil,oneof=male female"`
	Name              *string `json:"name" validate:"omitnil,notblank"`
	Phone             *string `json:"phone" validate:"omitnil,krphone"`
	GoogleEmail       *string `json:"google_email" validate:"omitnil,email"`
	AssignedMeetingID *string `json:"assigned_meeting_id" validate:"omitnil,ref"`
}

// Administrator is an unscoped management role keyed by Google email
type Administrator struct {
	ID          string `json:"id"`
	Gender      Gender `json:"gender"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	GoogleEmail string `json:"google_email"`
}

// RoleResolution is the outcome of looking an email up in the role tables
type RoleResolution struct {
	Role              Role    `json:"role"`
	ProfileID         string  `json:"profileId"`
	AssignedMeetingID *string `json:"assignedMeetingId,omitempty"`
}
