package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParticipant() ParticipantInput {
	meetingID := "123e4567-e89b-12d3-a456-426614174001"
	notes := "no remarks"
	return ParticipantInput{
		Gender:                 GenderMale,
		Age:                    1990,
		Name:                   "홍길동",
		Months:                 12,
		FirstRegistrationMonth: "2024-01",
		Phone:                  "010-1234-5678",
		Fee:                    50000,
		LatestRegistration:     "2024-11",
		CurrentMeetingID:       &meetingID,
		Notes:                  &notes,
		PastMeetings:           []string{"meeting1", "meeting2"},
	}
}

func TestValidate_ValidParticipant(t *testing.T) {
	assert.NoError(t, Validate(validParticipant()))
}

func TestValidate_ParticipantRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ParticipantInput)
		field  string
	}{
		{"invalid gender", func(p *ParticipantInput) { p.Gender = "invalid" }, "gender"},
		{"negative age", func(p *ParticipantInput) { p.Age = -1 }, "age"},
		{"zero age", func(p *ParticipantInput) { p.Age = 0 }, "age"},
		{"empty name", func(p *ParticipantInput) { p.Name = "" }, "name"},
		{"blank name", func(p *ParticipantInput) { p.Name = "   " }, "name"},
		{"invalid phone", func(p *ParticipantInput) { p.Phone = "invalid-phone" }, "phone"},
		{"landline phone", func(p *ParticipantInput) { p.Phone = "02-123-4567" }, "phone"},
		{"bad first registration", func(p *ParticipantInput) { p.FirstRegistrationMonth = "2024/01" }, "first_registration_month"},
		{"empty latest registration", func(p *ParticipantInput) { p.LatestRegistration = "" }, "latest_registration"},
		{"negative months", func(p *ParticipantInput) { p.Months = -2 }, "months"},
		{"bad meeting id", func(p *ParticipantInput) { id := "not-a-uuid"; p.CurrentMeetingID = &id }, "current_meeting_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParticipant()
			tt.mutate(&p)

			err := Validate(p)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestValidate_NegativeFeeAllowed(t *testing.T) {
	p := validParticipant()
	p.Fee = -10000
	assert.NoError(t, Validate(p))
}

func TestValidate_PhoneWithoutDashes(t *testing.T) {
	p := validParticipant()
	p.Phone = "01012345678"
	assert.NoError(t, Validate(p))
}

func TestValidate_ParticipantUpdate(t *testing.T) {
	name := ""
	err := Validate(ParticipantUpdate{Name: &name})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	zero := 0
	err = Validate(ParticipantUpdate{Age: &zero})
	require.Error(t, err)

	// Empty meeting id clears the reference and is accepted
	clearID := ""
	assert.NoError(t, Validate(ParticipantUpdate{CurrentMeetingID: &clearID}))
	assert.NoError(t, Validate(ParticipantUpdate{}))
}

func TestParticipantUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ParticipantUpdate{}.IsEmpty())
	fee := 0
	assert.False(t, ParticipantUpdate{Fee: &fee}.IsEmpty())
}

func TestValidate_Leader(t *testing.T) {
	leader := LeaderInput{
		Gender:      GenderFemale,
		Name:        "김리더",
		Phone:       "010-9876-5432",
		GoogleEmail: "leader@example.com",
	}
	assert.NoError(t, Validate(leader))

	leader.GoogleEmail = "not-an-email"
	err := Validate(leader)
	require.Error(t, err)
	assert.Equal(t, "google_email: must be a valid email address", err.Error())
}

func TestValidate_Meeting(t *testing.T) {
	assert.NoError(t, Validate(MeetingInput{Name: "독서 모임"}))
	assert.Error(t, Validate(MeetingInput{Name: " "}))
}
