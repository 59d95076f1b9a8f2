// Package rosterimport turns a hand-curated roster worksheet into participant
// records. Rows are classified in order: meeting header rows set the meeting
// for the rows that follow, header or blank rows are skipped, and every other
// row becomes one record. Bad cell values degrade to defaults; a row never
// causes the import to fail.
package rosterimport

import (
	"strings"

	"github.com/bookclub/roster-admin/pkg/core/model"
)

// Column labels used by the roster worksheet
const (
	ColNo                 = "No"
	ColMeeting            = "모임"
	ColName               = "이름"
	ColGender             = "성별"
	ColAge                = "나이"
	ColMonths             = "개월수"
	ColFee                = "회비"
	ColReRegistration     = "재등록"
	ColFirstRegistration  = "첫 등록월"
	ColLatestRegistration = "최등록"
	ColPhone              = "전화번호"
	ColNotes              = "비고"
)

// Record is one normalized participant row
type Record struct {
	// Row is the 1-based worksheet row, counting the label row as row 1
	Row                int
	Input              model.ParticipantInput
	MeetingName        string
	ParticipationMonth string
}

// foldState is threaded through the rows in order
type foldState struct {
	meetingName        string
	participationMonth string
	records            []Record
}

// Normalize converts worksheet rows into participant records in row order.
// filename supplies the participation month (see ParticipationMonthFromFilename).
func Normalize(rows []Row, filename string) []Record {
	state := foldState{
		participationMonth: ParticipationMonthFromFilename(filename),
		records:            make([]Record, 0, len(rows)),
	}

	for i, row := range rows {
		state = state.step(i+2, row)
	}

	return state.records
}

func (s foldState) step(sheetRow int, row Row) foldState {
	if isMeetingHeader(row) {
		s.meetingName = MeetingNameFromHeader(row.Get(ColMeeting).String())
		return s
	}

	if isSkippable(row) {
		return s
	}

	s.records = append(s.records, Record{
		Row:                sheetRow,
		Input:              s.participant(row),
		MeetingName:        s.meetingName,
		ParticipationMonth: s.participationMonth,
	})
	return s
}

func (s foldState) participant(row Row) model.ParticipantInput {
	latest := ConvertYYMM(row.Get(ColLatestRegistration).String())
	if latest == "" {
		latest = ConvertYYMM(s.participationMonth)
	}

	first := ConvertYYMM(row.Get(ColFirstRegistration).String())
	if first == "" {
		first = latest
	}

	var notes *string
	if n := row.Get(ColNotes).TrimmedText(); n != "" {
		notes = &n
	}

	return model.ParticipantInput{
		Gender:                 ParseGender(row.Get(ColGender)),
		Age:                    ParseBirthYear(row.Get(ColAge)),
		Name:                   row.Get(ColName).TrimmedText(),
		Months:                 ParseMonths(row.Get(ColMonths)),
		FirstRegistrationMonth: first,
		Phone:                  row.Get(ColPhone).TrimmedText(),
		Fee:                    ParseFee(row.Get(ColFee)),
		ReRegistration:         ParseReRegistration(row.Get(ColReRegistration)),
		LatestRegistration:     latest,
		Notes:                  notes,
		PastMeetings:           []string{},
	}
}

func isMeetingHeader(row Row) bool {
	no := row.Get(ColNo).TrimmedText()
	return strings.HasPrefix(no, "#") && row.Get(ColMeeting).TrimmedText() != ""
}

// isSkippable matches repeated label rows and rows without a name or phone
func isSkippable(row Row) bool {
	name := row.Get(ColName)
	if !name.IsText() {
		return true
	}
	trimmed := strings.TrimSpace(name.Text)
	if trimmed == "" || trimmed == ColName {
		return true
	}
	return row.Get(ColPhone).TrimmedText() == ""
}
