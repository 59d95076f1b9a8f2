package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
	"github.com/bookclub/roster-admin/pkg/spreadsheet"
)

// ExportSheetTitle names the exported worksheet
const ExportSheetTitle = "참여자 목록"

// ExportHeaders are the exported column labels in order
var ExportHeaders = []string{
	"이름", "성별", "나이", "전화번호", "개월수", "첫 등록월", "회비",
	"재등록", "최근 등록", "현재 모임", "비고", "과거 모임", "등록일",
}

// ExportScope picks between the current page and every matching participant
type ExportScope string

const (
	ExportPage ExportScope = "page"
	ExportAll  ExportScope = "all"
)

// ExportStore defines the database operations needed to export participants
type ExportStore interface {
	query.Finder
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
}

// Export is a rendered-ready participant workbook
type Export struct {
	Filename string
	Table    spreadsheet.Table
}

// ExportParticipants builds the export table for the viewer's search. An empty
// result is a validation error.
func ExportParticipants(
	ctx context.Context,
	store ExportStore,
	logger *zap.Logger,
	viewer model.RoleResolution,
	scope ExportScope,
	filters query.Filters,
	pagination query.Pagination,
	sort query.Sort,
	now time.Time,
) (*Export, error) {
	var participants []model.Participant
	switch scope {
	case ExportAll:
		scoped, ok := ScopeFilters(viewer, filters)
		if ok {
			rows, err := query.NewEngine(store, logger).SearchAll(ctx, scoped, sort)
			if err != nil {
				return nil, err
			}
			participants = rows
		}
	case ExportPage, "":
		page, err := SearchParticipants(ctx, store, logger, viewer, filters, pagination, sort)
		if err != nil {
			return nil, err
		}
		participants = page.Data
		pagination = query.Pagination{Page: page.Page, Limit: page.Limit}
	default:
		return nil, model.NewValidationError("scope", "must be one of: page all")
	}

	if len(participants) == 0 {
		return nil, model.NewValidationError("", "no participants to export")
	}

	meetings, err := store.ListMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}

	table := ParticipantTable(participants, meetingNameResolver(meetings))
	filename := ExportFilename(scope, pagination.Page, now)

	logger.Info("Prepared participant export",
		zap.String("filename", filename),
		zap.Int("rows", len(table.Rows)))

	return &Export{Filename: filename, Table: table}, nil
}

// ParticipantTable renders participants with Korean labels
func ParticipantTable(participants []model.Participant, meetingName func(id *string) string) spreadsheet.Table {
	rows := make([][]any, 0, len(participants))
	for _, p := range participants {
		rows = append(rows, []any{
			p.Name,
			genderLabel(p.Gender),
			p.Age,
			p.Phone,
			p.Months,
			p.FirstRegistrationMonth,
			p.Fee,
			yesNo(p.ReRegistration),
			p.LatestRegistration,
			meetingName(p.CurrentMeetingID),
			deref(p.Notes),
			strings.Join(p.PastMeetings, ", "),
			koreanDate(p.CreatedAt),
		})
	}

	return spreadsheet.Table{
		Title:   ExportSheetTitle,
		Headers: ExportHeaders,
		Rows:    rows,
	}
}

// ExportFilename is participants_page{N}_{stamp}.xlsx or participants_all_{stamp}.xlsx
func ExportFilename(scope ExportScope, page int, now time.Time) string {
	stamp := now.Format("20060102_150405")
	if scope == ExportAll {
		return fmt.Sprintf("participants_all_%s.xlsx", stamp)
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("participants_page%d_%s.xlsx", page, stamp)
}

func genderLabel(g model.Gender) string {
	if g == model.GenderMale {
		return "남성"
	}
	return "여성"
}

func yesNo(b bool) string {
	if b {
		return "예"
	}
	return "아니오"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var kst = time.FixedZone("KST", 9*60*60)

// koreanDate formats like "2025. 12. 8." in Korean time
func koreanDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(kst)
	return fmt.Sprintf("%d. %d. %d.", t.Year(), int(t.Month()), t.Day())
}
