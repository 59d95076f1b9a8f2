package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bookclub/roster-admin/pkg/core/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 15
)

// ErrInvalidSort is returned for a sort column outside the allowed set
var ErrInvalidSort = errors.New("invalid sort column")

// sortable lists the columns a caller may sort by
var sortable = map[string]bool{
	FieldCreatedAt: true,
	FieldName:      true,
	FieldAge:       true,
	FieldMonths:    true,
	FieldFee:       true,
}

// Filters holds the optional participant filters. Nil fields are inactive.
type Filters struct {
	Gender                 *model.Gender `form:"gender" json:"gender,omitempty"`
	AgeMin                 *int          `form:"age_min" json:"age_min,omitempty"`
	AgeMax                 *int          `form:"age_max" json:"age_max,omitempty"`
	Name                   *string       `form:"name" json:"name,omitempty"`
	MonthsMin              *int          `form:"months_min" json:"months_min,omitempty"`
	MonthsMax              *int          `form:"months_max" json:"months_max,omitempty"`
	FirstRegistrationMonth *string       `form:"first_registration_month" json:"first_registration_month,omitempty"`
	Phone                  *string       `form:"phone" json:"phone,omitempty"`
	FeeMin                 *int          `form:"fee_min" json:"fee_min,omitempty"`
	FeeMax                 *int          `form:"fee_max" json:"fee_max,omitempty"`
	ReRegistration         *bool         `form:"re_registration" json:"re_registration,omitempty"`
	LatestRegistration     *string       `form:"latest_registration" json:"latest_registration,omitempty"`
	CurrentMeetingID       *string       `form:"current_meeting_id" json:"current_meeting_id,omitempty"`
}

// Predicates returns the active filters as AND-ed predicates in a fixed order.
// Empty text filters are ignored.
func (f Filters) Predicates() []Predicate {
	var preds []Predicate

	if f.Gender != nil && *f.Gender != "" {
		preds = append(preds, Predicate{Field: FieldGender, Op: OpEq, Value: string(*f.Gender)})
	}
	preds = appendRange(preds, FieldAge, f.AgeMin, f.AgeMax)
	if v := text(f.Name); v != "" {
		preds = append(preds, Predicate{Field: FieldName, Op: OpContains, Value: v})
	}
	preds = appendRange(preds, FieldMonths, f.MonthsMin, f.MonthsMax)
	if v := text(f.FirstRegistrationMonth); v != "" {
		preds = append(preds, Predicate{Field: FieldFirstRegistrationMonth, Op: OpEq, Value: v})
	}
	if v := text(f.Phone); v != "" {
		preds = append(preds, Predicate{Field: FieldPhone, Op: OpContains, Value: v})
	}
	preds = appendRange(preds, FieldFee, f.FeeMin, f.FeeMax)
	if f.ReRegistration != nil {
		preds = append(preds, Predicate{Field: FieldReRegistration, Op: OpEq, Value: *f.ReRegistration})
	}
	if v := text(f.LatestRegistration); v != "" {
		preds = append(preds, Predicate{Field: FieldLatestRegistration, Op: OpEq, Value: v})
	}
	if v := text(f.CurrentMeetingID); v != "" {
		preds = append(preds, Predicate{Field: FieldCurrentMeetingID, Op: OpEq, Value: v})
	}

	return preds
}

func appendRange(preds []Predicate, field string, min, max *int) []Predicate {
	if min != nil {
		preds = append(preds, Predicate{Field: field, Op: OpGte, Value: *min})
	}
	if max != nil {
		preds = append(preds, Predicate{Field: field, Op: OpLte, Value: *max})
	}
	return preds
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Pagination selects a 1-based page of Limit rows
type Pagination struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize clamps Page to at least 1 and defaults a non-positive Limit
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p Pagination) Window() *Window {
	return &Window{Offset: (p.Page - 1) * p.Limit, Limit: p.Limit}
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders results by one column. The zero value sorts newest first and
// a column without a direction sorts descending.
type Sort struct {
	Column    string    `form:"sort" json:"sort,omitempty"`
	Direction Direction `form:"order" json:"order,omitempty"`
}

// Order validates the sort and returns the order terms, always ending with
// an ascending id term so equal keys come back in a stable order.
func (s Sort) Order() ([]OrderTerm, error) {
	column := strings.TrimSpace(s.Column)
	if column == "" {
		column = FieldCreatedAt
	}
	if !sortable[column] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, column)
	}

	var descending bool
	switch Direction(strings.ToLower(string(s.Direction))) {
	case Asc:
	case Desc, "":
		descending = true
	default:
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidSort, s.Direction)
	}

	return []OrderTerm{
		{Field: column, Descending: descending},
		{Field: FieldID},
	}, nil
}
