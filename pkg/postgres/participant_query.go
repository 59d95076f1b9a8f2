package postgres

import (
	"fmt"
	"strings"

	"github.com/bookclub/roster-admin/pkg/core/query"
)

// participantColumns maps query fields onto participant columns. Anything not
// listed here is rejected before it reaches SQL.
var participantColumns = map[string]string{
	query.FieldID:                     "id",
	query.FieldGender:                 "gender",
	query.FieldAge:                    "age",
	query.FieldName:                   "name",
	query.FieldMonths:                 "months",
	query.FieldFirstRegistrationMonth: "first_registration_month",
	query.FieldPhone:                  "phone",
	query.FieldFee:                    "fee",
	query.FieldReRegistration:         "re_registration",
	query.FieldLatestRegistration:     "latest_registration",
	query.FieldCurrentMeetingID:       "current_meeting_id",
	query.FieldCreatedAt:              "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// participantSQL is a rendered participant search
type participantSQL struct {
	Select     string
	SelectArgs []any
	Count      string
	CountArgs  []any
}

// buildParticipantSQL renders q as a SELECT for the rows and a COUNT(*) for the
// total. Both share the same WHERE clause.
func buildParticipantSQL(q query.Query) (*participantSQL, error) {
	var (
		conds []string
		args  []any
	)

	for _, p := range q.Predicates {
		column, ok := participantColumns[p.Field]
		if !ok {
			return nil, fmt.Errorf("unknown filter field %q", p.Field)
		}

		value := p.Value
		var op string
		switch p.Op {
		case query.OpEq:
			op = "="
		case query.OpGte:
			op = ">="
		case query.OpLte:
			op = "<="
		case query.OpContains:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("contains filter on %s needs a string, got %T", p.Field, value)
			}
			op = "ILIKE"
			value = "%" + likeEscaper.Replace(s) + "%"
		default:
			return nil, fmt.Errorf("unknown filter operator %q", p.Op)
		}

		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var order []string
	for _, term := range q.Order {
		column, ok := participantColumns[term.Field]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", term.Field)
		}
		dir := "ASC"
		if term.Descending {
			dir = "DESC"
		}
		order = append(order, column+" "+dir)
	}

	selectSQL := "SELECT " + participantSelectColumns + " FROM participants" + where
	if len(order) > 0 {
		selectSQL += " ORDER BY " + strings.Join(order, ", ")
	}

	selectArgs := append([]any{}, args...)
	if q.Window != nil {
		selectArgs = append(selectArgs, q.Window.Limit, q.Window.Offset)
		selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(selectArgs)-1, len(selectArgs))
	}

	return &participantSQL{
		Select:     selectSQL,
		SelectArgs: selectArgs,
		Count:      "SELECT COUNT(*) FROM participants" + where,
		CountArgs:  args,
	}, nil
}
