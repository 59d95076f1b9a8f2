package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
)

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func TestBuildParticipantSQL_PagedSearch(t *testing.T) {
	male := model.GenderMale
	filters := query.Filters{Gender: &male, AgeMin: intPtr(20), AgeMax: intPtr(30), Name: strPtr("kim")}
	order, err := query.Sort{Column: query.FieldName, Direction: query.Asc}.Order()
	require.NoError(t, err)

	built, err := buildParticipantSQL(query.Query{
		Predicates: filters.Predicates(),
		Order:      order,
		Window:     query.Pagination{Page: 2, Limit: 15}.Window(),
	})
	require.NoError(t, err)

	where := " WHERE gender = $1 AND age >= $2 AND age <= $3 AND name ILIKE $4"
	assert.Equal(t, "SELECT "+participantSelectColumns+" FROM participants"+where+
		" ORDER BY name ASC, id ASC LIMIT $5 OFFSET $6", built.Select)
	assert.Equal(t, []any{"male", 20, 30, "%kim%", 15, 15}, built.SelectArgs)
	assert.Equal(t, "SELECT COUNT(*) FROM participants"+where, built.Count)
	assert.Equal(t, []any{"male", 20, 30, "%kim%"}, built.CountArgs)
}

func TestBuildParticipantSQL_NoFiltersNoWindow(t *testing.T) {
	order, err := query.Sort{}.Order()
	require.NoError(t, err)

	built, err := buildParticipantSQL(query.Query{Order: order})
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+participantSelectColumns+" FROM participants ORDER BY created_at DESC, id ASC", built.Select)
	assert.Empty(t, built.SelectArgs)
	assert.Equal(t, "SELECT COUNT(*) FROM participants", built.Count)
}

func TestBuildParticipantSQL_EscapesLikePatterns(t *testing.T) {
	built, err := buildParticipantSQL(query.Query{
		Predicates: []query.Predicate{{Field: query.FieldPhone, Op: query.OpContains, Value: `50%_\`}},
	})
	require.NoError(t, err)

	assert.Equal(t, []any{`%50\%\_\\%`}, built.CountArgs)
}

func TestBuildParticipantSQL_RejectsUnknownFields(t *testing.T) {
	_, err := buildParticipantSQL(query.Query{
		Predicates: []query.Predicate{{Field: "1=1; --", Op: query.OpEq, Value: 1}},
	})
	assert.Error(t, err)

	_, err = buildParticipantSQL(query.Query{Order: []query.OrderTerm{{Field: "notes"}}})
	assert.Error(t, err)

	_, err = buildParticipantSQL(query.Query{
		Predicates: []query.Predicate{{Field: query.FieldName, Op: query.OpContains, Value: 3}},
	})
	assert.Error(t, err)
}

func TestSetClause(t *testing.T) {
	var set setClause
	assert.True(t, set.empty())

	set.add("name", "홍길동")
	set.addNullable("notes", " ")
	sql, args := set.sql("p-1")

	assert.Equal(t, "SET name = $1, notes = $2, updated_at = NOW() WHERE id = $3", sql)
	assert.Equal(t, []any{"홍길동", nil, "p-1"}, args)
}
