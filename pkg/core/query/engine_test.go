package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
)

// memoryFinder evaluates queries against an in-memory participant slice
type memoryFinder struct {
	participants []model.Participant
	err          error
	queries      []Query
}

func (m *memoryFinder) FindParticipants(ctx context.Context, q Query) ([]model.Participant, int, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, 0, m.err
	}

	var matched []model.Participant
	for _, p := range m.participants {
		if matchesAll(p, q.Predicates) {
			matched = append(matched, p)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, term := range q.Order {
			c := compareField(matched[i], matched[j], term.Field)
			if c == 0 {
				continue
			}
			if term.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	total := len(matched)
	if q.Window != nil {
		start := min(q.Window.Offset, total)
		end := min(start+q.Window.Limit, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

func fieldValue(p model.Participant, field string) any {
	switch field {
	case FieldID:
		return p.ID
	case FieldGender:
		return string(p.Gender)
	case FieldAge:
		return p.Age
	case FieldName:
		return p.Name
	case FieldMonths:
		return p.Months
	case FieldFirstRegistrationMonth:
		return p.FirstRegistrationMonth
	case FieldPhone:
		return p.Phone
	case FieldFee:
		return p.Fee
	case FieldReRegistration:
		return p.ReRegistration
	case FieldLatestRegistration:
		return p.LatestRegistration
	case FieldCurrentMeetingID:
		if p.CurrentMeetingID == nil {
			return ""
		}
		return *p.CurrentMeetingID
	case FieldCreatedAt:
		return p.CreatedAt
	}
	panic("unknown field " + field)
}

func matchesAll(p model.Participant, preds []Predicate) bool {
	for _, pred := range preds {
		v := fieldValue(p, pred.Field)
		switch pred.Op {
		case OpEq:
			if v != pred.Value {
				return false
			}
		case OpGte:
			if v.(int) < pred.Value.(int) {
				return false
			}
		case OpLte:
			if v.(int) > pred.Value.(int) {
				return false
			}
		case OpContains:
			if !strings.Contains(strings.ToLower(v.(string)), strings.ToLower(pred.Value.(string))) {
				return false
			}
		}
	}
	return true
}

func compareField(a, b model.Participant, field string) int {
	switch av := fieldValue(a, field).(type) {
	case int:
		bv := fieldValue(b, field).(int)
		return av - bv
	case string:
		return strings.Compare(av, fieldValue(b, field).(string))
	case time.Time:
		return av.Compare(fieldValue(b, field).(time.Time))
	}
	return 0
}

// roster returns 17 men aged 20-30 plus people who should never match
func roster() []model.Participant {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ps []model.Participant
	for i := 0; i < 17; i++ {
		ps = append(ps, model.Participant{
			ID:        fmt.Sprintf("p-%02d", i),
			Gender:    model.GenderMale,
			Age:       20 + i%11,
			Name:      fmt.Sprintf("Member %c", 'Q'-rune(i)),
			Phone:     fmt.Sprintf("010-1000-%04d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	ps = append(ps,
		model.Participant{ID: "f-1", Gender: model.GenderFemale, Age: 25, Name: "Member Z", CreatedAt: base},
		model.Participant{ID: "m-old", Gender: model.GenderMale, Age: 31, Name: "Member Y", CreatedAt: base},
		model.Participant{ID: "m-young", Gender: model.GenderMale, Age: 19, Name: "Member X", CreatedAt: base},
	)
	return ps
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func scenarioFilters() Filters {
	male := model.GenderMale
	return Filters{Gender: &male, AgeMin: intPtr(20), AgeMax: intPtr(30)}
}

func TestSearch_PagedScenario(t *testing.T) {
	engine := NewEngine(&memoryFinder{participants: roster()}, zap.NewNop())
	ctx := context.Background()
	byName := Sort{Column: FieldName, Direction: Asc}

	page1, err := engine.Search(ctx, scenarioFilters(), Pagination{Page: 1, Limit: 15}, byName)
	require.NoError(t, err)
	assert.Len(t, page1.Data, 15)
	assert.Equal(t, 17, page1.Total)
	assert.Equal(t, 2, page1.TotalPages)
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 15, page1.Limit)
	assert.True(t, sort.SliceIsSorted(page1.Data, func(i, j int) bool {
		return page1.Data[i].Name < page1.Data[j].Name
	}))

	page2, err := engine.Search(ctx, scenarioFilters(), Pagination{Page: 2, Limit: 15}, byName)
	require.NoError(t, err)
	assert.Len(t, page2.Data, 2)
	assert.Equal(t, 17, page2.Total)
	assert.Less(t, page1.Data[14].Name, page2.Data[0].Name)
}

func TestSearch_PagesReconstructSearchAll(t *testing.T) {
	engine := NewEngine(&memoryFinder{participants: roster()}, zap.NewNop())
	ctx := context.Background()

	sorts := []Sort{
		{},
		{Column: FieldName, Direction: Asc},
		{Column: FieldAge, Direction: Desc},
		{Column: FieldFee, Direction: Asc},
	}
	limits := []int{1, 4, 15, 17, 50}

	for _, s := range sorts {
		all, err := engine.SearchAll(ctx, scenarioFilters(), s)
		require.NoError(t, err)
		require.Len(t, all, 17)

		for _, limit := range limits {
			t.Run(fmt.Sprintf("%s_%s_%d", s.Column, s.Direction, limit), func(t *testing.T) {
				first, err := engine.Search(ctx, scenarioFilters(), Pagination{Page: 1, Limit: limit}, s)
				require.NoError(t, err)

				var combined []model.Participant
				for p := 1; p <= first.TotalPages; p++ {
					page, err := engine.Search(ctx, scenarioFilters(), Pagination{Page: p, Limit: limit}, s)
					require.NoError(t, err)
					assert.Equal(t, 17, page.Total)
					combined = append(combined, page.Data...)
				}

				assert.Equal(t, all, combined)
			})
		}
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	engine := NewEngine(&memoryFinder{participants: roster()}, zap.NewNop())

	page, err := engine.Search(context.Background(), Filters{Name: strPtr("nobody")}, Pagination{Page: 1, Limit: 15}, Sort{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestSearch_ClampsPagination(t *testing.T) {
	finder := &memoryFinder{participants: roster()}
	engine := NewEngine(finder, zap.NewNop())

	page, err := engine.Search(context.Background(), Filters{}, Pagination{Page: -3, Limit: 0}, Sort{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultLimit, page.Limit)

	require.Len(t, finder.queries, 1)
	assert.Equal(t, &Window{Offset: 0, Limit: DefaultLimit}, finder.queries[0].Window)
}

func TestSearch_InvalidSort(t *testing.T) {
	finder := &memoryFinder{participants: roster()}
	engine := NewEngine(finder, zap.NewNop())

	_, err := engine.Search(context.Background(), Filters{}, Pagination{Page: 1, Limit: 15}, Sort{Column: "phone"})
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = engine.SearchAll(context.Background(), Filters{}, Sort{Column: "name; DROP TABLE participants"})
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = engine.Search(context.Background(), Filters{}, Pagination{}, Sort{Column: FieldName, Direction: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidSort)

	assert.Empty(t, finder.queries)
}

func TestSearch_StoreFailureIsNotAnEmptyPage(t *testing.T) {
	storeErr := errors.New("connection refused")
	engine := NewEngine(&memoryFinder{err: storeErr}, zap.NewNop())

	page, err := engine.Search(context.Background(), Filters{}, Pagination{Page: 1, Limit: 15}, Sort{})
	require.Error(t, err)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "search participants")

	all, err := engine.SearchAll(context.Background(), Filters{}, Sort{})
	require.Error(t, err)
	assert.Nil(t, all)
}

func TestSearchAll_NoWindow(t *testing.T) {
	finder := &memoryFinder{participants: roster()}
	engine := NewEngine(finder, zap.NewNop())

	all, err := engine.SearchAll(context.Background(), Filters{}, Sort{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
	require.Len(t, finder.queries, 1)
	assert.Nil(t, finder.queries[0].Window)
}

func TestFilters_Predicates(t *testing.T) {
	female := model.GenderFemale
	reReg := false
	f := Filters{
		Gender:                 &female,
		AgeMin:                 intPtr(1990),
		Name:                   strPtr("  kim "),
		MonthsMax:              intPtr(6),
		FirstRegistrationMonth: strPtr("2024-01"),
		Phone:                  strPtr("1234"),
		FeeMin:                 intPtr(-10000),
		FeeMax:                 intPtr(50000),
		ReRegistration:         &reReg,
		LatestRegistration:     strPtr(""),
		CurrentMeetingID:       strPtr("m-1"),
	}

	assert.Equal(t, []Predicate{
		{Field: FieldGender, Op: OpEq, Value: "female"},
		{Field: FieldAge, Op: OpGte, Value: 1990},
		{Field: FieldName, Op: OpContains, Value: "kim"},
		{Field: FieldMonths, Op: OpLte, Value: 6},
		{Field: FieldFirstRegistrationMonth, Op: OpEq, Value: "2024-01"},
		{Field: FieldPhone, Op: OpContains, Value: "1234"},
		{Field: FieldFee, Op: OpGte, Value: -10000},
		{Field: FieldFee, Op: OpLte, Value: 50000},
		{Field: FieldReRegistration, Op: OpEq, Value: false},
		{Field: FieldCurrentMeetingID, Op: OpEq, Value: "m-1"},
	}, f.Predicates())

	assert.Empty(t, Filters{}.Predicates())
}

func TestSort_Order(t *testing.T) {
	order, err := Sort{}.Order()
	require.NoError(t, err)
	assert.Equal(t, []OrderTerm{{Field: FieldCreatedAt, Descending: true}, {Field: FieldID}}, order)

	order, err = Sort{Column: FieldFee}.Order()
	require.NoError(t, err)
	assert.Equal(t, []OrderTerm{{Field: FieldFee, Descending: true}, {Field: FieldID}}, order)

	order, err = Sort{Column: FieldFee, Direction: Asc}.Order()
	require.NoError(t, err)
	assert.Equal(t, []OrderTerm{{Field: FieldFee}, {Field: FieldID}}, order)

	order, err = Sort{Column: FieldAge, Direction: "DESC"}.Order()
	require.NoError(t, err)
	assert.Equal(t, []OrderTerm{{Field: FieldAge, Descending: true}, {Field: FieldID}}, order)
}

func TestSearch_ColumnWithoutDirectionSortsDescending(t *testing.T) {
	finder := &memoryFinder{participants: roster()}
	engine := NewEngine(finder, zap.NewNop())

	page, err := engine.Search(context.Background(), Filters{}, Pagination{}, Sort{Column: FieldName})
	require.NoError(t, err)
	require.NotEmpty(t, page.Data)

	require.Len(t, finder.queries, 1)
	assert.Equal(t, OrderTerm{Field: FieldName, Descending: true}, finder.queries[0].Order[0])
	assert.True(t, sort.SliceIsSorted(page.Data, func(i, j int) bool {
		return page.Data[i].Name > page.Data[j].Name
	}))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 15))
	assert.Equal(t, 1, TotalPages(1, 15))
	assert.Equal(t, 1, TotalPages(15, 15))
	assert.Equal(t, 2, TotalPages(16, 15))
	assert.Equal(t, 2, TotalPages(17, 15))
}
