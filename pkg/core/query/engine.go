package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
)

// Finder runs a Query against a participant store. total counts every row
// matching the predicates, ignoring the window.
type Finder interface {
	FindParticipants(ctx context.Context, q Query) (rows []model.Participant, total int, err error)
}

// Page is one page of search results
type Page struct {
	Data       []model.Participant `json:"data"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

// Engine runs participant searches
type Engine struct {
	finder Finder
	logger *zap.Logger
}

func NewEngine(finder Finder, logger *zap.Logger) *Engine {
	return &Engine{finder: finder, logger: logger}
}

// Search returns the requested page of participants matching filters
func (e *Engine) Search(ctx context.Context, filters Filters, pagination Pagination, sort Sort) (*Page, error) {
	order, err := sort.Order()
	if err != nil {
		return nil, err
	}
	pagination = pagination.Normalize()

	q := Query{
		Predicates: filters.Predicates(),
		Order:      order,
		Window:     pagination.Window(),
	}

	e.logger.Debug("Searching participants",
		zap.Int("predicates", len(q.Predicates)),
		zap.Int("page", pagination.Page),
		zap.Int("limit", pagination.Limit))

	rows, total, err := e.finder.FindParticipants(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	if rows == nil {
		rows = []model.Participant{}
	}

	return &Page{
		Data:       rows,
		Total:      total,
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: TotalPages(total, pagination.Limit),
	}, nil
}

// SearchAll returns every participant matching filters in sort order
func (e *Engine) SearchAll(ctx context.Context, filters Filters, sort Sort) ([]model.Participant, error) {
	order, err := sort.Order()
	if err != nil {
		return nil, err
	}

	q := Query{
		Predicates: filters.Predicates(),
		Order:      order,
	}

	rows, _, err := e.finder.FindParticipants(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search participants: %w", err)
	}
	if rows == nil {
		rows = []model.Participant{}
	}

	e.logger.Debug("Fetched all matching participants", zap.Int("count", len(rows)))
	return rows, nil
}

// TotalPages is ceil(total/limit), or 0 when there is nothing to show
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
