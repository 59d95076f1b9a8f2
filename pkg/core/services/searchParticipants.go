package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookclub/roster-admin/pkg/core/model"
	"github.com/bookclub/roster-admin/pkg/core/query"
)

// ScopeFilters restricts filters to what the viewer may see. Leaders are
// pinned to their assigned meeting; ok is false when a leader has none.
func ScopeFilters(viewer model.RoleResolution, filters query.Filters) (query.Filters, bool) {
	if viewer.Role == model.RoleAdmin {
		return filters, true
	}
	if viewer.AssignedMeetingID == nil || *viewer.AssignedMeetingID == "" {
		return filters, false
	}
	meetingID := *viewer.AssignedMeetingID
	filters.CurrentMeetingID = &meetingID
	return filters, true
}

// SearchParticipants returns one page of participants visible to viewer
func SearchParticipants(
	ctx context.Context,
	finder query.Finder,
	logger *zap.Logger,
	viewer model.RoleResolution,
	filters query.Filters,
	pagination query.Pagination,
	sort query.Sort,
) (*query.Page, error) {
	scoped, ok := ScopeFilters(viewer, filters)
	if !ok {
		// Still reject a bad sort before answering with nothing
		if _, err := sort.Order(); err != nil {
			return nil, err
		}
		logger.Debug("Leader has no assigned meeting", zap.String("profile_id", viewer.ProfileID))
		p := pagination.Normalize()
		return &query.Page{Data: []model.Participant{}, Page: p.Page, Limit: p.Limit}, nil
	}

	return query.NewEngine(finder, logger).Search(ctx, scoped, pagination, sort)
}
