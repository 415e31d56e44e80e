package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for the leaves table.
// GetByID and UpdateDecision return ErrLeaveNotFound when no row matches.
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByUserID(ctx context.Context, userID string) ([]LeaveRequest, error)
	GetAll(ctx context.Context) ([]LeaveRequest, error)
	// FindApprovedOverlapping returns APPROVED requests whose inclusive
	// interval intersects [start, end].
	FindApprovedOverlapping(ctx context.Context, start, end time.Time) ([]LeaveRequest, error)
	// UpdateDecision persists the status and manager comment set by an
	// approve or reject transition.
	UpdateDecision(ctx context.Context, request LeaveRequest) error
}

// PublicHolidayRepository - interface for the public_holidays table.
type PublicHolidayRepository interface {
	Create(ctx context.Context, holiday PublicHoliday) (PublicHoliday, error)
	// FindAfter returns holidays strictly after date, ascending by date.
	FindAfter(ctx context.Context, date time.Time) ([]PublicHoliday, error)
}
