package leave

import (
	"context"

	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// BalanceService owns the per-user balance and carryover tables. All balance
// mutations for a given user are serialized; distinct users proceed
// concurrently.
type BalanceService interface {
	// InitBalance seeds the user's table with the starting allotments.
	// Idempotent: an existing table is left untouched.
	InitBalance(userID string)
	// AdjustBalance overwrites one balance entry. ADMIN only.
	AdjustBalance(req AdjustBalanceRequest) error
	// Deduct subtracts days from the balance for t, failing with
	// ErrInsufficientBalance before the balance would go negative.
	Deduct(userID string, t LeaveType, days decimal.Decimal) error
	// Refund adds days back to the balance for t. No upper bound.
	Refund(userID string, t LeaveType, days decimal.Decimal)
	// ProcessCarryover banks 10% of the current ANNUAL balance, overwriting
	// any prior carryover, and zeroes ANNUAL. Returns the banked amount.
	ProcessCarryover(userID string) decimal.Decimal
	// ViewBalances returns a copy of the user's full table.
	ViewBalances(userID string) BalancesResponse
}

// Service is the leave request workflow plus the read-only query layer.
type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequest, error)
	Approve(ctx context.Context, req DecisionRequest) (LeaveRequest, error)
	Reject(ctx context.Context, req DecisionRequest) (LeaveRequest, error)

	MyLeaves(ctx context.Context, userID string) ([]LeaveRequest, error)
	AllLeaves(ctx context.Context, actorRole user.Role) ([]LeaveRequest, error)
	ColleaguesOnLeave(ctx context.Context, userID string, filter ColleaguesFilter) ([]LeaveRequest, error)

	UpcomingHolidays(ctx context.Context) ([]PublicHoliday, error)
	AddHoliday(ctx context.Context, req AddHolidayRequest) (PublicHoliday, error)
}
