package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType is a closed enumeration of absence categories. Each type has its
// own balance pool per user.
type LeaveType string

const (
	TypeAnnual        LeaveType = "ANNUAL"
	TypePTO           LeaveType = "PTO"
	TypeSick          LeaveType = "SICK"
	TypeCompassionate LeaveType = "COMPASSIONATE"
	TypeMaternity     LeaveType = "MATERNITY"
	TypePaternity     LeaveType = "PATERNITY"
	TypeUnpaid        LeaveType = "UNPAID"
	TypeOther         LeaveType = "OTHER"
)

// AllTypes returns every leave type in a stable order.
func AllTypes() []LeaveType {
	return []LeaveType{
		TypeAnnual,
		TypePTO,
		TypeSick,
		TypeCompassionate,
		TypeMaternity,
		TypePaternity,
		TypeUnpaid,
		TypeOther,
	}
}

// ParseLeaveType converts a wire value into a LeaveType.
func ParseLeaveType(s string) (LeaveType, error) {
	t := LeaveType(s)
	for _, known := range AllTypes() {
		if t == known {
			return t, nil
		}
	}
	return "", ErrUnknownLeaveType
}

type LeaveStatus string

const (
	StatusPending  LeaveStatus = "PENDING"
	StatusApproved LeaveStatus = "APPROVED"
	StatusRejected LeaveStatus = "REJECTED"
)

// LeaveRequest entity. Created in PENDING; exactly one transition to
// APPROVED or REJECTED is permitted, after which the record is immutable.
type LeaveRequest struct {
	ID     string
	UserID string
	Type   LeaveType
	Status LeaveStatus

	StartDate time.Time
	EndDate   time.Time

	Reason         string
	DocumentRef    *string
	ManagerComment *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicHoliday entity.
type PublicHoliday struct {
	ID   string
	Name string
	Date time.Time
}

// InclusiveDays counts the calendar days in [start, end] with both endpoints
// included. An end before start yields a non-positive count; rejecting that is
// the caller's responsibility, not this formula's.
func InclusiveDays(start, end time.Time) int64 {
	return int64(end.Sub(start).Hours()/24) + 1
}

// DaysRequested is InclusiveDays as a balance amount.
func DaysRequested(start, end time.Time) decimal.Decimal {
	return decimal.NewFromInt(InclusiveDays(start, end))
}
