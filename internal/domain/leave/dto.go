package leave

import (
	"io"

	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/leavedesk/leave-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ApplyLeaveRequest struct {
	UserID    string `json:"-"`
	UserEmail string `json:"-"`

	Type      string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`

	// Optional attachment from the multipart form.
	Document     io.Reader `json:"-"`
	DocumentName string    `json:"-"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	} else if _, err := ParseLeaveType(r.Type); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of the known leave types",
		})
	}

	// Date ordering is deliberately not checked here; the day-count formula
	// owns that contract (see InclusiveDays).
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// DecisionRequest carries an approve or reject call. Actor fields come from
// the authenticated token, never from the request body.
type DecisionRequest struct {
	LeaveID string `json:"-"`
	Comment string `json:"comment"`

	ActorID    string    `json:"-"`
	ActorEmail string    `json:"-"`
	ActorRole  user.Role `json:"-"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_id",
			Message: "leave_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AdjustBalanceRequest struct {
	UserID     string          `json:"user_id"`
	Type       string          `json:"leave_type"`
	NewBalance decimal.Decimal `json:"new_balance"`

	ActorRole user.Role `json:"-"`
}

func (r *AdjustBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if validator.IsEmpty(r.Type) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type is required",
		})
	} else if _, err := ParseLeaveType(r.Type); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of the known leave types",
		})
	}

	// No floor or ceiling on new_balance: the admin override is unconstrained.

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AddHolidayRequest struct {
	Name string `json:"holiday_name"`
	Date string `json:"holiday_date"`

	ActorRole user.Role `json:"-"`
}

func (r *AddHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "holiday_name",
			Message: "holiday_name is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "holiday_date",
			Message: "holiday_date must be a valid date (YYYY-MM-DD)",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ColleaguesFilter struct {
	StartDate string
	EndDate   string
}

func (f *ColleaguesFilter) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(f.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}
	if _, ok := validator.IsValidDate(f.EndDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BalancesResponse is the defensive copy handed to callers; mutating it never
// touches the stored table.
type BalancesResponse struct {
	Balances  map[LeaveType]decimal.Decimal `json:"balances"`
	Carryover decimal.Decimal               `json:"carryover"`
}
