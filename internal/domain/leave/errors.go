package leave

import "errors"

var (
	ErrLeaveNotFound       = errors.New("leave request not found")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrAlreadyProcessed    = errors.New("leave request already processed")
	ErrSelfApproval        = errors.New("cannot approve or reject your own leave request")
	ErrUnknownLeaveType    = errors.New("unknown leave type")
)
