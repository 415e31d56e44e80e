package user

import "time"

type Role string

const (
	RoleStaff   Role = "STAFF"   // Regular employee
	RoleManager Role = "MANAGER" // Can approve or reject leave requests
	RoleAdmin   Role = "ADMIN"   // Full access, can adjust balances
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleStaff || r == RoleManager || r == RoleAdmin
}

// CanApproveLeave checks if the role may approve or reject leave requests.
func (r Role) CanApproveLeave() bool {
	return r == RoleManager || r == RoleAdmin
}

// CanAdjustBalance checks if the role may overwrite another user's balance.
func (r Role) CanAdjustBalance() bool {
	return r == RoleAdmin
}

// CanViewAllLeaves checks if the role may list every leave request.
func (r Role) CanViewAllLeaves() bool {
	return r == RoleAdmin
}

// CanManageHolidays checks if the role may create public holidays.
func (r Role) CanManageHolidays() bool {
	return r == RoleAdmin
}

type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     *string
	Role             Role
	TwoFactorEnabled bool
	GoogleAvatarURL  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
