package domain

import "time"

type UserRole string

const (
	RoleSuperAdmin UserRole = "super_admin"
	RoleAdmin      UserRole = "admin"
	RoleContadora  UserRole = "contadora"
	RoleCustomer   UserRole = "customer"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleContadora, RoleCustomer:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role belongs to back-office personnel.
func (r UserRole) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleContadora
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	default:
		return false
	}
}

type User struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	Password   string     `json:"-"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	NationalID string     `json:"national_id"`
	Role       UserRole   `json:"role"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
