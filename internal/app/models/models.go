package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "student"
	RoleAdmin      RoleType = "admin"
	RoleInstructor RoleType = "instructor"
)

// Valid reports whether r is one of the closed set of roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleInstructor:
		return true
	}
	return false
}

// UserStatus marks an account active or deactivated. Users are never hard deleted.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Payment status values embedded in session tokens
const (
	PaymentStatusPending       = "pending"
	PaymentStatusSuccess       = "success"
	PaymentStatusPartiallyPaid = "partially_paid"
)

// DefaultCountry is assigned when a registrant gives none
const DefaultCountry = "GH"
