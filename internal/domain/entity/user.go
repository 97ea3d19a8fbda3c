package entity

import "time"

// Role is the authorization role carried inside tokens.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Validation is the email-verification state of an account. It is always
// read and written as a whole value, never field by field.
type Validation struct {
	IsVerified bool
	OTP        int
	Expiry     *time.Time
}

// Verified returns the validation value of a fully verified account:
// verified, code cleared, expiry cleared. Assigning it wholesale consumes
// the active OTP challenge.
func Verified() Validation {
	return Validation{IsVerified: true, OTP: 0, Expiry: nil}
}

// User is the identity record. Exactly one User exists per email.
// Password and Validation.OTP are secret fields: repositories omit them
// from reads unless explicitly requested.
type User struct {
	ID         string
	Email      string
	Password   string
	Name       string
	Role       Role
	Slug       string
	FCMToken   string
	AvatarURL  string
	IsActive   bool
	IsDelete   bool
	Validation Validation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
