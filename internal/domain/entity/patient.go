package entity

import "time"

// Patient is the profile record, 1:1 with a User. It is only ever created
// inside the registration transaction, together with its User.
type Patient struct {
	ID        string
	UserID    string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
