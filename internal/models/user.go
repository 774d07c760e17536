package models

import "time"

// User represents a user in the database. The ID is the opaque
// client-supplied identifier; there is no further authentication.
type User struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
