package models

import "time"

// PushEndpoint is a browser push subscription belonging to one user.
// Endpoint is unique: re-registering the same endpoint updates the keys
// and the owner instead of creating a duplicate row.
type PushEndpoint struct {
	ID        int       `db:"id"`
	UserID    string    `db:"user_id"`
	Endpoint  string    `db:"endpoint"`
	P256dh    string    `db:"p256dh"`
	Auth      string    `db:"auth"`
	CreatedAt time.Time `db:"created_at"`
}
