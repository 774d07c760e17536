package models

import "time"

// Subscription represents a user's subscription to a channel,
// unique per (user, channel) pair.
type Subscription struct {
	ID        int       `db:"id"`
	UserID    string    `db:"user_id"`
	ChannelID int       `db:"channel_id"`
	CreatedAt time.Time `db:"created_at"`
}

// SubscribedChannel is a subscription joined with its channel,
// as returned to the API client.
type SubscribedChannel struct {
	ID          int       `db:"id" json:"id"`
	ChannelID   string    `db:"channel_id" json:"channelId"`
	ChannelName *string   `db:"channel_name" json:"channelName"`
	LiveState   string    `db:"live_state" json:"liveState"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
