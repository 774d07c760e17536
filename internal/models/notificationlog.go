package models

import "time"

// NotificationLogEntry is an immutable record of one delivered push
// notification. It exists for display and audit only; deduplication is
// driven by Channel.LastLiveVideoID, not by this log.
type NotificationLogEntry struct {
	ID        int       `db:"id"`
	UserID    string    `db:"user_id"`
	ChannelID int       `db:"channel_id"`
	VideoID   string    `db:"video_id"`
	SentAt    time.Time `db:"sent_at"`
}

// NotificationView is a log entry joined with its channel for the
// notification history endpoint.
type NotificationView struct {
	ID          int       `db:"id" json:"id"`
	ChannelID   string    `db:"channel_id" json:"channelId"`
	ChannelName *string   `db:"channel_name" json:"channelName"`
	VideoID     string    `db:"video_id" json:"videoId"`
	SentAt      time.Time `db:"sent_at" json:"sentAt"`
}
