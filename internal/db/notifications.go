package db

import (
	"log"

	"yt-livealert/internal/models"
)

func InsertNotificationLog(userID string, channelDBID int, videoID string) error {
	_, err := DB.Exec(
		"INSERT INTO notification_logs (user_id, channel_id, video_id) VALUES ($1, $2, $3)",
		userID, channelDBID, videoID,
	)
	return err
}

// GetRecentNotificationsByUserID returns the user's latest log entries,
// newest first, capped at limit.
func GetRecentNotificationsByUserID(userID string, limit int) ([]models.NotificationView, error) {
	query := `
		SELECT n.id, c.channel_id, c.channel_name, n.video_id, n.sent_at
		FROM notification_logs n
		JOIN channels c ON c.id = n.channel_id
		WHERE n.user_id = $1
		ORDER BY n.sent_at DESC
		LIMIT $2
	`
	var notifications []models.NotificationView
	err := DB.Select(&notifications, query, userID, limit)
	if err != nil {
		log.Printf("Error getting notifications for user %s: %v", userID, err)
		return nil, err
	}
	return notifications, nil
}
