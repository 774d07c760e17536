package db

import (
	"log"

	"yt-livealert/internal/models"
)

func CountSubscriptionsByUserID(userID string) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM subscriptions WHERE user_id = $1", userID)
	return count, err
}

func HasSubscription(userID string, channelDBID int) (bool, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND channel_id = $2", userID, channelDBID)
	return count > 0, err
}

func AddSubscription(userID string, channelDBID int) (*models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, channel_id)
		VALUES ($1, $2)
		RETURNING id, user_id, channel_id, created_at
	`
	sub := &models.Subscription{}
	err := DB.Get(sub, query, userID, channelDBID)
	if err != nil {
		log.Printf("Error adding subscription for user %s: %v", userID, err)
		return nil, err
	}
	return sub, nil
}

func DeleteSubscription(userID string, channelDBID int) error {
	query := `
		DELETE FROM subscriptions
		WHERE user_id = $1 AND channel_id = $2
	`
	_, err := DB.Exec(query, userID, channelDBID)
	if err != nil {
		log.Printf("Error deleting subscription to channel %d for user %s: %v", channelDBID, userID, err)
		return err
	}
	return nil
}

// GetSubscribedChannelsByUserID returns the user's channels joined with
// their live state, newest subscription first.
func GetSubscribedChannelsByUserID(userID string) ([]models.SubscribedChannel, error) {
	query := `
		SELECT c.id, c.channel_id, c.channel_name, c.live_state, s.created_at
		FROM subscriptions s
		JOIN channels c ON c.id = s.channel_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
	`
	var channels []models.SubscribedChannel
	err := DB.Select(&channels, query, userID)
	if err != nil {
		log.Printf("Error getting subscribed channels for user %s: %v", userID, err)
		return nil, err
	}
	return channels, nil
}

// GetSubscriberUserIDs returns the IDs of all users subscribed to the
// given channel.
func GetSubscriberUserIDs(channelDBID int) ([]string, error) {
	var userIDs []string
	err := DB.Select(&userIDs, "SELECT user_id FROM subscriptions WHERE channel_id = $1", channelDBID)
	return userIDs, err
}
