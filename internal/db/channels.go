package db

import (
	"time"

	"yt-livealert/internal/models"
)

func GetChannelByExternalID(channelID string) (models.Channel, error) {
	channel := models.Channel{}
	err := DB.Get(&channel, "SELECT * FROM channels WHERE channel_id = $1", channelID)
	return channel, err
}

// UpsertChannel inserts a channel by its external ID, returning the
// existing row when it is already tracked.
func UpsertChannel(channelID string) (*models.Channel, error) {
	query := `
		INSERT INTO channels (channel_id)
		VALUES ($1)
		ON CONFLICT (channel_id) DO UPDATE SET channel_id = EXCLUDED.channel_id
		RETURNING id, channel_id, channel_name, live_state, last_live_video_id, websub_lease_at, updated_at
	`
	channel := &models.Channel{}
	err := DB.Get(channel, query, channelID)
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// MarkChannelLive commits the OFFLINE->LIVE transition for the given
// broadcast. The update is conditional on the stored video ID differing,
// so two concurrent invocations for the same broadcast commit at most
// once; the loser sees false.
func MarkChannelLive(channelDBID int, videoID string) (bool, error) {
	query := `
		UPDATE channels
		SET live_state = $1, last_live_video_id = $2, updated_at = NOW()
		WHERE id = $3 AND last_live_video_id IS DISTINCT FROM $2
	`
	res, err := DB.Exec(query, models.LiveStateLive, videoID, channelDBID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func SetChannelLease(channelDBID int, leaseAt time.Time) error {
	_, err := DB.Exec("UPDATE channels SET websub_lease_at = $1 WHERE id = $2", leaseAt, channelDBID)
	return err
}

// GetChannelsNeedingLeaseRenewal returns channels whose WebSub lease is
// missing or expires before the given deadline.
func GetChannelsNeedingLeaseRenewal(deadline time.Time) ([]models.Channel, error) {
	query := `
		SELECT id, channel_id, channel_name, live_state, last_live_video_id, websub_lease_at, updated_at
		FROM channels
		WHERE websub_lease_at IS NULL OR websub_lease_at < $1
	`
	var channels []models.Channel
	err := DB.Select(&channels, query, deadline)
	return channels, err
}
