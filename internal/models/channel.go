package models

import "time"

const (
	LiveStateOffline = "OFFLINE"
	LiveStateLive    = "LIVE"
)

// Channel represents a YouTube channel tracked for live broadcasts.
// LastLiveVideoID is the dedup key: at most one notification campaign is
// run per broadcast, and a transition to LIVE always rewrites it.
type Channel struct {
	ID              int        `db:"id" json:"id"`
	ChannelID       string     `db:"channel_id" json:"channelId"`
	ChannelName     *string    `db:"channel_name" json:"channelName"`
	LiveState       string     `db:"live_state" json:"liveState"`
	LastLiveVideoID *string    `db:"last_live_video_id" json:"-"`
	WebsubLeaseAt   *time.Time `db:"websub_lease_at" json:"-"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// DisplayName returns the channel name, falling back to the external
// channel ID when the name has not been resolved yet.
func (c *Channel) DisplayName() string {
	if c.ChannelName != nil && *c.ChannelName != "" {
		return *c.ChannelName
	}
	return c.ChannelID
}
