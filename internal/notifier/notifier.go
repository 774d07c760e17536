package notifier

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"yt-livealert/internal/db"
	"yt-livealert/internal/models"
	"yt-livealert/internal/push"
)

// LiveChecker answers whether a video is an active live broadcast.
// Implemented by youtube.Client.
type LiveChecker interface {
	IsLive(ctx context.Context, videoID string) (bool, error)
}

// PushSender delivers an encrypted payload to one browser push endpoint.
// Implemented by push.Sender.
type PushSender interface {
	Send(ctx context.Context, endpoint models.PushEndpoint, payload []byte) error
}

// Payload is the notification message as the service worker receives it.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon"`
	Data  PayloadData `json:"data"`
}

type PayloadData struct {
	URL string `json:"url"`
}

// Notifier decides whether a feed ping represents a new live broadcast
// and runs the notify-and-log fan-out when it does. It holds no state of
// its own; everything goes through the store.
type Notifier struct {
	live LiveChecker
	push PushSender
}

func New(live LiveChecker, push PushSender) *Notifier {
	return &Notifier{live: live, push: push}
}

// HandleFeedUpdate processes one WebSub ping for (channel, video). A
// returned error means the invocation was abandoned before the commit
// point; the caller logs it and must not retry (the hub's next ping is
// the retry). Delivery failures after the commit are absorbed here.
func (n *Notifier) HandleFeedUpdate(ctx context.Context, channelID, videoID string) error {
	channel, err := db.GetChannelByExternalID(channelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Pings can arrive for channels unsubscribed after hub
			// registration. Nothing to do.
			log.Printf("Feed update for unknown channel %s, ignoring", channelID)
			return nil
		}
		return fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}

	live, err := n.live.IsLive(ctx, videoID)
	if err != nil {
		return fmt.Errorf("live check for video %s failed: %w", videoID, err)
	}
	if !live {
		// Upload ping, or the stream already ended.
		return nil
	}

	if channel.LastLiveVideoID != nil && *channel.LastLiveVideoID == videoID {
		// Already notified for this broadcast.
		return nil
	}

	committed, err := db.MarkChannelLive(channel.ID, videoID)
	if err != nil {
		return fmt.Errorf("failed to mark channel %s live: %w", channelID, err)
	}
	if !committed {
		// A concurrent invocation for the same broadcast won the race.
		return nil
	}

	// Commit point passed: from here on a repeated ping for this video is
	// suppressed by the dedup gate, whatever happens to delivery below.

	userIDs, err := db.GetSubscriberUserIDs(channel.ID)
	if err != nil {
		return fmt.Errorf("failed to get subscribers for channel %s: %w", channelID, err)
	}
	if len(userIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(Payload{
		Title: fmt.Sprintf("Live now: %s", channel.DisplayName()),
		Body:  "A live stream just started on YouTube",
		Icon:  "/icon-192.png",
		Data: PayloadData{
			URL: "https://www.youtube.com/watch?v=" + videoID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	log.Printf("Channel %s went live with video %s, notifying %d subscribers", channelID, videoID, len(userIDs))
	n.fanOut(ctx, channel.ID, videoID, userIDs, payload)

	return nil
}

// fanOut attempts delivery to every endpoint of every subscriber. One
// endpoint's failure never aborts the loop: a permanently gone endpoint
// is pruned, any other failure is logged and skipped.
func (n *Notifier) fanOut(ctx context.Context, channelDBID int, videoID string, userIDs []string, payload []byte) {
	for _, userID := range userIDs {
		endpoints, err := db.GetPushEndpointsByUserID(userID)
		if err != nil {
			log.Printf("Failed to get push endpoints for user %s: %v", userID, err)
			continue
		}

		for _, endpoint := range endpoints {
			if err := n.push.Send(ctx, endpoint, payload); err != nil {
				var statusErr *push.StatusError
				if errors.As(err, &statusErr) && statusErr.Permanent() {
					log.Printf("Push endpoint %d for user %s is gone, deleting", endpoint.ID, userID)
					if err := db.DeletePushEndpoint(endpoint.ID); err != nil {
						log.Printf("Failed to delete push endpoint %d: %v", endpoint.ID, err)
					}
					continue
				}
				log.Printf("Push delivery to endpoint %d for user %s failed: %v", endpoint.ID, userID, err)
				continue
			}

			if err := db.InsertNotificationLog(userID, channelDBID, videoID); err != nil {
				log.Printf("Failed to log notification for user %s: %v", userID, err)
			}
		}
	}
}
