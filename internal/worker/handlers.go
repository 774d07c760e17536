package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"yt-livealert/internal/db"
	"yt-livealert/internal/notifier"
	"yt-livealert/internal/websub"
	"yt-livealert/pkg/tasks"
)

// leaseRenewalWindow is how far before lease expiry a channel becomes
// due for renewal.
const leaseRenewalWindow = 12 * time.Hour

type TaskHandler struct {
	notifier    *notifier.Notifier
	asynqClient tasks.TaskEnqueuer
}

func NewTaskHandler(n *notifier.Notifier, client tasks.TaskEnqueuer) *TaskHandler {
	return &TaskHandler{notifier: n, asynqClient: client}
}

// HandleFeedUpdateTask runs the feed-update pipeline for one WebSub
// ping. It always returns nil: errors are logged and swallowed so asynq
// never schedules a retry — the hub's next ping is the only retry, and
// the dedup gate makes repeats harmless.
func (h *TaskHandler) HandleFeedUpdateTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.FeedUpdateTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		log.Printf("Failed to unmarshal feed update payload: %v", err)
		return nil
	}

	if err := h.notifier.HandleFeedUpdate(ctx, p.ChannelID, p.VideoID); err != nil {
		log.Printf("Feed update for channel %s video %s abandoned: %v", p.ChannelID, p.VideoID, err)
	}
	return nil
}

// HandleRenewAllLeasesTask sweeps for channels whose WebSub lease is
// missing or about to expire and enqueues one renewal task per channel.
func (h *TaskHandler) HandleRenewAllLeasesTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Checking WebSub leases...")

	channels, err := db.GetChannelsNeedingLeaseRenewal(time.Now().Add(leaseRenewalWindow))
	if err != nil {
		return fmt.Errorf("failed to get channels needing lease renewal: %w", err)
	}

	for _, channel := range channels {
		task, err := tasks.NewRenewLeaseTask(channel.ID, channel.ChannelID)
		if err != nil {
			log.Printf("failed to create renew lease task for channel %s: %v", channel.ChannelID, err)
			continue
		}

		_, err = h.asynqClient.Enqueue(task)
		if err != nil {
			log.Printf("failed to enqueue renew lease task for channel %s: %v", channel.ChannelID, err)
			continue
		}
	}

	log.Printf("Finished checking WebSub leases, %d renewals enqueued", len(channels))
	return nil
}

// HandleRenewLeaseTask re-subscribes one channel's feed at the hub and
// stamps the new lease deadline. Re-subscribing is idempotent, so a
// returned error is safe to retry with backoff.
func (h *TaskHandler) HandleRenewLeaseTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.RenewLeaseTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal renew lease payload: %w", err)
	}

	log.Printf("Renewing WebSub lease for channel %s", p.ChannelID)

	if err := websub.Subscribe(ctx, p.ChannelID); err != nil {
		return fmt.Errorf("failed to renew lease for channel %s: %w", p.ChannelID, err)
	}

	leaseAt := time.Now().Add(websub.LeaseSeconds * time.Second)
	if err := db.SetChannelLease(p.ChannelDBID, leaseAt); err != nil {
		return fmt.Errorf("failed to record lease for channel %s: %w", p.ChannelID, err)
	}

	return nil
}
