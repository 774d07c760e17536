package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeFeedUpdate     = "notify:feedupdate"
	TypeRenewLease     = "websub:renew"
	TypeRenewAllLeases = "websub:renewall"
)

type FeedUpdateTaskPayload struct {
	ChannelID string
	VideoID   string
}

func NewFeedUpdateTask(channelID, videoID string) (*asynq.Task, error) {
	payload, err := json.Marshal(FeedUpdateTaskPayload{
		ChannelID: channelID,
		VideoID:   videoID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeFeedUpdate, payload), nil
}

type RenewLeaseTaskPayload struct {
	ChannelDBID int
	ChannelID   string
}

func NewRenewLeaseTask(channelDBID int, channelID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RenewLeaseTaskPayload{
		ChannelDBID: channelDBID,
		ChannelID:   channelID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRenewLease, payload), nil
}

func NewRenewAllLeasesTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeRenewAllLeases, nil), nil
}
