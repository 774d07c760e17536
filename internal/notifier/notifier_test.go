package notifier

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"yt-livealert/internal/models"
	"yt-livealert/internal/push"
	"yt-livealert/internal/test"
)

type fakeLiveChecker struct {
	live  map[string]bool
	err   error
	calls int
}

func (f *fakeLiveChecker) IsLive(ctx context.Context, videoID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.live[videoID], nil
}

type fakePushSender struct {
	sent     []string // endpoints that received a delivery
	payloads [][]byte
	failures map[string]error // endpoint -> error to return
}

func (f *fakePushSender) Send(ctx context.Context, endpoint models.PushEndpoint, payload []byte) error {
	if err, ok := f.failures[endpoint.Endpoint]; ok {
		return err
	}
	f.sent = append(f.sent, endpoint.Endpoint)
	f.payloads = append(f.payloads, payload)
	return nil
}

func channelRow(lastLive *string, name *string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "channel_id", "channel_name", "live_state", "last_live_video_id", "websub_lease_at", "updated_at"}).
		AddRow(1, "UC0000000000000000000001", name, models.LiveStateOffline, lastLive, nil, time.Now())
}

func endpointRow(id int, userID, endpoint string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "endpoint", "p256dh", "auth", "created_at"}).
		AddRow(id, userID, endpoint, "p256dh-key", "auth-key", time.Now())
}

func TestHandleFeedUpdateNewLive(t *testing.T) {
	_, mock := test.NewMockDB(t)

	name := "Gopher Live"
	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, &name))

	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT user_id FROM subscriptions WHERE channel_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-a").AddRow("user-b"))

	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-a").
		WillReturnRows(endpointRow(10, "user-a", "https://push.example/a"))
	mock.ExpectExec(`INSERT INTO notification_logs`).
		WithArgs("user-a", 1, "vid1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-b").
		WillReturnRows(endpointRow(11, "user-b", "https://push.example/b"))
	mock.ExpectExec(`INSERT INTO notification_logs`).
		WithArgs("user-b", 1, "vid1").
		WillReturnResult(sqlmock.NewResult(2, 1))

	live := &fakeLiveChecker{live: map[string]bool{"vid1": true}}
	sender := &fakePushSender{}
	n := New(live, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://push.example/a", "https://push.example/b"}, sender.sent)

	var payload Payload
	assert.NoError(t, json.Unmarshal(sender.payloads[0], &payload))
	assert.Equal(t, "Live now: Gopher Live", payload.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", payload.Data.URL)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdatePayloadFallsBackToChannelID(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))
	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT user_id FROM subscriptions WHERE channel_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-a"))
	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-a").
		WillReturnRows(endpointRow(10, "user-a", "https://push.example/a"))
	mock.ExpectExec(`INSERT INTO notification_logs`).
		WithArgs("user-a", 1, "vid1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sender := &fakePushSender{}
	n := New(&fakeLiveChecker{live: map[string]bool{"vid1": true}}, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)

	var payload Payload
	assert.NoError(t, json.Unmarshal(sender.payloads[0], &payload))
	assert.Equal(t, "Live now: UC0000000000000000000001", payload.Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateDedup(t *testing.T) {
	_, mock := test.NewMockDB(t)

	lastLive := "vid1"
	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(&lastLive, nil))

	live := &fakeLiveChecker{live: map[string]bool{"vid1": true}}
	sender := &fakePushSender{}
	n := New(live, sender)

	// Same broadcast a second time: the oracle still says live, but the
	// stored video ID suppresses the campaign before any write.
	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateNewBroadcastAfterPrevious(t *testing.T) {
	_, mock := test.NewMockDB(t)

	lastLive := "vid1"
	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(&lastLive, nil))
	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid2", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT user_id FROM subscriptions WHERE channel_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-a"))
	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-a").
		WillReturnRows(endpointRow(10, "user-a", "https://push.example/a"))
	mock.ExpectExec(`INSERT INTO notification_logs`).
		WithArgs("user-a", 1, "vid2").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sender := &fakePushSender{}
	n := New(&fakeLiveChecker{live: map[string]bool{"vid2": true}}, sender)

	// A different broadcast on the same channel starts a fresh campaign.
	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid2")
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://push.example/a"}, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateNotLive(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))

	live := &fakeLiveChecker{live: map[string]bool{}} // upload ping: not live
	sender := &fakePushSender{}
	n := New(live, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Equal(t, 1, live.calls)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateUnknownChannel(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UCunknown000000000000001").
		WillReturnError(sql.ErrNoRows)

	live := &fakeLiveChecker{live: map[string]bool{"vid1": true}}
	sender := &fakePushSender{}
	n := New(live, sender)

	err := n.HandleFeedUpdate(context.Background(), "UCunknown000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Zero(t, live.calls)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateOracleError(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))

	live := &fakeLiveChecker{err: errors.New("api unreachable")}
	sender := &fakePushSender{}
	n := New(live, sender)

	// Oracle failure abandons the invocation with no state change; the
	// hub's retry is the only recovery.
	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateLostCommitRace(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))
	// Conditional update matched no rows: a concurrent invocation
	// already committed this broadcast.
	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid1", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	sender := &fakePushSender{}
	n := New(&fakeLiveChecker{live: map[string]bool{"vid1": true}}, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateFanOutIsolation(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))
	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT user_id FROM subscriptions WHERE channel_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-a").AddRow("user-b"))

	// user-a's endpoint fails with a transient 500: no log entry, no
	// deletion, and user-b is still delivered.
	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-a").
		WillReturnRows(endpointRow(10, "user-a", "https://push.example/a"))
	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-b").
		WillReturnRows(endpointRow(11, "user-b", "https://push.example/b"))
	mock.ExpectExec(`INSERT INTO notification_logs`).
		WithArgs("user-b", 1, "vid1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sender := &fakePushSender{failures: map[string]error{
		"https://push.example/a": &push.StatusError{StatusCode: 500},
	}}
	n := New(&fakeLiveChecker{live: map[string]bool{"vid1": true}}, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://push.example/b"}, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateEndpointPruning(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))
	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT user_id FROM subscriptions WHERE channel_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("user-a").AddRow("user-b"))

	// user-a's endpoint is gone (410): deleted, no log entry.
	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-a").
		WillReturnRows(endpointRow(10, "user-a", "https://push.example/a"))
	mock.ExpectExec(`DELETE FROM push_endpoints WHERE id = \$1`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT \* FROM push_endpoints WHERE user_id = \$1`).
		WithArgs("user-b").
		WillReturnRows(endpointRow(11, "user-b", "https://push.example/b"))
	mock.ExpectExec(`INSERT INTO notification_logs`).
		WithArgs("user-b", 1, "vid1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sender := &fakePushSender{failures: map[string]error{
		"https://push.example/a": &push.StatusError{StatusCode: 410},
	}}
	n := New(&fakeLiveChecker{live: map[string]bool{"vid1": true}}, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://push.example/b"}, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleFeedUpdateNoSubscribers(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM channels WHERE channel_id = \$1`).
		WithArgs("UC0000000000000000000001").
		WillReturnRows(channelRow(nil, nil))
	mock.ExpectExec(`UPDATE channels`).
		WithArgs(models.LiveStateLive, "vid1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT user_id FROM subscriptions WHERE channel_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	sender := &fakePushSender{}
	n := New(&fakeLiveChecker{live: map[string]bool{"vid1": true}}, sender)

	err := n.HandleFeedUpdate(context.Background(), "UC0000000000000000000001", "vid1")
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
