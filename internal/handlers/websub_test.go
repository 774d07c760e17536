package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"yt-livealert/internal/test"
	"yt-livealert/pkg/tasks"
)

const feedPing = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <yt:videoId>vid1</yt:videoId>
    <yt:channelId>UC0000000000000000000001</yt:channelId>
  </entry>
</feed>`

func TestWebSubVerifyEchoesChallenge(t *testing.T) {
	h := New(&test.MockTaskEnqueuer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/websub/callback?hub.mode=subscribe&hub.challenge=challenge-token&hub.topic=https%3A%2F%2Fexample.com%2Ffeed", nil)
	rr := httptest.NewRecorder()

	h.WebSubVerify(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "challenge-token", rr.Body.String())
}

func TestWebSubVerifyBareGet(t *testing.T) {
	h := New(&test.MockTaskEnqueuer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/websub/callback", nil)
	rr := httptest.NewRecorder()

	h.WebSubVerify(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebSubVerifyIncompleteParams(t *testing.T) {
	h := New(&test.MockTaskEnqueuer{}, "")

	req := httptest.NewRequest(http.MethodGet, "/websub/callback?hub.mode=subscribe", nil)
	rr := httptest.NewRecorder()

	h.WebSubVerify(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWebSubReceiveEnqueuesFeedUpdate(t *testing.T) {
	enqueuer := &test.MockTaskEnqueuer{}
	h := New(enqueuer, "")

	req := httptest.NewRequest(http.MethodPost, "/websub/callback", strings.NewReader(feedPing))
	rr := httptest.NewRecorder()

	h.WebSubReceive(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeFeedUpdate, enqueuer.EnqueuedTasks[0].Type())

	var payload tasks.FeedUpdateTaskPayload
	assert.NoError(t, json.Unmarshal(enqueuer.EnqueuedTasks[0].Payload(), &payload))
	assert.Equal(t, "UC0000000000000000000001", payload.ChannelID)
	assert.Equal(t, "vid1", payload.VideoID)
}

func TestWebSubReceiveAcksUnparseableBody(t *testing.T) {
	enqueuer := &test.MockTaskEnqueuer{}
	h := New(enqueuer, "")

	req := httptest.NewRequest(http.MethodPost, "/websub/callback", strings.NewReader("not xml"))
	rr := httptest.NewRecorder()

	h.WebSubReceive(rr, req)

	// The hub must always get a 200, and nothing is enqueued.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, enqueuer.EnqueuedTasks)
}

func TestWebSubReceiveAcksEmptyFeed(t *testing.T) {
	enqueuer := &test.MockTaskEnqueuer{}
	h := New(enqueuer, "")

	body := `<feed xmlns="http://www.w3.org/2005/Atom"><title>empty</title></feed>`
	req := httptest.NewRequest(http.MethodPost, "/websub/callback", strings.NewReader(body))
	rr := httptest.NewRecorder()

	h.WebSubReceive(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, enqueuer.EnqueuedTasks)
}
