package websub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	hubURL = "https://pubsubhubbub.appspot.com/"

	// LeaseSeconds is the lease requested from the hub (5 days). Renewal
	// is driven by the worker before the lease runs out.
	LeaseSeconds = 432000
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// TopicURL returns the hub topic for a channel's video feed.
func TopicURL(channelID string) string {
	return "https://www.youtube.com/xml/feeds/videos.xml?channel_id=" + channelID
}

// Subscribe asks the hub to (re)subscribe our callback to the channel's
// feed. The hub verifies the callback out of band, so a nil return only
// means the request was accepted.
func Subscribe(ctx context.Context, channelID string) error {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		return fmt.Errorf("websub: APP_URL is not set")
	}

	form := url.Values{
		"hub.callback":      {strings.TrimRight(appURL, "/") + "/websub/callback"},
		"hub.topic":         {TopicURL(channelID)},
		"hub.mode":          {"subscribe"},
		"hub.lease_seconds": {fmt.Sprintf("%d", LeaseSeconds)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hubURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("websub: failed to build subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("websub: subscribe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("websub: hub returned status %d", resp.StatusCode)
	}

	return nil
}
