package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// videosEndpoint is a var so tests can point the client at a stub server.
var videosEndpoint = "https://www.googleapis.com/youtube/v3/videos"

// Client answers live-status questions via the YouTube Data API v3.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type videosResponse struct {
	Items []struct {
		LiveStreamingDetails *struct {
			ActualStartTime string `json:"actualStartTime"`
			ActualEndTime   string `json:"actualEndTime"`
		} `json:"liveStreamingDetails"`
	} `json:"items"`
}

// IsLive reports whether the video is an active live broadcast: started
// and not yet ended. Uploads have no liveStreamingDetails at all and a
// finished stream has actualEndTime set; both report false.
func (c *Client) IsLive(ctx context.Context, videoID string) (bool, error) {
	if c.apiKey == "" {
		return false, fmt.Errorf("youtube: YOUTUBE_API_KEY is not set")
	}

	q := url.Values{
		"part": {"liveStreamingDetails"},
		"id":   {videoID},
		"key":  {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videosEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("youtube: failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("youtube: videos request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("youtube: videos request returned status %d", resp.StatusCode)
	}

	var data videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false, fmt.Errorf("youtube: failed to decode response: %w", err)
	}

	if len(data.Items) == 0 {
		return false, nil
	}

	details := data.Items[0].LiveStreamingDetails
	if details == nil {
		return false, nil
	}

	return details.ActualStartTime != "" && details.ActualEndTime == "", nil
}
