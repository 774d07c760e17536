package websub

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ErrNoEntry is returned when a feed ping carries no video entry, which
// happens for deleted-video notifications and empty keepalive pings.
var ErrNoEntry = errors.New("websub: feed contains no entry")

type feedXML struct {
	XMLName xml.Name  `xml:"http://www.w3.org/2005/Atom feed"`
	Entry   *entryXML `xml:"entry"`
}

type entryXML struct {
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	ChannelID string `xml:"http://www.youtube.com/xml/schemas/2015 channelId"`
}

// ParseFeed extracts the channel and video IDs from a WebSub feed ping.
// YouTube pushes an Atom fragment with a single entry carrying the
// yt:videoId and yt:channelId elements.
func ParseFeed(body []byte) (channelID, videoID string, err error) {
	var feed feedXML
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", "", fmt.Errorf("websub: failed to parse feed: %w", err)
	}

	if feed.Entry == nil {
		return "", "", ErrNoEntry
	}
	if feed.Entry.ChannelID == "" || feed.Entry.VideoID == "" {
		return "", "", ErrNoEntry
	}

	return feed.Entry.ChannelID, feed.Entry.VideoID, nil
}
