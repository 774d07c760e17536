package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"yt-livealert/internal/websub"
	"yt-livealert/pkg/tasks"
)

// WebSubVerify answers the hub's subscription verification (GET). The
// challenge must be echoed back verbatim for subscribe and unsubscribe.
// A bare GET with no parameters gets a 200 too: answering 4xx to hub
// health probes can get the callback unsubscribed.
func (h *Handlers) WebSubVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	challenge := q.Get("hub.challenge")
	topic := q.Get("hub.topic")

	if (mode == "subscribe" || mode == "unsubscribe") && challenge != "" && topic != "" {
		log.Printf("WebSub verified (%s): %s", mode, topic)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(challenge))
		return
	}

	if mode == "" && challenge == "" && topic == "" {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("OK"))
		return
	}

	http.Error(w, "Bad Request", http.StatusBadRequest)
}

// WebSubReceive accepts a feed ping (POST), hands the live-detection
// work to the worker, and acks. The hub always gets a 200 no matter
// what the body looked like or whether the enqueue worked: returning
// errors here risks the hub dropping our subscription.
func (h *Handlers) WebSubReceive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading WebSub body: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	channelID, videoID, err := websub.ParseFeed(body)
	if err != nil {
		if !errors.Is(err, websub.ErrNoEntry) {
			log.Printf("Error parsing WebSub feed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	log.Printf("WebSub feed received: channel=%s, video=%s", channelID, videoID)

	task, err := tasks.NewFeedUpdateTask(channelID, videoID)
	if err != nil {
		log.Printf("Error creating feed update task: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if _, err := h.asynqClient.Enqueue(task); err != nil {
		log.Printf("Error enqueuing feed update task: %v", err)
	}

	w.WriteHeader(http.StatusOK)
}
