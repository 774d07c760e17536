package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"

	"yt-livealert/internal/db"
	"yt-livealert/internal/middleware"
	"yt-livealert/internal/models"
	"yt-livealert/pkg/tasks"
)

const maxChannelsPerUser = 10

var channelIDPattern = regexp.MustCompile(`^UC[\w-]{22}$`)

type subscribeChannelRequest struct {
	ChannelID string `json:"channelId"`
}

func (h *Handlers) GetChannels(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	channels, err := db.GetSubscribedChannelsByUserID(user.ID)
	if err != nil {
		log.Printf("Error getting channels: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if channels == nil {
		channels = []models.SubscribedChannel{}
	}

	writeJSON(w, http.StatusOK, channels)
}

func (h *Handlers) PostChannel(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	var req subscribeChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if !channelIDPattern.MatchString(req.ChannelID) {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	// Check subscription limit
	count, err := db.CountSubscriptionsByUserID(user.ID)
	if err != nil {
		log.Printf("Error counting subscriptions: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if count >= maxChannelsPerUser {
		http.Error(w, "Channel limit reached", http.StatusTooManyRequests)
		return
	}

	channel, err := db.UpsertChannel(req.ChannelID)
	if err != nil {
		log.Printf("Error upserting channel %s: %v", req.ChannelID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	exists, err := db.HasSubscription(user.ID, channel.ID)
	if err != nil {
		log.Printf("Error checking subscription: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "Already subscribed", http.StatusConflict)
		return
	}

	if _, err := db.AddSubscription(user.ID, channel.ID); err != nil {
		log.Printf("Error creating subscription: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// A channel without a lease needs its feed registered at the hub.
	// Fire-and-forget through the worker; the API answer never waits on
	// the hub.
	if channel.WebsubLeaseAt == nil {
		task, err := tasks.NewRenewLeaseTask(channel.ID, channel.ChannelID)
		if err != nil {
			log.Printf("Error creating renew lease task: %v", err)
		} else {
			if _, err := h.asynqClient.Enqueue(task); err != nil {
				log.Printf("Error enqueuing renew lease task: %v", err)
			}
		}
	}

	writeJSON(w, http.StatusCreated, channel)
}

func (h *Handlers) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)
	vars := mux.Vars(r)
	channelDBID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	if err := db.DeleteSubscription(user.ID, channelDBID); err != nil {
		log.Printf("Error deleting subscription: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
