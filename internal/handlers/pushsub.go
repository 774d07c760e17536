package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"yt-livealert/internal/db"
	"yt-livealert/internal/middleware"
	"yt-livealert/internal/models"
)

type pushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// PostPushSubscribe registers (or refreshes) the caller's browser push
// endpoint.
func (h *Handlers) PostPushSubscribe(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	var req pushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		http.Error(w, "endpoint and keys are required", http.StatusBadRequest)
		return
	}

	if _, err := db.UpsertPushEndpoint(user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		log.Printf("Error upserting push endpoint: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// DeletePushSubscribe revokes all of the caller's push endpoints.
func (h *Handlers) DeletePushSubscribe(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	if err := db.DeletePushEndpointsByUserID(user.ID); err != nil {
		log.Printf("Error deleting push endpoints: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
