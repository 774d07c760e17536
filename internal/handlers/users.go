package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"yt-livealert/internal/db"
)

type registerUserRequest struct {
	UserID string `json:"userId"`
}

// RegisterUser idempotently creates a user from its client-supplied
// identifier. This route sits outside the auth middleware so a fresh
// browser can register before it has an identity to send.
func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	user, err := db.UpsertUser(req.UserID)
	if err != nil {
		log.Printf("Error registering user: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
