package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"yt-livealert/pkg/tasks"
)

type Handlers struct {
	asynqClient    tasks.TaskEnqueuer
	vapidPublicKey string
}

func New(asynqClient tasks.TaskEnqueuer, vapidPublicKey string) *Handlers {
	return &Handlers{
		asynqClient:    asynqClient,
		vapidPublicKey: vapidPublicKey,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetVAPIDKey hands the browser the public key it needs to create a
// push subscription.
func (h *Handlers) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.vapidPublicKey})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
