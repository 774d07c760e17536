package handlers

import (
	"log"
	"net/http"

	"yt-livealert/internal/db"
	"yt-livealert/internal/middleware"
	"yt-livealert/internal/models"
)

const notificationHistoryLimit = 20

// GetNotifications returns the caller's most recent notification log
// entries, newest first.
func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	notifications, err := db.GetRecentNotificationsByUserID(user.ID, notificationHistoryLimit)
	if err != nil {
		log.Printf("Error getting notifications: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.NotificationView{}
	}

	writeJSON(w, http.StatusOK, notifications)
}
