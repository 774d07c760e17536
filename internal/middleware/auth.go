package middleware

import (
	"context"
	"log"
	"net/http"

	"yt-livealert/internal/db"
)

type contextKey string

// UserContextKey is the key for the user in the context.
const UserContextKey = contextKey("user")

// AuthMiddleware reads the opaque client identifier from the X-User-Id
// header, upserts the user, and stores it in the request context. There
// is deliberately no stronger authentication than this identifier.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			http.Error(w, "X-User-Id header is required", http.StatusBadRequest)
			return
		}

		user, err := db.UpsertUser(userID)
		if err != nil {
			log.Printf("Error upserting user %s: %v", userID, err)
			http.Error(w, "Failed to authenticate user", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
