package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"yt-livealert/internal/db"
	"yt-livealert/internal/handlers"
	"yt-livealert/internal/middleware"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	h := handlers.New(asynqClient, os.Getenv("VAPID_PUBLIC_KEY"))
	rateLimiter := middleware.NewRateLimiterMiddleware(5, 10)

	r := mux.NewRouter()

	// Unauthenticated surface: health, hub callback, first-contact routes.
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/websub/callback", h.WebSubVerify).Methods(http.MethodGet)
	r.HandleFunc("/websub/callback", h.WebSubReceive).Methods(http.MethodPost)
	r.HandleFunc("/api/users", h.RegisterUser).Methods(http.MethodPost)
	r.HandleFunc("/api/vapidkey", h.GetVAPIDKey).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware, rateLimiter.Middleware)
	api.HandleFunc("/channels", h.GetChannels).Methods(http.MethodGet)
	api.HandleFunc("/channels", h.PostChannel).Methods(http.MethodPost)
	api.HandleFunc("/channels/{id}", h.DeleteChannel).Methods(http.MethodDelete)
	api.HandleFunc("/push/subscribe", h.PostPushSubscribe).Methods(http.MethodPost)
	api.HandleFunc("/push/subscribe", h.DeletePushSubscribe).Methods(http.MethodDelete)
	api.HandleFunc("/notifications", h.GetNotifications).Methods(http.MethodGet)

	log.Printf("Starting server on :%s (commit: %s)", port, CommitSHA)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
