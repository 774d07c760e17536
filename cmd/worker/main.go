package main

import (
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"yt-livealert/internal/db"
	"yt-livealert/internal/notifier"
	"yt-livealert/internal/push"
	"yt-livealert/internal/worker"
	"yt-livealert/internal/youtube"
	"yt-livealert/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	db.InitDB()

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	ytClient := youtube.NewClient(os.Getenv("YOUTUBE_API_KEY"))

	pushSender, err := push.NewSender(
		os.Getenv("VAPID_SUBJECT"),
		os.Getenv("VAPID_PUBLIC_KEY"),
		os.Getenv("VAPID_PRIVATE_KEY"),
	)
	if err != nil {
		log.Fatalf("could not create push sender: %v", err)
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer client.Close()

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			// Exponential backoff for the retryable (lease renewal) tasks.
			// Feed-update tasks never return an error, so they never land here.
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := 5 * time.Minute
				maxDelay := 24 * time.Hour

				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				log.Printf("Task %s failed %d times, retrying in %v", task.Type(), n+1, delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(notifier.New(ytClient, pushSender), client)

	mux.HandleFunc(tasks.TypeFeedUpdate, taskHandler.HandleFeedUpdateTask)
	mux.HandleFunc(tasks.TypeRenewLease, taskHandler.HandleRenewLeaseTask)
	mux.HandleFunc(tasks.TypeRenewAllLeases, taskHandler.HandleRenewAllLeasesTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
