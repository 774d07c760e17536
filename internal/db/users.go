package db

import (
	"log"

	"yt-livealert/internal/models"
)

// UpsertUser inserts a new user or touches an existing one by its
// client-supplied ID.
func UpsertUser(id string) (*models.User, error) {
	query := `
		INSERT INTO users (id)
		VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	user := &models.User{}
	err := DB.Get(user, query, id)
	if err != nil {
		log.Printf("Error upserting user %s: %v", id, err)
		return nil, err
	}
	return user, nil
}
