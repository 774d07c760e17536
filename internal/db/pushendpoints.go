package db

import (
	"log"

	"yt-livealert/internal/models"
)

// UpsertPushEndpoint registers a push endpoint for a user. A known
// endpoint gets its keys and owner updated instead of a duplicate row.
func UpsertPushEndpoint(userID, endpoint, p256dh, auth string) (*models.PushEndpoint, error) {
	query := `
		INSERT INTO push_endpoints (user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
		RETURNING id, user_id, endpoint, p256dh, auth, created_at
	`
	ep := &models.PushEndpoint{}
	err := DB.Get(ep, query, userID, endpoint, p256dh, auth)
	if err != nil {
		log.Printf("Error upserting push endpoint for user %s: %v", userID, err)
		return nil, err
	}
	return ep, nil
}

func GetPushEndpointsByUserID(userID string) ([]models.PushEndpoint, error) {
	var endpoints []models.PushEndpoint
	err := DB.Select(&endpoints, "SELECT * FROM push_endpoints WHERE user_id = $1", userID)
	return endpoints, err
}

// DeletePushEndpoint removes a single endpoint, used when the push
// service reports it permanently gone.
func DeletePushEndpoint(id int) error {
	_, err := DB.Exec("DELETE FROM push_endpoints WHERE id = $1", id)
	return err
}

// DeletePushEndpointsByUserID revokes all of a user's endpoints.
func DeletePushEndpointsByUserID(userID string) error {
	_, err := DB.Exec("DELETE FROM push_endpoints WHERE user_id = $1", userID)
	return err
}
