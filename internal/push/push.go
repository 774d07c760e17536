package push

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"yt-livealert/internal/models"
)

// StatusError reports a push service rejection by HTTP status code.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push: service returned status %d", e.StatusCode)
}

// Permanent reports whether the endpoint is permanently invalid and
// should be deleted. Push services use 410 Gone for expired
// subscriptions; some return 404 for the same condition.
func (e *StatusError) Permanent() bool {
	return e.StatusCode == http.StatusGone || e.StatusCode == http.StatusNotFound
}

// Sender delivers Web Push messages signed with the service's VAPID keys.
type Sender struct {
	options webpush.Options
}

// NewSender builds a Sender from the VAPID key pair. All three values
// are required by the push protocol.
func NewSender(subject, publicKey, privateKey string) (*Sender, error) {
	if subject == "" || publicKey == "" || privateKey == "" {
		return nil, fmt.Errorf("push: VAPID keys are not configured")
	}
	return &Sender{
		options: webpush.Options{
			Subscriber:      subject,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             60,
		},
	}, nil
}

// Send delivers the payload to one endpoint. A non-2xx response from the
// push service is returned as a *StatusError.
func (s *Sender) Send(ctx context.Context, endpoint models.PushEndpoint, payload []byte) error {
	sub := &webpush.Subscription{
		Endpoint: endpoint.Endpoint,
		Keys: webpush.Keys{
			P256dh: endpoint.P256dh,
			Auth:   endpoint.Auth,
		},
	}

	options := s.options
	resp, err := webpush.SendNotificationWithContext(ctx, payload, sub, &options)
	if err != nil {
		return fmt.Errorf("push: delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	return nil
}
