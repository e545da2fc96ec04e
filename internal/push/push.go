package push

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// ErrExpired is returned when a push subscription is no longer valid (410 Gone).
var ErrExpired = errors.New("push subscription expired")

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Service handles sending web push notifications.
type Service struct {
	publicKey  string
	privateKey string
}

// NewService creates a new push service with VAPID keys.
func NewService(publicKey, privateKey string) *Service {
	return &Service{
		publicKey:  publicKey,
		privateKey: privateKey,
	}
}

// Configured reports whether VAPID keys are present.
func (s *Service) Configured() bool {
	return s.publicKey != "" && s.privateKey != ""
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.publicKey
}

// Send sends a push notification to a subscription.
func (s *Service) Send(sub *model.PushSubscription, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotification(data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      "mailto:noreply@mealboard.app",
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}

// Notifier fans a notification out to every subscription in a household,
// pruning subscriptions the push service reports as gone.
type Notifier struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, subs *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{service: service, subs: subs, logger: logger}
}

// NotifyHousehold sends the payload to all of the household's devices.
// Individual delivery failures are logged, not returned; a menu update must
// not fail because one phone is unreachable.
func (n *Notifier) NotifyHousehold(householdID int64, payload Payload) {
	if !n.service.Configured() {
		return
	}

	subs, err := n.subs.ListByHousehold(householdID)
	if err != nil {
		n.logger.Error("list push subscriptions", "household_id", householdID, "error", err)
		return
	}

	for i := range subs {
		err := n.service.Send(&subs[i], payload)
		if err == ErrExpired {
			if err := n.subs.DeleteByEndpoint(subs[i].Endpoint); err != nil {
				n.logger.Error("prune expired subscription", "error", err)
			}
			continue
		}
		if err != nil {
			n.logger.Warn("push delivery failed", "member_id", subs[i].MemberID, "error", err)
		}
	}
}

// ItemHidden builds the payload announcing an entree dropped below the
// popularity threshold.
func ItemHidden(itemName string) Payload {
	return Payload{
		Title: "Menu item hidden",
		Body:  fmt.Sprintf("%s fell below the popularity threshold and was hidden", itemName),
		Tag:   model.NotifTypeItemHidden,
		URL:   "/menu",
	}
}

// ListGenerated builds the payload announcing a new shopping list.
func ListGenerated(start, end string) Payload {
	return Payload{
		Title: "Shopping list ready",
		Body:  fmt.Sprintf("A shopping list for %s to %s was generated", start, end),
		Tag:   model.NotifTypeListGenerated,
		URL:   "/shopping",
	}
}

// GenerateVAPIDKeys generates a new ECDSA P-256 key pair for VAPID.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generate ECDSA key: %w", err)
	}

	pubBytes := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)
	privateKey = base64.RawURLEncoding.EncodeToString(key.D.Bytes())

	return publicKey, privateKey, nil
}
