package webhook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chimbuka/mabuku/domain"
	mabukuhttp "github.com/chimbuka/mabuku/pkg/http"
)

// Config configures the webhook notifier. Every notification is posted
// as one JSON document to the configured endpoint.
type Config struct {
	HTTPClientConfig *mabukuhttp.HTTPClientConfig `mapstructure:",squash"`
}

type Notifier struct {
	client *mabukuhttp.HTTPClient
}

func NewNotifier(config *Config) (*Notifier, error) {
	client, err := mabukuhttp.NewHTTPClient(config.HTTPClientConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing webhook client: %w", err)
	}
	return &Notifier{client: client}, nil
}

func (n *Notifier) Notify(ctx context.Context, notifications []domain.Notification) []error {
	var errs []error
	for _, notification := range notifications {
		if err := n.client.Do(ctx, http.MethodPost, "", notification, nil); err != nil {
			errs = append(errs, fmt.Errorf("notifying %s: %w", notification.User, err))
		}
	}
	return errs
}
