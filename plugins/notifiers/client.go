package notifiers

import (
	"context"
	"errors"

	"github.com/chimbuka/mabuku/domain"
	"github.com/chimbuka/mabuku/plugins/notifiers/webhook"
	"github.com/chimbuka/mabuku/pkg/log"
)

type Client interface {
	Notify(ctx context.Context, notifications []domain.Notification) []error
}

const (
	ProviderTypeWebhook = "webhook"
	ProviderTypeLog     = "log"
)

type Config struct {
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=webhook log"`

	// webhook
	Webhook *webhook.Config `mapstructure:"webhook" validate:"required_if=Provider webhook"`
}

func NewClient(config *Config, logger log.Logger) (Client, error) {
	switch config.Provider {
	case ProviderTypeWebhook:
		return webhook.NewNotifier(config.Webhook)
	case ProviderTypeLog, "":
		return &logNotifier{logger: logger}, nil
	}

	return nil, errors.New("invalid notifier provider type")
}

// logNotifier writes notifications to the application log; the default
// when no outbound channel is configured.
type logNotifier struct {
	logger log.Logger
}

func (n *logNotifier) Notify(ctx context.Context, notifications []domain.Notification) []error {
	for _, notification := range notifications {
		n.logger.Info(ctx, "notification",
			"user", notification.User,
			"type", notification.Message.Type,
			"variables", notification.Message.Variables,
		)
	}
	return nil
}
