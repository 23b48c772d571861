package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimbuka/mabuku/domain"
	mabukuhttp "github.com/chimbuka/mabuku/pkg/http"
	"github.com/chimbuka/mabuku/plugins/notifiers/webhook"
)

func TestNotifier_Notify(t *testing.T) {
	t.Run("should post each notification as JSON", func(t *testing.T) {
		var received []domain.Notification
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var n domain.Notification
			require.NoError(t, json.NewDecoder(r.Body).Decode(&n))
			received = append(received, n)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		notifier, err := webhook.NewNotifier(&webhook.Config{
			HTTPClientConfig: &mabukuhttp.HTTPClientConfig{URL: ts.URL},
		})
		require.NoError(t, err)

		errs := notifier.Notify(context.Background(), []domain.Notification{
			{User: "approver@example.com", Message: domain.NotificationMessage{Type: domain.NotificationTypeApprovalRequested}},
			{User: "owner@example.com", Message: domain.NotificationMessage{Type: domain.NotificationTypeLowStockAlert}},
		})

		assert.Nil(t, errs)
		assert.Len(t, received, 2)
		assert.Equal(t, "approver@example.com", received[0].User)
	})

	t.Run("should collect an error per failed notification", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		notifier, err := webhook.NewNotifier(&webhook.Config{
			HTTPClientConfig: &mabukuhttp.HTTPClientConfig{URL: ts.URL, RetryCount: 1},
		})
		require.NoError(t, err)

		errs := notifier.Notify(context.Background(), []domain.Notification{
			{User: "approver@example.com", Message: domain.NotificationMessage{Type: domain.NotificationTypeApprovalRequested}},
		})

		assert.Len(t, errs, 1)
	})
}
