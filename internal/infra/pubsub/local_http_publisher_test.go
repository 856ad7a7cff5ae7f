package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cleanops/config"
	"cleanops/internal/domain/constants"
	"cleanops/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalHTTPPublisher_PublishTriggerEvent(t *testing.T) {
	reference := time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)

	var (
		received  PushMessage
		requestID string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, discardLogger())
	err := publisher.PublishTriggerEvent(context.Background(), &service.TriggerEvent{
		RequestID:     "req-7",
		Task:          constants.TaskGenerateServices,
		ScheduleTime:  reference,
		ReferenceTime: &reference,
	})
	require.NoError(t, err)

	assert.Equal(t, "req-7", requestID)
	assert.Equal(t, constants.TaskGenerateServices, received.Message.Attributes["task"])
	assert.Equal(t, "req-7", received.Message.Attributes["request_id"])
	assert.NotEmpty(t, received.Message.MessageID)

	data, err := base64.StdEncoding.DecodeString(received.Message.Data)
	require.NoError(t, err)
	var event service.TriggerEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, constants.TaskGenerateServices, event.Task)
	require.NotNil(t, event.ReferenceTime)
	assert.True(t, reference.Equal(*event.ReferenceTime))
}

func TestLocalHTTPPublisher_RejectedDelivery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, discardLogger())
	err := publisher.PublishTriggerEvent(context.Background(), &service.TriggerEvent{Task: constants.TaskProcessPayroll})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewEventPublisher(t *testing.T) {
	tests := []struct {
		name    string
		pubsub  *config.PubSubConfig
		wantErr bool
	}{
		{name: "not configured", pubsub: nil},
		{name: "local", pubsub: &config.PubSubConfig{Provider: constants.PubSubProviderLocal, LocalEndpoint: "http://localhost:8080/push"}},
		{name: "local without endpoint", pubsub: &config.PubSubConfig{Provider: constants.PubSubProviderLocal}, wantErr: true},
		{name: "google without project", pubsub: &config.PubSubConfig{Provider: constants.PubSubProviderGoogle, TopicID: "tasks"}, wantErr: true},
		{name: "unknown provider", pubsub: &config.PubSubConfig{Provider: "kafka"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			publisher, err := NewEventPublisher(PublisherParams{
				Lc:     lc,
				Ctx:    context.Background(),
				Config: &config.Config{PubSub: tt.pubsub},
				Logger: discardLogger(),
			})
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, publisher)
			lc.RequireStart().RequireStop()
		})
	}
}
