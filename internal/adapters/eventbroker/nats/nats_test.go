package nats_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	natsadapter "media-pipeline/internal/adapters/eventbroker/nats"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type mockHandler struct {
	messages [][]byte
	received chan struct{}
	err      error
	delay    time.Duration
	mu       sync.Mutex
}

func (m *mockHandler) HandleMessage(ctx context.Context, data []byte) error {
	time.Sleep(m.delay)
	m.mu.Lock()
	m.messages = append(m.messages, data)
	m.mu.Unlock()

	if m.received != nil {
		m.received <- struct{}{}
	}
	return m.err
}

func (m *mockHandler) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func setupNATSContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		ExposedPorts: []string{"4222/tcp"},
		Cmd:          []string{"-js"},
		WaitingFor:   wait.ForLog("Server is ready"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	return "nats://" + host + ":" + port.Port()
}

func testConfig(url, stream string) config.NATSConfig {
	return config.NATSConfig{
		URL:                url,
		StreamName:         stream,
		Subject:            stream + ".requested",
		ConsumerName:       stream + "-worker",
		EventSubjectPrefix: stream + ".events",
		AckWait:            2 * time.Second,
		MaxDeliver:         5,
	}
}

func setupStream(t *testing.T, cfg config.NATSConfig) (*nats.Conn, jetstream.JetStream) {
	t.Helper()
	nc, err := nats.Connect(cfg.URL)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	require.NoError(t, natsadapter.EnsureStream(context.Background(), js, cfg))
	return nc, js
}

func TestConsumer_Subscribe(t *testing.T) {
	// Arrange
	cfg := testConfig(setupNATSContainer(t), "UPLOADS")
	_, js := setupStream(t, cfg)

	handler := &mockHandler{received: make(chan struct{}, 1)}

	consumer, err := natsadapter.NewNATSConsumer(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgData, err := json.Marshal(domain.UploadRequestMessage{FilePath: "/tmp/a.mp4", OwnerID: uuid.NewString()})
	require.NoError(t, err)

	// Act
	require.NoError(t, consumer.Subscribe(ctx, handler))
	_, err = js.Publish(ctx, cfg.Subject, msgData)
	require.NoError(t, err)

	select {
	case <-handler.received:
	case <-time.After(3 * time.Second):
		t.Fatal("message not received")
	}

	// Assert
	require.Equal(t, 1, handler.count())
	assert.Equal(t, msgData, handler.messages[0])
}

func TestConsumer_Subscribe_HandlerErrorRedelivers(t *testing.T) {
	// Arrange
	cfg := testConfig(setupNATSContainer(t), "FAILING")
	_, js := setupStream(t, cfg)

	handler := &mockHandler{
		received: make(chan struct{}, 3),
		err:      assert.AnError,
	}

	consumer, err := natsadapter.NewNATSConsumer(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Act
	require.NoError(t, consumer.Subscribe(ctx, handler))
	_, err = js.Publish(ctx, cfg.Subject, []byte("fail"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-handler.received:
		case <-time.After(3 * time.Second):
			t.Fatal("expected redelivery")
		}
	}

	// Assert
	assert.GreaterOrEqual(t, handler.count(), 2)
}

func TestConsumer_SlowHandlerIsNotRedelivered(t *testing.T) {
	// Arrange
	cfg := testConfig(setupNATSContainer(t), "SLOW")
	_, js := setupStream(t, cfg)

	handler := &mockHandler{
		received: make(chan struct{}, 2),
		delay:    3 * time.Second,
	}

	consumer, err := natsadapter.NewNATSConsumer(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Act
	require.NoError(t, consumer.Subscribe(ctx, handler))
	_, err = js.Publish(ctx, cfg.Subject, []byte("slow"))
	require.NoError(t, err)

	select {
	case <-handler.received:
	case <-time.After(6 * time.Second):
		t.Fatal("message not received")
	}

	// Assert
	select {
	case <-handler.received:
		t.Fatal("message redelivered while the handler was still running")
	case <-time.After(4 * time.Second):
	}
	assert.Equal(t, 1, handler.count())
}

func TestConsumer_GracefulShutdown(t *testing.T) {
	// Arrange
	cfg := testConfig(setupNATSContainer(t), "SHUTDOWN")
	nc, _ := setupStream(t, cfg)

	handler := &mockHandler{received: make(chan struct{}, 1)}
	consumer, err := natsadapter.NewNATSConsumer(cfg, zerolog.Nop())
	require.NoError(t, err)

	// Act
	require.NoError(t, consumer.Subscribe(context.Background(), handler))
	require.NoError(t, consumer.Close())
	require.NoError(t, nc.Publish(cfg.Subject, []byte("late-data")))

	// Assert
	select {
	case <-handler.received:
		t.Fatal("message should not have been processed after Close")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestPublisher_Publish(t *testing.T) {
	// Arrange
	cfg := testConfig(setupNATSContainer(t), "EVENTS")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	publisher, err := natsadapter.NewPublisher(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer publisher.Close()

	event := domain.Event{
		Type:       domain.EventTypeAssetPublished,
		JobID:      uuid.New(),
		OccurredAt: time.Now().UTC(),
		Payload:    &domain.CommitPayload{AssetID: uuid.New(), MediaURL: "https://cdn.test/a.mp4"},
	}

	// Act
	require.NoError(t, publisher.Publish(ctx, event))
	require.NoError(t, publisher.Publish(ctx, event))

	// Assert
	_, js := setupStream(t, cfg)
	stream, err := js.Stream(ctx, cfg.StreamName)
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs, "republished event should be deduplicated")

	msg, err := stream.GetLastMsgForSubject(ctx, cfg.EventSubjectPrefix+".asset.published")
	require.NoError(t, err)
	var got domain.Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, event.JobID, got.JobID)
	assert.Equal(t, event.Payload.MediaURL, got.Payload.MediaURL)
}
