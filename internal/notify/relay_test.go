package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitReady(t *testing.T, r *RedisRelay) {
	t.Helper()
	select {
	case <-r.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("relay never subscribed")
	}
}

func TestRedisRelayFansOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newInstance := func() (*Hub, *RedisRelay) {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })

		hub, stop := startHub(t)
		t.Cleanup(stop)

		relay := NewRedisRelay(rdb, "storefront:events", hub, logger.Discard())
		go relay.Run(ctx)
		waitReady(t, relay)
		return hub, relay
	}

	hubA, relayA := newInstance()
	hubB, _ := newInstance()

	subA, err := hubA.Subscribe()
	require.NoError(t, err)
	subB, err := hubB.Subscribe()
	require.NoError(t, err)

	event := NewEvent(EventNewOrder, NewOrderPayload{
		OrderID:     31,
		TotalAmount: decimal.RequireFromString("249.50"),
		UserName:    "Meera",
	})
	require.NoError(t, relayA.Publish(ctx, event))

	for _, sub := range []*Subscriber{subA, subB} {
		var decoded struct {
			ID   string `json:"id"`
			Type string `json:"event"`
			Data struct {
				OrderID     uint   `json:"orderId"`
				TotalAmount string `json:"totalAmount"`
				UserName    string `json:"userName"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(receive(t, sub), &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		assert.Equal(t, EventNewOrder, decoded.Type)
		assert.Equal(t, uint(31), decoded.Data.OrderID)
		assert.Equal(t, "249.5", decoded.Data.TotalAmount)
		assert.Equal(t, "Meera", decoded.Data.UserName)
	}
}

func TestRedisRelayPublishFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	relay := NewRedisRelay(rdb, "storefront:events", NewHub(logger.Discard()), logger.Discard())
	err := relay.Publish(context.Background(), NewEvent(EventNewOrder, nil))
	assert.Error(t, err)
}

func TestNewPublisherSelectsBackend(t *testing.T) {
	hub := NewHub(logger.Discard())
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	pub, relay, err := NewPublisher(config.NotifierConfig{Backend: config.NotifierBackendLocal}, hub, rdb, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &LocalPublisher{}, pub)
	assert.Nil(t, relay)

	pub, relay, err = NewPublisher(config.NotifierConfig{Backend: config.NotifierBackendRedis, RedisChannel: "c"}, hub, rdb, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &RedisRelay{}, pub)
	assert.NotNil(t, relay)

	pub, relay, err = NewPublisher(config.NotifierConfig{
		Backend:          config.NotifierBackendKafka,
		KafkaBrokers:     []string{"localhost:9092"},
		KafkaTopic:       "storefront.events",
		KafkaGroupPrefix: "live",
	}, hub, rdb, logger.Discard())
	require.NoError(t, err)
	kafkaRelay, ok := pub.(*KafkaRelay)
	require.True(t, ok)
	assert.NotNil(t, relay)
	assert.True(t, strings.HasPrefix(kafkaRelay.GroupID(), "live-"))
	require.NoError(t, kafkaRelay.Close())

	_, _, err = NewPublisher(config.NotifierConfig{Backend: "smoke-signals"}, hub, rdb, logger.Discard())
	assert.Error(t, err)
}

func TestKafkaRelaysUseDistinctGroups(t *testing.T) {
	hub := NewHub(logger.Discard())
	a := NewKafkaRelay([]string{"localhost:9092"}, "t", "live", hub, logger.Discard())
	b := NewKafkaRelay([]string{"localhost:9092"}, "t", "live", hub, logger.Discard())

	assert.NotEqual(t, a.GroupID(), b.GroupID())
}

func TestWebsocketHandlerStreamsBroadcasts(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()

	srv := httptest.NewServer(NewWebsocketHandler(hub, nil, logger.Discard()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.True(t, hub.Broadcast([]byte(`{"event":"newOrder"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"newOrder"}`, string(msg))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketHandlerRejectsUnknownOrigin(t *testing.T) {
	hub, stop := startHub(t)
	defer stop()

	srv := httptest.NewServer(NewWebsocketHandler(hub, []string{"http://shop.local"}, logger.Discard()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"http://evil.local"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	assert.Eventually(t, func() bool { return hub.SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
