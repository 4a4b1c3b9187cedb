package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This test requires a running Redis instance
// If Redis is not available, the test will be skipped
func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	stream := "test_stream_a05s"
	publisher := NewRedisPublisher("localhost:6379", 0, stream, 10)
	defer publisher.Close()

	if err := publisher.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer publisher.client.Del(ctx, stream)

	err := publisher.Publish(ctx, "Kabum", []byte(`{"title":"Samsung Galaxy A05s"}`))
	require.NoError(t, err)

	messages, err := publisher.client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.NotEmpty(t, messages)

	last := messages[len(messages)-1]
	assert.Equal(t, "Kabum", last.Values["store"])
	assert.Equal(t, `{"title":"Samsung Galaxy A05s"}`, last.Values["listing"])
}
