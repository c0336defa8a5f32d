package broker

import (
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSubjects(t *testing.T) {
	p := NewNatsPublisher(nil, "", quietLogger())
	assert.Equal(t, "dalmuti.room.r1", p.RoomSubject("r1"))
	assert.Equal(t, "dalmuti.player.ai-7", p.PlayerSubject("ai-7"))
}

// TestNatsRoundTrip needs a live server; set NATS_URL to run it.
func TestNatsRoundTrip(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}
	nc, err := Connect(url, quietLogger())
	require.NoError(t, err)
	defer nc.Close()

	p := NewNatsPublisher(nc, "dalmuti-test", quietLogger())
	sub, err := nc.SubscribeSync(p.PlayerSubject("p1"))
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	p.Send("p1", events.Event{Type: events.TaxRequest})
	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "tax-request", got["type"])
}
