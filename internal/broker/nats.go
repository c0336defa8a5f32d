// internal/broker/nats.go
package broker

import (
	"fmt"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// DefaultPrefix is the first token of every subject.
const DefaultPrefix = "dalmuti"

// Connect dials a NATS server. The connection keeps reconnecting in the
// background if the server goes away.
func Connect(url string, logger *logrus.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("dalmuti"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warnf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Infof("nats reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// NatsPublisher mirrors events onto NATS subjects. The client buffers
// publishes internally, so calls return without waiting on the network.
type NatsPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *logrus.Logger
}

func NewNatsPublisher(conn *nats.Conn, prefix string, logger *logrus.Logger) *NatsPublisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &NatsPublisher{conn: conn, prefix: prefix, logger: logger}
}

// RoomSubject is the subject carrying a room's broadcasts.
func (p *NatsPublisher) RoomSubject(roomID string) string {
	return fmt.Sprintf("%s.room.%s", p.prefix, roomID)
}

// PlayerSubject is the subject carrying one player's private events.
func (p *NatsPublisher) PlayerSubject(playerID string) string {
	return fmt.Sprintf("%s.player.%s", p.prefix, playerID)
}

func (p *NatsPublisher) Broadcast(roomID string, _ []string, ev events.Event) {
	p.publish(p.RoomSubject(roomID), ev)
}

func (p *NatsPublisher) Send(playerID string, ev events.Event) {
	p.publish(p.PlayerSubject(playerID), ev)
}

func (p *NatsPublisher) publish(subject string, ev events.Event) {
	data, err := events.Encode(ev)
	if err != nil {
		p.logger.WithField("subject", subject).Warn(err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"event":   ev.Type,
		}).Warnf("nats publish failed: %v", err)
	}
}
