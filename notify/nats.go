// ABOUTME: Publishes alerts as JSON messages on a NATS subject
// ABOUTME: Connect builds a reconnecting client for long-running alert daemons
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/bannerbook/models"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// DefaultSubject prefixes every published alert; the alert type is appended.
const DefaultSubject = "bannerbook.alerts"

const flushTimeout = 5 * time.Second

// Publisher is the part of *nats.Conn the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSNotifier publishes each alert to "<subject>.<alertType>".
type NATSNotifier struct {
	pub     Publisher
	subject string
	logger  *logrus.Entry
}

func NewNATSNotifier(pub Publisher, subject string, logger *logrus.Entry) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &NATSNotifier{pub: pub, subject: subject, logger: logger}
}

func (n *NATSNotifier) Notify(ctx context.Context, alert models.Notification) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	subject := n.subject + "." + alert.AlertType
	if err := n.pub.Publish(subject, data); err != nil {
		n.logger.WithFields(logrus.Fields{
			"alert_id": alert.AlertID,
			"subject":  subject,
		}).WithError(err).Error("Failed to publish alert")
		return fmt.Errorf("failed to publish alert: %w", err)
	}
	// FlushWithContext rejects contexts without a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := n.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush alert: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"alert_id": alert.AlertID,
		"subject":  subject,
	}).Debug("Published alert")
	return nil
}

// Connect dials NATS with reconnect handling and connection lifecycle logging.
func Connect(url string, logger *logrus.Entry) (*nats.Conn, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	opts := []nats.Option{
		nats.Name("bannerbook"),
		nats.Timeout(10 * time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}
