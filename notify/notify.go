// ABOUTME: Delivery collaborators for triggered alerts
// ABOUTME: Defines the Notifier contract plus function and fan-out adapters
package notify

import (
	"context"

	"github.com/harperreed/bannerbook/models"
)

// Notifier delivers one alert. A nil error means the alert was delivered
// and may be recorded as sent.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n models.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Multi delivers to every notifier in order and stops at the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n models.Notification) error {
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Discard accepts every alert and does nothing with it.
var Discard Notifier = NotifierFunc(func(context.Context, models.Notification) error { return nil })
