// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg  *config.NotificationConfig
	send func(title, message string) error
}

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	n := &Notifier{cfg: cfg}
	n.send = n.deliver
	return n
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}
	return n.send(title, message)
}

func (n *Notifier) deliver(title, message string) error {
	if n.cfg.Sound {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			return err
		}
	}
	return beeep.Notify(title, message, "")
}

// NotifyTimeUp announces that a timebox's countdown reached zero.
func (n *Notifier) NotifyTimeUp(tb domain.Timebox) error {
	title := "⏰ Time's up!"
	message := fmt.Sprintf("%s (%s) is done.", tb.Title, formatMinutes(tb.Duration))
	return n.Notify(title, message)
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

func formatMinutes(d time.Duration) string {
	return fmt.Sprintf("%g min.", d.Minutes())
}
