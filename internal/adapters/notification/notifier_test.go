package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xvierd/timebox-cli/internal/config"
	"github.com/xvierd/timebox-cli/internal/domain"
)

type sent struct {
	title, message string
}

func recordingNotifier(cfg *config.NotificationConfig) (*Notifier, *[]sent) {
	var out []sent
	n := New(cfg)
	n.send = func(title, message string) error {
		out = append(out, sent{title, message})
		return nil
	}
	return n, &out
}

func TestNotifier_NotifyTimeUp(t *testing.T) {
	n, out := recordingNotifier(&config.NotificationConfig{Enabled: true})

	err := n.NotifyTimeUp(domain.Timebox{Title: "Uczę się BEM", Duration: 5 * time.Minute})
	assert.NoError(t, err)
	if assert.Len(t, *out, 1) {
		assert.Equal(t, "⏰ Time's up!", (*out)[0].title)
		assert.Equal(t, "Uczę się BEM (5 min.) is done.", (*out)[0].message)
	}
}

func TestNotifier_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.NotificationConfig
	}{
		{"nil config", nil},
		{"disabled", &config.NotificationConfig{Enabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, out := recordingNotifier(tt.cfg)
			assert.False(t, n.IsEnabled())
			assert.NoError(t, n.Notify("t", "m"))
			assert.Empty(t, *out)
		})
	}
}
