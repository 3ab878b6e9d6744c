package notify

import (
	"context"
	"log/slog"
)

// Target identifies the app screen a notification should deep-link to.
type Target string

const (
	TargetMain           Target = "main"
	TargetPhoneBlacklist Target = "phone_blacklist"
	TargetPhoneWhitelist Target = "phone_whitelist"
	TargetTextBlacklist  Target = "text_blacklist"
	TargetTextWhitelist  Target = "text_whitelist"
)

func (t Target) String() string { return string(t) }

// Notifier surfaces a human-readable message to the user. Implementations
// decide themselves whether the notification is actually shown; callers
// always attempt to notify on change and never gate the attempt.
type Notifier interface {
	Notify(ctx context.Context, message string, target Target) error
}

// Sink is the device-side collaborator that displays a notification.
type Sink interface {
	Show(ctx context.Context, message string, target Target) error
}

// GatedNotifier applies the "remote control notifications" user preference
// in front of a Sink. Gating lives here so that mutation logic and
// notification policy stay orthogonal.
type GatedNotifier struct {
	sink    Sink
	enabled bool
}

func NewGatedNotifier(sink Sink, enabled bool) *GatedNotifier {
	return &GatedNotifier{sink: sink, enabled: enabled}
}

func (n *GatedNotifier) Notify(ctx context.Context, message string, target Target) error {
	if !n.enabled {
		slog.Debug("Notification suppressed by user preference", "message", message, "target", target)
		return nil
	}
	return n.sink.Show(ctx, message, target)
}
