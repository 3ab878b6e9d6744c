// Package relay turns accepted phone events into outgoing mail.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"callward/event"

	"golang.org/x/time/rate"
)

// Sender is the outgoing-mail collaborator.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Relay formats accepted events and hands them to the mail sender. A token
// bucket caps the outgoing rate so an SMS flood cannot flood the mailbox.
type Relay struct {
	sender    Sender
	recipient string
	device    string
	limiter   *rate.Limiter
}

// NewRelay creates a relay sending at most ratePerMinute messages per
// minute with the given burst. A non-positive rate disables limiting.
func NewRelay(sender Sender, recipient, device string, ratePerMinute float64, burst int) *Relay {
	var limiter *rate.Limiter
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerMinute/60), burst)
	}
	return &Relay{
		sender:    sender,
		recipient: recipient,
		device:    device,
		limiter:   limiter,
	}
}

// Dispatch sends one accepted event. A rate-limited or failed dispatch is
// reported to the caller but must never stop the event loop.
func (r *Relay) Dispatch(ctx context.Context, e *event.PhoneEvent) error {
	if r.limiter != nil && !r.limiter.Allow() {
		return fmt.Errorf("relay rate limit exceeded, dropping event from %s", e.Phone)
	}
	subject, body := Format(e, r.device)
	if err := r.sender.Send(ctx, r.recipient, subject, body); err != nil {
		return fmt.Errorf("failed to relay event: %w", err)
	}
	slog.Info("Event relayed", "phone", e.Phone, "trigger", e.Trigger())
	return nil
}

// DispatchBattery sends one battery report. Battery reports share the
// phone-event token bucket so a flapping charger cannot flood the mailbox
// either.
func (r *Relay) DispatchBattery(ctx context.Context, b *event.BatteryInfo) error {
	if r.limiter != nil && !r.limiter.Allow() {
		return fmt.Errorf("relay rate limit exceeded, dropping battery report")
	}
	subject, body := FormatBattery(b, r.device)
	if err := r.sender.Send(ctx, r.recipient, subject, body); err != nil {
		return fmt.Errorf("failed to relay battery report: %w", err)
	}
	slog.Info("Battery report relayed", "level", b.Level, "status", b.Status)
	return nil
}

// Format renders the human-readable subject and body for an event.
func Format(e *event.PhoneEvent, device string) (subject, body string) {
	var kind string
	switch e.Trigger() {
	case event.TriggerInSMS:
		kind = "Incoming SMS"
	case event.TriggerOutSMS:
		kind = "Outgoing SMS"
	case event.TriggerInCall:
		kind = "Incoming call"
	case event.TriggerOutCall:
		kind = "Outgoing call"
	case event.TriggerMissedCall:
		kind = "Missed call"
	}
	direction := "from"
	if !e.Incoming && !e.Missed {
		direction = "to"
	}
	subject = fmt.Sprintf("[%s] %s %s %s", device, kind, direction, e.Phone)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s on device %q.\n", kind, direction, e.Phone, device)
	if e.IsSMS() {
		fmt.Fprintf(&b, "\n%s\n", *e.Text)
	}
	return subject, b.String()
}

// FormatBattery renders the subject and body for a battery report.
func FormatBattery(b *event.BatteryInfo, device string) (subject, body string) {
	subject = fmt.Sprintf("[%s] Battery at %d%%", device, b.Level)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Battery level on device %q is %d%%.\n", device, b.Level)
	if b.Status != "" {
		fmt.Fprintf(&sb, "Status: %s.\n", b.Status)
	}
	return subject, sb.String()
}
