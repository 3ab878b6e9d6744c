package event

import "fmt"

// Trigger is a category of phone activity the user has opted to process.
type Trigger string

const (
	TriggerInSMS      Trigger = "in_sms"
	TriggerOutSMS     Trigger = "out_sms"
	TriggerInCall     Trigger = "in_call"
	TriggerOutCall    Trigger = "out_call"
	TriggerMissedCall Trigger = "missed_call"
)

// Triggers lists every valid trigger, in config display order.
var Triggers = []Trigger{TriggerInSMS, TriggerOutSMS, TriggerInCall, TriggerOutCall, TriggerMissedCall}

func (t *Trigger) UnmarshalText(text []byte) error {
	v := Trigger(text)
	switch v {
	case TriggerInSMS, TriggerOutSMS, TriggerInCall, TriggerOutCall, TriggerMissedCall:
		*t = v
		return nil
	default:
		return fmt.Errorf("invalid trigger: %q", string(text))
	}
}

func (t Trigger) String() string { return string(t) }

// PhoneEvent is a single call or SMS as reported by the device bridge.
// Text is nil for a voice call; Missed is only meaningful for calls.
type PhoneEvent struct {
	ID       string  `json:"id,omitempty"`
	Phone    string  `json:"phone"`
	Incoming bool    `json:"incoming"`
	Missed   bool    `json:"missed,omitempty"`
	Text     *string `json:"text,omitempty"`
}

// IsSMS reports whether the event carries a message body.
func (e *PhoneEvent) IsSMS() bool { return e.Text != nil }

// Trigger maps the event's shape to the single trigger kind that covers it.
func (e *PhoneEvent) Trigger() Trigger {
	switch {
	case e.IsSMS() && e.Incoming:
		return TriggerInSMS
	case e.IsSMS():
		return TriggerOutSMS
	case e.Missed:
		return TriggerMissedCall
	case e.Incoming:
		return TriggerInCall
	default:
		return TriggerOutCall
	}
}
