package testutils

import "callward/event"

// IncomingSMS builds an incoming SMS event.
func IncomingSMS(phone, text string) *event.PhoneEvent {
	return &event.PhoneEvent{Phone: phone, Incoming: true, Text: &text}
}

// OutgoingSMS builds an outgoing SMS event.
func OutgoingSMS(phone, text string) *event.PhoneEvent {
	return &event.PhoneEvent{Phone: phone, Text: &text}
}

// IncomingCall builds an answered incoming call event.
func IncomingCall(phone string) *event.PhoneEvent {
	return &event.PhoneEvent{Phone: phone, Incoming: true}
}

// OutgoingCall builds an outgoing call event.
func OutgoingCall(phone string) *event.PhoneEvent {
	return &event.PhoneEvent{Phone: phone}
}

// MissedCall builds a missed incoming call event.
func MissedCall(phone string) *event.PhoneEvent {
	return &event.PhoneEvent{Phone: phone, Incoming: true, Missed: true}
}
