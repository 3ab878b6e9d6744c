package event

import (
	"encoding/json"
	"fmt"
)

// Payload is one bridge-reported occurrence. The concrete type is selected
// by the "kind" discriminant on the wire; a missing kind means a phone
// event, the common case.
type Payload interface {
	Kind() string
}

const (
	KindPhoneEvent  = "phone_event"
	KindBatteryInfo = "battery_info"
)

func (e *PhoneEvent) Kind() string { return KindPhoneEvent }

// BatteryInfo is a device battery report relayed alongside phone events.
type BatteryInfo struct {
	ID     string `json:"id,omitempty"`
	Level  int    `json:"level"`
	Status string `json:"status,omitempty"`
}

func (b *BatteryInfo) Kind() string { return KindBatteryInfo }

// decoders maps a kind discriminant to its payload decoder. New payload
// kinds register here instead of growing type switches in the consumers.
var decoders = map[string]func([]byte) (Payload, error){
	KindPhoneEvent: func(data []byte) (Payload, error) {
		var e PhoneEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	},
	KindBatteryInfo: func(data []byte) (Payload, error) {
		var b BatteryInfo
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return &b, nil
	},
}

// DecodePayload decodes one bridge input line into its typed payload.
func DecodePayload(line []byte) (Payload, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, err
	}
	kind := head.Kind
	if kind == "" {
		kind = KindPhoneEvent
	}
	decode, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown payload kind %q", kind)
	}
	return decode(line)
}
