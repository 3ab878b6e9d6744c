package filter

import (
	"testing"

	"callward/event"

	"github.com/stretchr/testify/require"
)

func triggers(ts ...event.Trigger) map[event.Trigger]struct{} {
	set := make(map[event.Trigger]struct{}, len(ts))
	for _, t := range ts {
		set[t] = struct{}{}
	}
	return set
}

func sms(phone, text string, incoming bool) *event.PhoneEvent {
	return &event.PhoneEvent{Phone: phone, Incoming: incoming, Text: &text}
}

func TestEventTriggerMapping(t *testing.T) {
	text := "hi"
	tests := []struct {
		name string
		ev   *event.PhoneEvent
		want event.Trigger
	}{
		{"Incoming SMS", &event.PhoneEvent{Incoming: true, Text: &text}, event.TriggerInSMS},
		{"Outgoing SMS", &event.PhoneEvent{Text: &text}, event.TriggerOutSMS},
		{"Incoming call", &event.PhoneEvent{Incoming: true}, event.TriggerInCall},
		{"Outgoing call", &event.PhoneEvent{}, event.TriggerOutCall},
		{"Missed call", &event.PhoneEvent{Incoming: true, Missed: true}, event.TriggerMissedCall},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.ev.Trigger())
		})
	}
}

func TestFilterTest(t *testing.T) {
	tests := []struct {
		name  string
		ev    *event.PhoneEvent
		rules RuleSet
		want  Classification
	}{
		{
			name:  "Accepted incoming SMS",
			ev:    sms("+15555215556", "Text message", true),
			rules: RuleSet{Triggers: triggers(event.TriggerInSMS)},
			want:  Accepted,
		},
		{
			name:  "Empty trigger set accepts nothing",
			ev:    sms("+15555215556", "Text message", true),
			rules: RuleSet{},
			want:  BypassTriggerOff,
		},
		{
			name:  "Trigger not configured",
			ev:    sms("+15555215556", "Text message", false),
			rules: RuleSet{Triggers: triggers(event.TriggerInSMS)},
			want:  BypassTriggerOff,
		},
		{
			name: "Blacklisted number",
			ev:   sms("+15555215556", "hi", true),
			rules: RuleSet{
				Triggers:       triggers(event.TriggerInSMS),
				PhoneBlacklist: []string{"+15555215556"},
			},
			want: BypassNumberBlacklisted,
		},
		{
			name: "Blacklisted number in different formatting",
			ev:   sms("+1 (555) 521-5556", "hi", true),
			rules: RuleSet{
				Triggers:       triggers(event.TriggerInSMS),
				PhoneBlacklist: []string{"+15555215556"},
			},
			want: BypassNumberBlacklisted,
		},
		{
			name: "Whitelist wins over blacklist for phone",
			ev:   sms("+15555215556", "hi", true),
			rules: RuleSet{
				Triggers:       triggers(event.TriggerInSMS),
				PhoneBlacklist: []string{"+15555215556"},
				PhoneWhitelist: []string{"+15555215556"},
			},
			want: Accepted,
		},
		{
			name: "Wildcard blacklist entry",
			ev:   sms("+15555215556", "hi", true),
			rules: RuleSet{
				Triggers:       triggers(event.TriggerInSMS),
				PhoneBlacklist: []string{"+1555*"},
			},
			want: BypassNumberBlacklisted,
		},
		{
			name: "Blacklisted text",
			ev:   sms("+15555215556", "Buy cheap viagra now", true),
			rules: RuleSet{
				Triggers:      triggers(event.TriggerInSMS),
				TextBlacklist: []string{"viagra"},
			},
			want: BypassTextBlacklisted,
		},
		{
			name: "Whitelist wins over blacklist for text",
			ev:   sms("+15555215556", "Buy cheap viagra now", true),
			rules: RuleSet{
				Triggers:      triggers(event.TriggerInSMS),
				TextBlacklist: []string{"viagra"},
				TextWhitelist: []string{"viagra"},
			},
			want: Accepted,
		},
		{
			name: "Regexp text pattern",
			ev:   sms("+15555215556", "your code is 123456", true),
			rules: RuleSet{
				Triggers:      triggers(event.TriggerInSMS),
				TextBlacklist: []string{"REGEX:.*[0-9]{6}.*"},
			},
			want: BypassTextBlacklisted,
		},
		{
			name: "Invalid regexp is skipped, evaluation continues",
			ev:   sms("+15555215556", "spam text", true),
			rules: RuleSet{
				Triggers:      triggers(event.TriggerInSMS),
				TextBlacklist: []string{"REGEX:(unclosed", "spam"},
			},
			want: BypassTextBlacklisted,
		},
		{
			name: "Text blacklist never suppresses a voice call",
			ev:   &event.PhoneEvent{Phone: "+15555215556", Incoming: true},
			rules: RuleSet{
				Triggers:      triggers(event.TriggerInCall),
				TextBlacklist: []string{"REGEX:.*"},
			},
			want: Accepted,
		},
		{
			name: "Bypass flags combine",
			ev:   sms("+15555215556", "Buy cheap viagra now", true),
			rules: RuleSet{
				PhoneBlacklist: []string{"+15555215556"},
				TextBlacklist:  []string{"viagra"},
			},
			want: BypassTriggerOff | BypassNumberBlacklisted | BypassTextBlacklisted,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Test(tc.ev, &tc.rules)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassificationString(t *testing.T) {
	require.Equal(t, "accepted", Accepted.String())
	require.Equal(t, "trigger_off", BypassTriggerOff.String())
	require.Equal(t,
		"trigger_off,number_blacklisted,text_blacklisted",
		(BypassTriggerOff | BypassNumberBlacklisted | BypassTextBlacklisted).String())
}
