package filter

import (
	"log/slog"
	"strings"

	"callward/event"
)

// Classification is a bitmask explaining why an event was or wasn't
// processed. Zero means accepted; bypass flags are independent and can
// combine, so history can show every reason an event was suppressed.
type Classification uint8

const (
	Accepted Classification = 0

	BypassTriggerOff Classification = 1 << iota
	BypassNumberBlacklisted
	BypassTextBlacklisted
)

// Accepted reports whether no bypass flag is set.
func (c Classification) Accepted() bool { return c == Accepted }

func (c Classification) Has(flag Classification) bool { return c&flag != 0 }

func (c Classification) String() string {
	if c.Accepted() {
		return "accepted"
	}
	var reasons []string
	if c.Has(BypassTriggerOff) {
		reasons = append(reasons, "trigger_off")
	}
	if c.Has(BypassNumberBlacklisted) {
		reasons = append(reasons, "number_blacklisted")
	}
	if c.Has(BypassTextBlacklisted) {
		reasons = append(reasons, "text_blacklisted")
	}
	return strings.Join(reasons, ",")
}

// RuleSet is a read-only snapshot of the user's triggers and pattern lists.
// Text list entries are in stored (marker-encoded) form.
type RuleSet struct {
	Triggers       map[event.Trigger]struct{}
	PhoneBlacklist []string
	PhoneWhitelist []string
	TextBlacklist  []string
	TextWhitelist  []string
}

// Test classifies an event against the rule set. The three checks are
// independent: an event can fail the trigger check and a blacklist check at
// the same time, and the result preserves both flags.
func Test(e *event.PhoneEvent, rules *RuleSet) Classification {
	result := Accepted

	// An empty trigger set accepts nothing. Fail-safe default.
	if _, ok := rules.Triggers[e.Trigger()]; !ok {
		result |= BypassTriggerOff
	}

	// Whitelist precedence: a whitelisted value is never tested against the
	// blacklist.
	phone := NormalizePhone(e.Phone)
	if !phoneMatchesAny(rules.PhoneWhitelist, phone) && phoneMatchesAny(rules.PhoneBlacklist, phone) {
		result |= BypassNumberBlacklisted
	}

	if e.IsSMS() {
		if !textMatchesAny(rules.TextWhitelist, *e.Text) && textMatchesAny(rules.TextBlacklist, *e.Text) {
			result |= BypassTextBlacklisted
		}
	}

	if !result.Accepted() {
		slog.Debug("Event bypassed", "phone", e.Phone, "trigger", e.Trigger(), "reasons", result.String())
	}
	return result
}
