package remote

// Action is the typed mutation a remote command requests.
type Action string

const (
	ActionAddPhoneToBlacklist      Action = "add_phone_to_blacklist"
	ActionRemovePhoneFromBlacklist Action = "remove_phone_from_blacklist"
	ActionAddPhoneToWhitelist      Action = "add_phone_to_whitelist"
	ActionRemovePhoneFromWhitelist Action = "remove_phone_from_whitelist"
	ActionAddTextToBlacklist       Action = "add_text_to_blacklist"
	ActionRemoveTextFromBlacklist  Action = "remove_text_from_blacklist"
	ActionAddTextToWhitelist       Action = "add_text_to_whitelist"
	ActionRemoveTextFromWhitelist  Action = "remove_text_from_whitelist"
	ActionSendSMSToCaller          Action = "send_sms_to_caller"
)

func (a Action) String() string { return string(a) }

// Command is one parsed remote-control instruction. A zero Target means the
// command is not addressed to a particular device; a zero Action means the
// envelope was recognized but no complete action could be resolved, which
// the caller may log but need not treat as fatal.
type Command struct {
	Target    string
	Action    Action
	Arguments map[string]string
}

// Argument aliases Arguments["value"], the single value of list mutations.
func (c *Command) Argument() string { return c.Arguments["value"] }
