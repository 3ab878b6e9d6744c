package remote

import "strings"

// Keyword vocabulary recognized by the parser. This is the de facto
// protocol surface exposed to users via email replies.
const (
	kwDevice    = "device"
	kwAdd       = "add"
	kwPut       = "put"
	kwRemove    = "remove"
	kwDelete    = "delete"
	kwSend      = "send"
	kwPhone     = "phone"
	kwText      = "text"
	kwSMS       = "sms"
	kwBlacklist = "blacklist"
	kwWhitelist = "whitelist"
)

// listActions resolves (add?, phone?, blacklist?) into a concrete action.
var listActions = map[[3]bool]Action{
	{true, true, true}:    ActionAddPhoneToBlacklist,
	{true, true, false}:   ActionAddPhoneToWhitelist,
	{true, false, true}:   ActionAddTextToBlacklist,
	{true, false, false}:  ActionAddTextToWhitelist,
	{false, true, true}:   ActionRemovePhoneFromBlacklist,
	{false, true, false}:  ActionRemovePhoneFromWhitelist,
	{false, false, true}:  ActionRemoveTextFromBlacklist,
	{false, false, false}: ActionRemoveTextFromWhitelist,
}

// Parse interprets free-form text as a remote-control command. It returns
// nil when the text is not a command at all (no DEVICE keyword). Otherwise
// the result always carries whatever could be extracted: a command envelope
// with a zero Action means "directed at a device but incomplete", which is
// distinct from "not a command".
//
// The grammar is forgiving by design: keywords are matched
// case-insensitively in order of appearance, and arbitrary filler words
// between them are ignored, because the input is human-authored email text.
func Parse(text string) *Command {
	tokens := tokenize(text)

	devIdx := indexOfWord(tokens, 0, kwDevice)
	if devIdx < 0 {
		return nil
	}

	cmd := &Command{Arguments: make(map[string]string)}
	pos := devIdx + 1

	// The quoted string immediately following DEVICE names the target.
	if pos < len(tokens) && tokens[pos].kind == tokenQuoted {
		cmd.Target = tokens[pos].text
		pos++
	}

	verbIdx, verb := indexOfAnyWord(tokens, pos, kwAdd, kwPut, kwRemove, kwDelete, kwSend)
	if verbIdx < 0 {
		return cmd
	}
	pos = verbIdx + 1

	switch verb {
	case kwSend:
		parseSend(cmd, tokens, pos)
	case kwAdd, kwPut:
		parseListMutation(cmd, tokens, pos, true)
	case kwRemove, kwDelete:
		parseListMutation(cmd, tokens, pos, false)
	}
	return cmd
}

// parseSend handles "send sms <text> <phone>". The action resolves only
// when the SMS keyword directly follows the verb; the text and phone
// arguments are each optional.
func parseSend(cmd *Command, tokens []token, pos int) {
	if pos >= len(tokens) || tokens[pos].kind != tokenWord || !strings.EqualFold(tokens[pos].text, kwSMS) {
		return
	}
	cmd.Action = ActionSendSMSToCaller
	pos++

	if i := indexOfQuoted(tokens, pos); i >= 0 {
		cmd.Arguments["text"] = tokens[i].text
		pos = i + 1
	}
	if i := indexOfPhoneArg(tokens, pos); i >= 0 {
		cmd.Arguments["phone"] = tokens[i].text
	}
}

// parseListMutation handles add/put/remove/delete of a phone or text value.
// The argument is populated as soon as it is found; the action resolves
// only when a blacklist/whitelist qualifier follows, so a caller can tell
// "value supplied but destination unspecified" from "nothing supplied".
func parseListMutation(cmd *Command, tokens []token, pos int, add bool) {
	nounIdx, noun := indexOfAnyWord(tokens, pos, kwPhone, kwText)
	if nounIdx < 0 {
		return
	}
	pos = nounIdx + 1

	phone := noun == kwPhone
	if phone {
		if i := indexOfPhoneArg(tokens, pos); i >= 0 {
			cmd.Arguments["value"] = tokens[i].text
			pos = i + 1
		}
	} else {
		if i := indexOfQuoted(tokens, pos); i >= 0 {
			cmd.Arguments["value"] = tokens[i].text
			pos = i + 1
		}
	}

	listIdx, list := indexOfAnyWord(tokens, pos, kwBlacklist, kwWhitelist)
	if listIdx < 0 {
		return
	}
	cmd.Action = listActions[[3]bool{add, phone, list == kwBlacklist}]
}
