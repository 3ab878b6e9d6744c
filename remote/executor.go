package remote

import (
	"context"
	"fmt"
	"log/slog"

	"callward/notify"
	"callward/store"
)

// SMSSender is the device-side collaborator that sends a text message.
type SMSSender interface {
	Send(ctx context.Context, phone, text string) error
}

// listOp describes the effect of one list-mutation action.
type listOp struct {
	list   store.List
	add    bool
	format string
	target notify.Target
}

var listOps = map[Action]listOp{
	ActionAddPhoneToBlacklist:      {store.PhoneBlacklist, true, "Phone %q added to blacklist", notify.TargetPhoneBlacklist},
	ActionRemovePhoneFromBlacklist: {store.PhoneBlacklist, false, "Phone %q removed from blacklist", notify.TargetPhoneBlacklist},
	ActionAddPhoneToWhitelist:      {store.PhoneWhitelist, true, "Phone %q added to whitelist", notify.TargetPhoneWhitelist},
	ActionRemovePhoneFromWhitelist: {store.PhoneWhitelist, false, "Phone %q removed from whitelist", notify.TargetPhoneWhitelist},
	ActionAddTextToBlacklist:       {store.TextBlacklist, true, "Text %q added to blacklist", notify.TargetTextBlacklist},
	ActionRemoveTextFromBlacklist:  {store.TextBlacklist, false, "Text %q removed from blacklist", notify.TargetTextBlacklist},
	ActionAddTextToWhitelist:       {store.TextWhitelist, true, "Text %q added to whitelist", notify.TargetTextWhitelist},
	ActionRemoveTextFromWhitelist:  {store.TextWhitelist, false, "Text %q removed from whitelist", notify.TargetTextWhitelist},
}

// Executor applies parsed commands to the pattern-list store. Mutations are
// idempotent set operations; the notifier fires only on a genuine change.
// SMS may be nil when sending is not permitted. OnChange, when set, runs
// after every successful mutation (used to drop the rules snapshot cache).
type Executor struct {
	Store    store.Store
	Notifier notify.Notifier
	SMS      SMSSender
	OnChange func()
}

// Execute dispatches on the command's action. A zero action is a silent
// no-op: the parser already represents an incomplete command as a
// first-class result, and a malformed email must never break the
// processing loop. Only collaborator failures (store, notifier) propagate.
func (x *Executor) Execute(ctx context.Context, cmd *Command) error {
	if cmd == nil || cmd.Action == "" {
		return nil
	}
	if op, ok := listOps[cmd.Action]; ok {
		return x.mutate(ctx, op, cmd.Argument())
	}
	if cmd.Action == ActionSendSMSToCaller {
		return x.sendSMS(ctx, cmd.Arguments["phone"], cmd.Arguments["text"])
	}
	slog.Warn("Ignoring unknown remote action", "action", cmd.Action)
	return nil
}

func (x *Executor) mutate(ctx context.Context, op listOp, value string) error {
	if value == "" {
		slog.Debug("Remote command has no value, nothing to do", "list", op.list)
		return nil
	}

	var changed bool
	var err error
	if op.add {
		changed, err = x.Store.Put(ctx, op.list, value)
	} else {
		changed, err = x.Store.Delete(ctx, op.list, value)
	}
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", op.list, err)
	}

	if !changed {
		if op.add {
			slog.Debug("Value is already in list", "list", op.list, "value", value)
		} else {
			slog.Debug("Value is not in list", "list", op.list, "value", value)
		}
		return nil
	}

	slog.Info("Remote command applied", "list", op.list, "value", value, "added", op.add)
	if x.OnChange != nil {
		x.OnChange()
	}
	return x.Notifier.Notify(ctx, fmt.Sprintf(op.format, value), op.target)
}

func (x *Executor) sendSMS(ctx context.Context, phone, text string) error {
	if x.SMS == nil {
		slog.Warn("SMS sending is not permitted, skipping remote send", "phone", phone)
		return nil
	}
	if phone == "" {
		slog.Debug("Remote send has no phone, nothing to do")
		return nil
	}
	if err := x.SMS.Send(ctx, phone, text); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	slog.Info("SMS sent by remote command", "phone", phone)
	return x.Notifier.Notify(ctx, fmt.Sprintf("SMS sent to %s", phone), notify.TargetMain)
}
