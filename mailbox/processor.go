package mailbox

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"callward/metrics"
	"callward/remote"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Message is one candidate control message fetched from the mail account.
type Message struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Session is the mail-account collaborator. Listing returns unhandled
// candidate messages; MarkRead and Trash acknowledge a fully executed one.
type Session interface {
	List(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, id string) error
	Trash(ctx context.Context, id string) error
}

const (
	handledCacheSize = 4096
	handledCacheTTL  = time.Hour
)

// Processor polls the control mailbox and runs each message through the
// sender policy, the command parser, and the executor. Only a fully
// executed message is acknowledged (marked read and trashed); anything
// rejected earlier stays in the mailbox untouched, so a failure before
// full handling is retried naturally on the next poll.
type Processor struct {
	session  Session
	executor *remote.Executor
	device   string
	senders  map[string]struct{}

	// handled remembers executed message IDs so a failed acknowledgement
	// cannot re-run the command on the next poll.
	handled *lru.LRU[string, struct{}]
}

func NewProcessor(session Session, executor *remote.Executor, device string, allowedSenders []string) *Processor {
	senders := make(map[string]struct{}, len(allowedSenders))
	for _, s := range allowedSenders {
		senders[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &Processor{
		session:  session,
		executor: executor,
		device:   device,
		senders:  senders,
		handled:  lru.NewLRU[string, struct{}](handledCacheSize, nil, handledCacheTTL),
	}
}

// Poll fetches and processes the current batch of control messages. The
// batch is handled strictly sequentially; a listing failure aborts the
// poll, while per-message failures are logged and leave that message for
// the next round.
func (p *Processor) Poll(ctx context.Context) error {
	messages, err := p.session.List(ctx)
	if err != nil {
		return err
	}
	for i := range messages {
		p.process(ctx, &messages[i])
	}
	return nil
}

func (p *Processor) process(ctx context.Context, msg *Message) {
	log := slog.With("message_id", msg.ID, "from", msg.From)

	if !p.allowedSender(msg.From) {
		log.Debug("Ignoring control message from unknown sender")
		return
	}

	cmd := remote.Parse(msg.Body)
	if cmd == nil {
		log.Debug("Message is not a command")
		return
	}
	if cmd.Target != "" && !strings.EqualFold(cmd.Target, p.device) {
		log.Debug("Command is addressed to another device", "target", cmd.Target)
		return
	}

	if _, done := p.handled.Get(msg.ID); !done {
		if err := p.executor.Execute(ctx, cmd); err != nil {
			log.Error("Failed to execute remote command, leaving message for retry", "error", err)
			return
		}
		p.handled.Add(msg.ID, struct{}{})
		if cmd.Action != "" {
			metrics.CommandsTotal.WithLabelValues(cmd.Action.String()).Inc()
		}
	}

	// Acknowledge: mark read, then trash. Failures keep the message listed,
	// but the handled cache stops the command from running twice.
	if err := p.session.MarkRead(ctx, msg.ID); err != nil {
		log.Error("Failed to mark control message as read", "error", err)
		return
	}
	if err := p.session.Trash(ctx, msg.ID); err != nil {
		log.Error("Failed to trash control message", "error", err)
		return
	}
	log.Info("Remote command executed", "action", cmd.Action)
}

// allowedSender matches the address part of a From header against the
// configured sender allowlist. An empty allowlist rejects everything.
func (p *Processor) allowedSender(from string) bool {
	addr := strings.ToLower(strings.TrimSpace(from))
	if i := strings.LastIndexByte(addr, '<'); i >= 0 {
		addr = strings.TrimSuffix(addr[i+1:], ">")
	}
	_, ok := p.senders[addr]
	return ok
}
