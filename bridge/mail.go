package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"callward/mailbox"
)

// MailClient drives the mail helper executable. The helper speaks a small
// subcommand protocol: `list` prints unhandled messages as a JSON array,
// `mark-read <id>` and `trash <id>` acknowledge one message, and
// `send <recipient> <subject>` reads the body from stdin.
type MailClient struct {
	path string
}

var _ mailbox.Session = (*MailClient)(nil)

func NewMailClient(path string) *MailClient {
	return &MailClient{path: path}
}

// List fetches the current batch of candidate control messages.
func (c *MailClient) List(ctx context.Context) ([]mailbox.Message, error) {
	out, err := run(ctx, c.path, "", "list")
	if err != nil {
		return nil, err
	}
	var messages []mailbox.Message
	if err := json.Unmarshal(out, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode message list: %w", err)
	}
	return messages, nil
}

// MarkRead marks a message as read in the mail account.
func (c *MailClient) MarkRead(ctx context.Context, id string) error {
	_, err := run(ctx, c.path, "", "mark-read", id)
	return err
}

// Trash moves a message to the trash folder.
func (c *MailClient) Trash(ctx context.Context, id string) error {
	_, err := run(ctx, c.path, "", "trash", id)
	return err
}

// Send mails a message; the body travels on the helper's stdin so that
// multi-line content survives unescaped.
func (c *MailClient) Send(ctx context.Context, recipient, subject, body string) error {
	_, err := run(ctx, c.path, body, "send", recipient, subject)
	return err
}
