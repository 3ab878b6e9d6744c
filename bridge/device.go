package bridge

import (
	"context"

	"callward/notify"
	"callward/remote"
)

// SMSClient drives the SMS helper executable (`send-sms <phone>` with the
// message text on stdin).
type SMSClient struct {
	path string
}

var _ remote.SMSSender = (*SMSClient)(nil)

func NewSMSClient(path string) *SMSClient {
	return &SMSClient{path: path}
}

func (c *SMSClient) Send(ctx context.Context, phone, text string) error {
	_, err := run(ctx, c.path, text, "send-sms", phone)
	return err
}

// NotifySink drives the notification helper executable
// (`notify <target>` with the message on stdin).
type NotifySink struct {
	path string
}

var _ notify.Sink = (*NotifySink)(nil)

func NewNotifySink(path string) *NotifySink {
	return &NotifySink{path: path}
}

func (c *NotifySink) Show(ctx context.Context, message string, target notify.Target) error {
	_, err := run(ctx, c.path, message, "notify", target.String())
	return err
}
