package testutils

import (
	"context"
	"sync"

	"callward/notify"
)

// Notification is one recorded notifier call.
type Notification struct {
	Message string
	Target  notify.Target
}

// MockNotifier records every notification it receives.
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []Notification
}

var _ notify.Notifier = (*MockNotifier)(nil)

func NewMockNotifier() *MockNotifier { return &MockNotifier{} }

func (n *MockNotifier) Notify(ctx context.Context, message string, target notify.Target) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notifications = append(n.Notifications, Notification{Message: message, Target: target})
	return nil
}

// Sent is one recorded SMS send.
type Sent struct {
	Phone string
	Text  string
}

// MockSMSSender records every SMS it is asked to send.
type MockSMSSender struct {
	mu          sync.Mutex
	Messages    []Sent
	ErrToReturn error
}

func NewMockSMSSender() *MockSMSSender { return &MockSMSSender{} }

func (s *MockSMSSender) Send(ctx context.Context, phone, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ErrToReturn != nil {
		return s.ErrToReturn
	}
	s.Messages = append(s.Messages, Sent{Phone: phone, Text: text})
	return nil
}

// MockMailSender records outgoing relay mail.
type MockMailSender struct {
	mu          sync.Mutex
	Subjects    []string
	Bodies      []string
	Recipients  []string
	ErrToReturn error
}

func NewMockMailSender() *MockMailSender { return &MockMailSender{} }

func (s *MockMailSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ErrToReturn != nil {
		return s.ErrToReturn
	}
	s.Recipients = append(s.Recipients, recipient)
	s.Subjects = append(s.Subjects, subject)
	s.Bodies = append(s.Bodies, body)
	return nil
}
