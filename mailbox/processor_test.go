package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"

	"callward/remote"
	"callward/store"
	"callward/testutils"

	"github.com/stretchr/testify/require"
)

// mockSession is a scripted control mailbox.
type mockSession struct {
	mu          sync.Mutex
	messages    []Message
	markedRead  []string
	trashed     []string
	listErr     error
	markReadErr error
}

func (s *mockSession) List(ctx context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *mockSession) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markReadErr != nil {
		return s.markReadErr
	}
	s.markedRead = append(s.markedRead, id)
	return nil
}

func (s *mockSession) Trash(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trashed = append(s.trashed, id)
	return nil
}

func newTestProcessor(session Session, db store.Store) *Processor {
	executor := &remote.Executor{Store: db, Notifier: testutils.NewMockNotifier()}
	return NewProcessor(session, executor, "Phone", []string{"boss@example.com"})
}

func TestPollExecutesAndAcknowledges(t *testing.T) {
	ctx := context.Background()
	session := &mockSession{messages: []Message{{
		ID:   "m1",
		From: `Boss <boss@example.com>`,
		Body: `To device "Phone": add phone +7905-09441 to blacklist`,
	}}}
	db := testutils.NewInMemoryStore()
	p := newTestProcessor(session, db)

	require.NoError(t, p.Poll(ctx))

	blacklist, err := db.Entries(ctx, store.PhoneBlacklist)
	require.NoError(t, err)
	require.Equal(t, []string{"+7905-09441"}, blacklist)
	require.Equal(t, []string{"m1"}, session.markedRead)
	require.Equal(t, []string{"m1"}, session.trashed)
}

func TestPollLeavesRejectedMessagesUntouched(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "Unknown sender",
			msg: Message{ID: "m1", From: "stranger@example.com",
				Body: `To device "Phone": add phone 100 to blacklist`},
		},
		{
			name: "Not a command",
			msg:  Message{ID: "m2", From: "boss@example.com", Body: "Lunch today?"},
		},
		{
			name: "Addressed to another device",
			msg: Message{ID: "m3", From: "boss@example.com",
				Body: `To device "Tablet": add phone 100 to blacklist`},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := &mockSession{messages: []Message{tc.msg}}
			db := testutils.NewInMemoryStore()
			p := newTestProcessor(session, db)

			require.NoError(t, p.Poll(ctx))

			blacklist, err := db.Entries(ctx, store.PhoneBlacklist)
			require.NoError(t, err)
			require.Empty(t, blacklist, "no mutation expected")
			require.Empty(t, session.markedRead, "rejected message must stay unread")
			require.Empty(t, session.trashed)
		})
	}
}

func TestPollEmptyTargetMatchesAnyDevice(t *testing.T) {
	ctx := context.Background()
	session := &mockSession{messages: []Message{{
		ID:   "m1",
		From: "boss@example.com",
		Body: `device: add phone 100 to blacklist`,
	}}}
	db := testutils.NewInMemoryStore()
	p := newTestProcessor(session, db)

	require.NoError(t, p.Poll(ctx))

	blacklist, err := db.Entries(ctx, store.PhoneBlacklist)
	require.NoError(t, err)
	require.Equal(t, []string{"100"}, blacklist)
}

func TestPollListErrorPropagates(t *testing.T) {
	session := &mockSession{listErr: errors.New("imap down")}
	p := newTestProcessor(session, testutils.NewInMemoryStore())
	require.Error(t, p.Poll(context.Background()))
}

// When acknowledgement fails, the command must not run again on the next
// poll even though the message is still listed.
func TestPollDoesNotReExecuteAfterFailedAck(t *testing.T) {
	ctx := context.Background()
	session := &mockSession{
		messages: []Message{{
			ID:   "m1",
			From: "boss@example.com",
			Body: `To device "Phone": add phone 100 to blacklist`,
		}},
		markReadErr: errors.New("network error"),
	}
	db := testutils.NewInMemoryStore()
	p := newTestProcessor(session, db)

	require.NoError(t, p.Poll(ctx))
	putsAfterFirst := db.PutCalls()

	// The message is re-listed; the executor must not run again.
	require.NoError(t, p.Poll(ctx))
	require.Equal(t, putsAfterFirst, db.PutCalls())

	// Acknowledgement succeeds once the network is back.
	session.mu.Lock()
	session.markReadErr = nil
	session.mu.Unlock()
	require.NoError(t, p.Poll(ctx))
	require.Equal(t, []string{"m1"}, session.markedRead)
	require.Equal(t, []string{"m1"}, session.trashed)

	blacklist, err := db.Entries(ctx, store.PhoneBlacklist)
	require.NoError(t, err)
	require.Equal(t, []string{"100"}, blacklist)
}

func TestAllowedSenderAddressForms(t *testing.T) {
	p := NewProcessor(&mockSession{}, nil, "Phone", []string{"Boss@Example.com"})

	require.True(t, p.allowedSender("boss@example.com"))
	require.True(t, p.allowedSender("The Boss <boss@example.com>"))
	require.True(t, p.allowedSender("  BOSS@EXAMPLE.COM  "))
	require.False(t, p.allowedSender("other@example.com"))
	require.False(t, p.allowedSender(""))
}
