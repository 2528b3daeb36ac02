package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznetsova/dobrobot/internal/dialog"
	"github.com/mkuznetsova/dobrobot/internal/gateway"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

type fakeGateway struct {
	updates chan gateway.Update

	mu   sync.Mutex
	sent []gateway.Message
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{updates: make(chan gateway.Update)}
}

func (g *fakeGateway) Send(_ context.Context, msg gateway.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	return nil
}

func (g *fakeGateway) Updates(ctx context.Context) <-chan gateway.Update {
	out := make(chan gateway.Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-g.updates:
				if !ok {
					return
				}
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (g *fakeGateway) sentMessages() []gateway.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gateway.Message(nil), g.sent...)
}

// echoDialog replies with the input text and counts the step number in the
// session, exposing ordering per user.
type echoDialog struct {
	delay time.Duration
	err   error
}

func (d *echoDialog) Handle(_ context.Context, s *session.Session, in dialog.Input) (*dialog.Result, error) {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if d.err != nil {
		return nil, d.err
	}
	step := len(s.GetStringList("steps")) + 1
	s.Toggle("steps", fmt.Sprintf("step-%d", step))
	return &dialog.Result{Messages: []dialog.Outbound{
		{Text: fmt.Sprintf("user=%d step=%d text=%s", s.UserID, step, in.Text)},
	}}, nil
}

func runBot(t *testing.T, gw *fakeGateway, d Dialog) (store session.Store, stop func()) {
	t.Helper()
	store = session.NewMemoryStore()
	b := New(gw, store, d, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	return store, func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("bot did not shut down")
		}
	}
}

func TestBot_ProcessesUpdateAndPersistsSession(t *testing.T) {
	gw := newFakeGateway()
	store, stop := runBot(t, gw, &echoDialog{})
	defer stop()

	gw.updates <- gateway.Update{ID: 1, UserID: 7, ChatID: 7, Text: "привет"}

	require.Eventually(t, func() bool { return len(gw.sentMessages()) == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, "user=7 step=1 text=привет", gw.sentMessages()[0].Text)
	assert.Equal(t, int64(7), gw.sentMessages()[0].ChatID)

	s, err := store.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"step-1"}, s.GetStringList("steps"))
}

func TestBot_SameUserUpdatesStayOrdered(t *testing.T) {
	gw := newFakeGateway()
	_, stop := runBot(t, gw, &echoDialog{delay: 5 * time.Millisecond})
	defer stop()

	for i := 1; i <= 5; i++ {
		gw.updates <- gateway.Update{ID: int64(i), UserID: 7, ChatID: 7, Text: fmt.Sprintf("msg-%d", i)}
	}

	require.Eventually(t, func() bool { return len(gw.sentMessages()) == 5 },
		2*time.Second, time.Millisecond)

	for i, msg := range gw.sentMessages() {
		assert.Equal(t, fmt.Sprintf("user=7 step=%d text=msg-%d", i+1, i+1), msg.Text)
	}
}

func TestBot_DifferentUsersRunConcurrently(t *testing.T) {
	gw := newFakeGateway()
	_, stop := runBot(t, gw, &echoDialog{delay: 50 * time.Millisecond})
	defer stop()

	start := time.Now()
	for user := int64(1); user <= 4; user++ {
		gw.updates <- gateway.Update{ID: user, UserID: user, ChatID: user, Text: "go"}
	}

	require.Eventually(t, func() bool { return len(gw.sentMessages()) == 4 },
		2*time.Second, time.Millisecond)

	// four sequential 50ms steps would take at least 200ms
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestBot_DialogErrorSendsApology(t *testing.T) {
	gw := newFakeGateway()
	_, stop := runBot(t, gw, &echoDialog{err: errors.New("boom")})
	defer stop()

	gw.updates <- gateway.Update{ID: 1, UserID: 7, ChatID: 7, Text: "привет"}

	require.Eventually(t, func() bool { return len(gw.sentMessages()) == 1 },
		time.Second, time.Millisecond)
	assert.Equal(t, errorReply, gw.sentMessages()[0].Text)
}
