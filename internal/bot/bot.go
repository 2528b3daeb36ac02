package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mkuznetsova/dobrobot/internal/dialog"
	"github.com/mkuznetsova/dobrobot/internal/gateway"
	"github.com/mkuznetsova/dobrobot/internal/session"
)

// userQueueSize bounds the per-user backlog. A user flooding updates has
// their excess dropped instead of stalling everyone else.
const userQueueSize = 16

const errorReply = "⚠️ Что-то пошло не так. Попробуйте ещё раз."

// Gateway is the messaging transport as seen by the bot loop.
type Gateway interface {
	Send(ctx context.Context, msg gateway.Message) error
	Updates(ctx context.Context) <-chan gateway.Update
}

// Dialog advances one conversation step.
type Dialog interface {
	Handle(ctx context.Context, s *session.Session, in dialog.Input) (*dialog.Result, error)
}

// Bot consumes the update stream and drives dialogs. Updates from one user
// are processed strictly in order; different users run concurrently.
type Bot struct {
	gw       Gateway
	sessions session.Store
	dialogs  Dialog
	logger   *slog.Logger

	mu      sync.Mutex
	workers map[int64]chan gateway.Update
	wg      sync.WaitGroup
}

// New assembles the bot loop.
func New(gw Gateway, sessions session.Store, dialogs Dialog, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		gw:       gw,
		sessions: sessions,
		dialogs:  dialogs,
		logger:   logger,
		workers:  make(map[int64]chan gateway.Update),
	}
}

// Run blocks consuming updates until the context is cancelled, then waits
// for the per-user workers to drain.
func (b *Bot) Run(ctx context.Context) {
	for upd := range b.gw.Updates(ctx) {
		b.dispatch(ctx, upd)
	}

	b.mu.Lock()
	for _, ch := range b.workers {
		close(ch)
	}
	b.workers = make(map[int64]chan gateway.Update)
	b.mu.Unlock()
	b.wg.Wait()
}

// dispatch routes the update to its user's worker, creating one lazily.
func (b *Bot) dispatch(ctx context.Context, upd gateway.Update) {
	b.mu.Lock()
	ch, ok := b.workers[upd.UserID]
	if !ok {
		ch = make(chan gateway.Update, userQueueSize)
		b.workers[upd.UserID] = ch
		b.wg.Add(1)
		go b.worker(ctx, ch)
	}
	b.mu.Unlock()

	select {
	case ch <- upd:
	default:
		b.logger.Warn("user queue full, dropping update", "user_id", upd.UserID, "update_id", upd.ID)
	}
}

func (b *Bot) worker(ctx context.Context, ch <-chan gateway.Update) {
	defer b.wg.Done()
	for upd := range ch {
		b.process(ctx, upd)
	}
}

func (b *Bot) process(ctx context.Context, upd gateway.Update) {
	s, err := b.sessions.Get(ctx, upd.UserID)
	if err != nil {
		b.logger.Error("loading session failed", "user_id", upd.UserID, "error", err)
		b.reply(ctx, upd.ChatID, errorReply)
		return
	}

	res, err := b.dialogs.Handle(ctx, s, dialog.Input{Text: upd.Text, Photo: upd.Photo})
	if err != nil {
		b.logger.Error("dialog step failed",
			"user_id", upd.UserID, "state", string(s.State), "error", err)
		b.reply(ctx, upd.ChatID, errorReply)
		return
	}

	if err := b.sessions.Save(ctx, s); err != nil {
		b.logger.Error("saving session failed", "user_id", upd.UserID, "error", err)
	}

	for _, out := range res.Messages {
		msg := gateway.Message{
			ChatID:   upd.ChatID,
			Text:     out.Text,
			Keyboard: out.Keyboard,
			Photo:    out.Photo,
		}
		if err := b.gw.Send(ctx, msg); err != nil {
			b.logger.Error("sending reply failed", "user_id", upd.UserID, "error", err)
		}
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.gw.Send(ctx, gateway.Message{ChatID: chatID, Text: text}); err != nil {
		b.logger.Error("sending error reply failed", "chat_id", chatID, "error", err)
	}
}
