// Package telegram connects the registration dialogue to the Telegram Bot API.
package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/services/registration"
)

// selectUnique tags the inline buttons whose presses are selection events
const selectUnique = "select"

// Handler processes one dialogue event
type Handler interface {
	Handle(ctx context.Context, userID model.UserID, ev model.Event) (*registration.Reply, error)
}

// Config holds Telegram connection settings
type Config struct {
	Token       string
	PollTimeout time.Duration
}

// Bot relays Telegram updates to the dialogue handler
type Bot struct {
	bot     *tele.Bot
	handler Handler
	logger  *slog.Logger
	ctx     context.Context
}

// New connects to Telegram and registers the update handlers
func New(cfg Config, handler Handler, logger *slog.Logger) (*Bot, error) {
	b := newBot(handler, logger)

	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			logger.Error("telegram update failed", slog.String("error", err.Error()))
		},
	})
	if err != nil {
		return nil, err
	}

	b.bot = tb
	b.register(tb)
	return b, nil
}

func newBot(handler Handler, logger *slog.Logger) *Bot {
	return &Bot{
		handler: handler,
		logger:  logger,
		ctx:     context.Background(),
	}
}

func (b *Bot) register(tb *tele.Bot) {
	tb.Handle("/start", b.onStart)
	tb.Handle(&tele.Btn{Unique: selectUnique}, b.onSelect)
	tb.Handle(tele.OnText, b.onText)
}

// Run polls for updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) {
	b.ctx = ctx
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()

	b.logger.Info("telegram bot polling", slog.String("username", b.bot.Me.Username))
	b.bot.Start()
	b.logger.Info("telegram bot stopped")
}

func (b *Bot) onStart(c tele.Context) error {
	reply, err := b.dispatch(c, model.Event{Kind: model.EventStart})
	if err != nil || reply.Ignored() {
		return err
	}
	return c.Send(reply.Text, sendOptions(reply.Options)...)
}

// onSelect answers the button press and replaces the prompt message.
// Editing without markup also drops the country buttons.
func (b *Bot) onSelect(c tele.Context) error {
	if err := c.Respond(); err != nil {
		b.logger.Warn("failed to answer callback", slog.String("error", err.Error()))
	}

	reply, err := b.dispatch(c, model.Event{Kind: model.EventSelect, Payload: c.Callback().Data})
	if err != nil || reply.Ignored() {
		return err
	}
	return c.Edit(reply.Text, sendOptions(reply.Options)...)
}

func (b *Bot) onText(c tele.Context) error {
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return nil
	}

	reply, err := b.dispatch(c, model.Event{Kind: model.EventText, Payload: text})
	if err != nil || reply.Ignored() {
		return err
	}
	return c.Send(reply.Text, sendOptions(reply.Options)...)
}

func (b *Bot) dispatch(c tele.Context, ev model.Event) (*registration.Reply, error) {
	sender := c.Sender()
	if sender == nil {
		return &registration.Reply{}, nil
	}
	userID := model.UserID(strconv.FormatInt(sender.ID, 10))

	reply, err := b.handler.Handle(b.ctx, userID, ev)
	if err != nil {
		b.logger.Error("failed to handle event",
			slog.String("user_id", string(userID)),
			slog.String("kind", string(ev.Kind)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return reply, nil
}

// replyMarkup lays options out as a single row of inline buttons
func replyMarkup(options []registration.Option) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	buttons := make([]tele.Btn, len(options))
	for i, o := range options {
		buttons[i] = m.Data(o.Label, selectUnique, o.Payload)
	}
	m.Inline(m.Row(buttons...))
	return m
}

func sendOptions(options []registration.Option) []interface{} {
	if len(options) == 0 {
		return nil
	}
	return []interface{}{replyMarkup(options)}
}
