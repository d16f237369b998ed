package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/tourneybot/internal/dependencies/clock"
	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/storage"
)

// Appender persists completed registrations
type Appender interface {
	AppendRecord(ctx context.Context, rec model.Registration) error
}

// Recorder observes dialogue outcomes
type Recorder interface {
	EventHandled(kind string, ignored bool)
	RegistrationPersisted()
	PersistFailed()
	RegistrationCompleted()
}

type nopRecorder struct{}

func (nopRecorder) EventHandled(string, bool) {}
func (nopRecorder) RegistrationPersisted()    {}
func (nopRecorder) PersistFailed()            {}
func (nopRecorder) RegistrationCompleted()    {}

// Option is a selectable choice attached to a reply
type Option struct {
	Label   string
	Payload string
}

// Reply is the controller's response to one event.
// An empty Text means the event was ignored and nothing should be sent.
type Reply struct {
	Text    string
	Options []Option
	State   model.SessionState
}

// Ignored reports whether the transport should stay silent
func (r *Reply) Ignored() bool {
	return r.Text == ""
}

// Controller drives the registration dialogue:
// awaiting_country -> awaiting_details -> awaiting_rule_agreement -> completed
type Controller struct {
	storage    storage.Storage
	roster     Appender
	countries  model.CountryTable
	tournament string
	clock      clock.Clock
	logger     *slog.Logger
	locks      *userLocks
	recorder   Recorder
}

// NewController creates a new registration Controller
func NewController(
	storage storage.Storage,
	roster Appender,
	countries model.CountryTable,
	tournament string,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:    storage,
		roster:     roster,
		countries:  countries,
		tournament: tournament,
		clock:      clock,
		logger:     logger,
		locks:      newUserLocks(),
		recorder:   nopRecorder{},
	}
}

// SetRecorder attaches a Recorder; nil restores the no-op recorder
func (c *Controller) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	c.recorder = r
}

// Handle applies one inbound event to the user's session.
// Events for the same user are processed one at a time.
func (c *Controller) Handle(ctx context.Context, userID model.UserID, ev model.Event) (*Reply, error) {
	reply, err := c.handle(ctx, userID, ev)
	if err == nil {
		c.recorder.EventHandled(string(ev.Kind), reply.Ignored())
	}
	return reply, err
}

func (c *Controller) handle(ctx context.Context, userID model.UserID, ev model.Event) (*Reply, error) {
	if !ev.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownEvent, ev.Kind)
	}

	unlock := c.locks.lock(userID)
	defer unlock()

	if ev.Kind == model.EventStart {
		return c.start(ctx, userID)
	}

	session, err := c.storage.GetSession(ctx, userID)
	if errors.Is(err, model.ErrSessionNotFound) {
		c.logger.Debug("ignoring event without session",
			slog.String("user_id", string(userID)),
			slog.String("kind", string(ev.Kind)),
		)
		return &Reply{}, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case session.State == model.StateAwaitingCountry:
		return c.selectCountry(ctx, session, ev)
	case session.State == model.StateAwaitingDetails && ev.Kind == model.EventText:
		return c.enterDetails(ctx, session, ev.Payload)
	case session.State == model.StateAwaitingRuleAgreement && ev.Kind == model.EventText:
		return c.agreeToRules(ctx, session, ev.Payload)
	}

	c.logger.Debug("ignoring event",
		slog.String("user_id", string(userID)),
		slog.String("state", string(session.State)),
		slog.String("kind", string(ev.Kind)),
	)
	return &Reply{State: session.State}, nil
}

// start resets any previous session and asks for a country
func (c *Controller) start(ctx context.Context, userID model.UserID) (*Reply, error) {
	now := c.clock.Now()
	session := &model.Session{
		UserID:    userID,
		State:     model.StateAwaitingCountry,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.logger.Debug("session started", slog.String("user_id", string(userID)))

	return &Reply{
		Text:    welcomeText(c.tournament),
		Options: c.countryOptions(),
		State:   session.State,
	}, nil
}

func (c *Controller) selectCountry(ctx context.Context, session *model.Session, ev model.Event) (*Reply, error) {
	country, ok := c.countries.Lookup(ev.Payload)
	if ev.Kind != model.EventSelect || !ok {
		return &Reply{
			Text:    countryRepromptText,
			Options: c.countryOptions(),
			State:   session.State,
		}, nil
	}

	session.Country = country.Name
	session.State = model.StateAwaitingDetails
	if err := c.save(ctx, session); err != nil {
		return nil, err
	}

	return &Reply{
		Text:  detailsPromptText(country.Name),
		State: session.State,
	}, nil
}

// enterDetails persists the registration as soon as the details parse.
// A persistence failure leaves the session awaiting details.
func (c *Controller) enterDetails(ctx context.Context, session *model.Session, text string) (*Reply, error) {
	details, err := ParseDetails(text)
	if err != nil {
		c.logger.Debug("invalid details",
			slog.String("user_id", string(session.UserID)),
			slog.String("error", err.Error()),
		)
		return &Reply{
			Text:  formatErrorText,
			State: session.State,
		}, nil
	}

	// Only the local copy changes until the save below
	session.Username = details.Username
	session.UID = details.UID
	session.Level = details.Level
	if err := c.roster.AppendRecord(ctx, session.Registration()); err != nil {
		c.recorder.PersistFailed()
		c.logger.Error("failed to persist registration",
			slog.String("user_id", string(session.UserID)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("append registration: %w", err)
	}
	c.recorder.RegistrationPersisted()

	session.State = model.StateAwaitingRuleAgreement
	if err := c.save(ctx, session); err != nil {
		return nil, err
	}

	return &Reply{
		Text:  rulesText,
		State: session.State,
	}, nil
}

func (c *Controller) agreeToRules(ctx context.Context, session *model.Session, text string) (*Reply, error) {
	if !strings.EqualFold(text, "agree") {
		return &Reply{
			Text:  agreeReminderText,
			State: session.State,
		}, nil
	}

	link, ok := c.countries.InviteLink(session.Country)
	if !ok {
		c.logger.Warn("no invite link for country",
			slog.String("user_id", string(session.UserID)),
			slog.String("country", session.Country),
		)
		link = NoLinkAvailable
	}

	if err := c.storage.DeleteSession(ctx, session.UserID); err != nil {
		return nil, err
	}

	c.recorder.RegistrationCompleted()
	c.logger.Info("registration completed",
		slog.String("user_id", string(session.UserID)),
		slog.String("country", session.Country),
	)

	return &Reply{
		Text:  inviteText(link),
		State: model.StateCompleted,
	}, nil
}

func (c *Controller) save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return err
	}
	c.logger.Debug("session advanced",
		slog.String("user_id", string(session.UserID)),
		slog.String("state", string(session.State)),
	)
	return nil
}

func (c *Controller) countryOptions() []Option {
	countries := c.countries.Countries()
	options := make([]Option, len(countries))
	for i, country := range countries {
		options[i] = Option{Label: country.Name, Payload: country.Name}
	}
	return options
}
