package registration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/tourneybot/internal/dependencies/mocks"
	"github.com/mcoot/tourneybot/internal/metrics"
	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/storage/memory"
	"github.com/mcoot/tourneybot/internal/testutil"
)

// fakeRoster records appended registrations
type fakeRoster struct {
	mu      sync.Mutex
	records []model.Registration
	err     error
}

func (f *fakeRoster) AppendRecord(_ context.Context, rec model.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	roster     *fakeRoster
	clock      *mocks.MockClock
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.roster = &fakeRoster{}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.controller = NewController(s.storage, s.roster, model.DefaultCountryTable(), "CODM Tournament", s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) handle(userID model.UserID, kind model.EventKind, payload string) *Reply {
	reply, err := s.controller.Handle(s.ctx, userID, model.Event{Kind: kind, Payload: payload})
	s.Require().NoError(err)
	return reply
}

func (s *ControllerSuite) state(userID model.UserID) model.SessionState {
	session, err := s.storage.GetSession(s.ctx, userID)
	if errors.Is(err, model.ErrSessionNotFound) {
		return ""
	}
	s.Require().NoError(err)
	return session.State
}

func (s *ControllerSuite) advanceToDetails(userID model.UserID, country string) {
	s.handle(userID, model.EventStart, "")
	s.handle(userID, model.EventSelect, country)
}

func (s *ControllerSuite) advanceToRules(userID model.UserID, country string) {
	s.advanceToDetails(userID, country)
	s.handle(userID, model.EventText, "Username: Player123\nUID: 1234567890\nLevel:350")
}

// Start tests

func (s *ControllerSuite) TestStartOffersCountries() {
	reply := s.handle("u1", model.EventStart, "")

	s.Equal("Welcome to the CODM Tournament!\nPlease select your country:", reply.Text)
	s.Equal([]Option{
		{Label: "Ethiopia", Payload: "Ethiopia"},
		{Label: "Nigeria", Payload: "Nigeria"},
	}, reply.Options)
	s.Equal(model.StateAwaitingCountry, reply.State)
	s.Equal(model.StateAwaitingCountry, s.state("u1"))
}

func (s *ControllerSuite) TestStartResetsExistingSession() {
	s.advanceToRules("u1", "Nigeria")

	s.handle("u1", model.EventStart, "")

	session, err := s.storage.GetSession(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(model.StateAwaitingCountry, session.State)
	s.Empty(session.Country)
	s.Empty(session.Username)
}

// Country selection tests

func (s *ControllerSuite) TestSelectCountryAsksForDetails() {
	s.handle("u1", model.EventStart, "")

	reply := s.handle("u1", model.EventSelect, "Ethiopia")

	s.Contains(reply.Text, "Ethiopia")
	s.Contains(reply.Text, "Username: Player123\nUID: 1234567890\nLevel:350")
	s.Empty(reply.Options)
	s.Equal(model.StateAwaitingDetails, reply.State)

	session, _ := s.storage.GetSession(s.ctx, "u1")
	s.Equal("Ethiopia", session.Country)
	s.Equal(model.StateAwaitingDetails, session.State)
}

func (s *ControllerSuite) TestSelectUnknownCountryReprompts() {
	s.handle("u1", model.EventStart, "")

	reply := s.handle("u1", model.EventSelect, "Ghana")

	s.Equal(countryRepromptText, reply.Text)
	s.Len(reply.Options, 2)
	s.Equal(model.StateAwaitingCountry, s.state("u1"))
}

func (s *ControllerSuite) TestTextWhileAwaitingCountryReprompts() {
	s.handle("u1", model.EventStart, "")

	reply := s.handle("u1", model.EventText, "Ethiopia")

	s.Equal(countryRepromptText, reply.Text)
	s.Len(reply.Options, 2)
	s.Equal(model.StateAwaitingCountry, s.state("u1"))
}

// Details tests

func (s *ControllerSuite) TestValidDetailsArePersisted() {
	s.advanceToDetails("u1", "Ethiopia")

	reply := s.handle("u1", model.EventText, "Username: Player123\nUID: 1234567890\nLevel:350")

	s.Equal(rulesText, reply.Text)
	s.Equal(model.StateAwaitingRuleAgreement, reply.State)
	s.Equal([]model.Registration{
		{Country: "Ethiopia", Username: "Player123", UID: "1234567890", Level: "350"},
	}, s.roster.records)
	s.Equal(model.StateAwaitingRuleAgreement, s.state("u1"))
}

func (s *ControllerSuite) TestInvalidDetailsRetryInPlace() {
	s.advanceToDetails("u1", "Ethiopia")

	reply := s.handle("u1", model.EventText, "foo")

	s.Equal(formatErrorText, reply.Text)
	s.Equal(model.StateAwaitingDetails, reply.State)
	s.Equal(0, s.roster.count())

	session, _ := s.storage.GetSession(s.ctx, "u1")
	s.Equal("Ethiopia", session.Country)
}

func (s *ControllerSuite) TestAnyMissingFieldIsNotPersisted() {
	texts := []string{
		"UID: 1234567890\nLevel:350\nhello",
		"Username: Player123\nLevel:350\nhello",
		"Username: Player123\nUID: 1234567890\nhello",
		"Username:\nUID: 1234567890\nLevel:350",
	}
	s.advanceToDetails("u1", "Ethiopia")

	for _, text := range texts {
		reply := s.handle("u1", model.EventText, text)
		s.Equal(formatErrorText, reply.Text, text)
		s.Equal(model.StateAwaitingDetails, s.state("u1"), text)
	}
	s.Equal(0, s.roster.count())
}

func (s *ControllerSuite) TestDetailsRecoveryAfterFormatError() {
	s.advanceToDetails("u1", "Nigeria")
	s.handle("u1", model.EventText, "foo")

	reply := s.handle("u1", model.EventText, "Username: a\nUID: b\nLevel: c")

	s.Equal(model.StateAwaitingRuleAgreement, reply.State)
	s.Equal(1, s.roster.count())
	s.Equal("Nigeria", s.roster.records[0].Country)
}

func (s *ControllerSuite) TestPersistenceFailureKeepsAwaitingDetails() {
	s.advanceToDetails("u1", "Ethiopia")
	s.roster.err = errors.New("disk full")

	_, err := s.controller.Handle(s.ctx, "u1", model.Event{Kind: model.EventText, Payload: "Username: a\nUID: b\nLevel: c"})
	s.Require().Error(err)
	s.Contains(err.Error(), "disk full")

	s.Equal(model.StateAwaitingDetails, s.state("u1"))
}

func (s *ControllerSuite) TestPersistenceFailureDoesNotStoreDetails() {
	s.advanceToDetails("u1", "Ethiopia")
	s.roster.err = errors.New("disk full")

	_, err := s.controller.Handle(s.ctx, "u1", model.Event{Kind: model.EventText, Payload: "Username: a\nUID: b\nLevel: c"})
	s.Require().Error(err)

	session, err := s.storage.GetSession(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(model.Registration{Country: "Ethiopia"}, session.Registration())
}

func (s *ControllerSuite) TestSelectWhileAwaitingDetailsIsIgnored() {
	s.advanceToDetails("u1", "Ethiopia")

	reply := s.handle("u1", model.EventSelect, "Nigeria")

	s.True(reply.Ignored())
	s.Equal(model.StateAwaitingDetails, reply.State)
	session, _ := s.storage.GetSession(s.ctx, "u1")
	s.Equal("Ethiopia", session.Country)
}

// Rule agreement tests

func (s *ControllerSuite) TestAgreeSendsInviteLink() {
	s.advanceToRules("u1", "Nigeria")

	reply := s.handle("u1", model.EventText, "AGREE")

	s.Contains(reply.Text, "https://t.me/+GaqELk8BynxmMmRk")
	s.Equal(model.StateCompleted, reply.State)
	s.Equal("", string(s.state("u1")))
	s.Equal(0, s.storage.SessionCount())
}

func (s *ControllerSuite) TestOtherTextRemindsToAgree() {
	s.advanceToRules("u1", "Ethiopia")

	reply := s.handle("u1", model.EventText, "ok")

	s.Equal(agreeReminderText, reply.Text)
	s.Equal(model.StateAwaitingRuleAgreement, s.state("u1"))
}

func (s *ControllerSuite) TestAgreeDoesNotPersistAgain() {
	s.advanceToRules("u1", "Ethiopia")

	s.handle("u1", model.EventText, "agree")

	s.Equal(1, s.roster.count())
}

func (s *ControllerSuite) TestUnmappedCountryFallsBack() {
	s.advanceToRules("u1", "Ethiopia")
	session, _ := s.storage.GetSession(s.ctx, "u1")
	session.Country = "Atlantis"
	_ = s.storage.SaveSession(s.ctx, session)

	reply := s.handle("u1", model.EventText, "agree")

	s.Contains(reply.Text, NoLinkAvailable)
	s.Equal(model.StateCompleted, reply.State)
}

// Session lifecycle tests

func (s *ControllerSuite) TestEventWithoutSessionIsIgnored() {
	reply := s.handle("u1", model.EventText, "hello")

	s.True(reply.Ignored())
	s.Equal(0, s.storage.SessionCount())
}

func (s *ControllerSuite) TestEventAfterCompletionIsIgnored() {
	s.advanceToRules("u1", "Ethiopia")
	s.handle("u1", model.EventText, "agree")

	reply := s.handle("u1", model.EventText, "agree")

	s.True(reply.Ignored())
}

func (s *ControllerSuite) TestUnknownEventKind() {
	_, err := s.controller.Handle(s.ctx, "u1", model.Event{Kind: "photo"})
	s.ErrorIs(err, model.ErrUnknownEvent)
}

func (s *ControllerSuite) TestSessionTimestamps() {
	s.handle("u1", model.EventStart, "")
	s.clock.Advance(time.Minute)
	s.handle("u1", model.EventSelect, "Ethiopia")

	session, _ := s.storage.GetSession(s.ctx, "u1")
	s.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), session.StartedAt)
	s.Equal(time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC), session.UpdatedAt)
}

func (s *ControllerSuite) TestUsersAreIndependent() {
	s.advanceToDetails("u1", "Ethiopia")
	s.advanceToRules("u2", "Nigeria")

	s.Equal(model.StateAwaitingDetails, s.state("u1"))
	s.Equal(model.StateAwaitingRuleAgreement, s.state("u2"))
}

func (s *ControllerSuite) TestConcurrentUsers() {
	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id model.UserID) {
			defer wg.Done()
			for _, ev := range []model.Event{
				{Kind: model.EventStart},
				{Kind: model.EventSelect, Payload: "Ethiopia"},
				{Kind: model.EventText, Payload: "Username: a\nUID: 1\nLevel: 2"},
				{Kind: model.EventText, Payload: "agree"},
			} {
				_, err := s.controller.Handle(s.ctx, id, ev)
				s.NoError(err)
			}
		}(model.UserID(fmt.Sprintf("user-%d", i)))
	}
	wg.Wait()

	s.Equal(n, s.roster.count())
	s.Equal(0, s.storage.SessionCount())
	s.Equal(0, s.controller.locks.len())
}

func (s *ControllerSuite) TestRecorderCountsOutcomes() {
	m := metrics.New()
	s.controller.SetRecorder(m)

	s.advanceToRules("u1", "Ethiopia")
	s.handle("u1", model.EventText, "agree")
	s.handle("u1", model.EventText, "hello")

	s.Equal(1.0, promtest.ToFloat64(m.RegistrationsPersisted))
	s.Equal(1.0, promtest.ToFloat64(m.RegistrationsCompleted))
	s.Equal(1.0, promtest.ToFloat64(m.EventsHandled.WithLabelValues("start", "replied")))
	s.Equal(1.0, promtest.ToFloat64(m.EventsHandled.WithLabelValues("text", "ignored")))
}

func (s *ControllerSuite) TestRecorderCountsPersistFailure() {
	m := metrics.New()
	s.controller.SetRecorder(m)
	s.advanceToDetails("u1", "Nigeria")
	s.roster.err = errors.New("disk full")

	_, err := s.controller.Handle(s.ctx, "u1", model.Event{Kind: model.EventText, Payload: "Username: a\nUID: b\nLevel: c"})
	s.Require().Error(err)

	s.Equal(1.0, promtest.ToFloat64(m.PersistFailures))
	s.Equal(0.0, promtest.ToFloat64(m.RegistrationsPersisted))
}
