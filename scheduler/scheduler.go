// Package scheduler drives match reminder delivery. A single goroutine polls
// the store on a fixed interval, so ticks never overlap and a reminder
// cannot be claimed twice concurrently.
package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"matchbot/match"
	"matchbot/models"
	"matchbot/resolver"
	"matchbot/timelocale"
)

// Store is the reminder store surface the scheduler needs.
type Store interface {
	DueReminders(now time.Time) ([]models.MatchReminder, error)
	MarkSent(reminderID uint) error
}

// Notification is the rendered content delivered to each recipient of one
// reminder. It is built once per reminder, before any delivery attempt.
type Notification struct {
	Title string
	Teams string
	Times map[timelocale.Locale]string
}

// Deliverer sends a notification to a single recipient. A returned error is
// recoverable and scoped to that recipient only.
type Deliverer interface {
	Deliver(recipient resolver.Recipient, n Notification) error
}

// MembershipLookup resolves the members of a role within a guild.
type MembershipLookup func(guildID, roleID string) []resolver.Recipient

// RoleNames returns the current display names of a guild's roles.
type RoleNames func(guildID string) map[string]string

// Options holds the capabilities a Scheduler runs against.
type Options struct {
	Store     Store
	Lookup    MembershipLookup
	RoleNames RoleNames
	Deliverer Deliverer
	Now       func() time.Time
	Log       zerolog.Logger
}

// Scheduler delivers due match reminders.
type Scheduler struct {
	store     Store
	lookup    MembershipLookup
	roleNames RoleNames
	deliver   Deliverer
	now       func() time.Time
	log       zerolog.Logger
}

// New builds a scheduler from the given capabilities. A nil Now defaults to
// time.Now.
func New(opts Options) *Scheduler {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Scheduler{
		store:     opts.Store,
		lookup:    opts.Lookup,
		roleNames: opts.RoleNames,
		deliver:   opts.Deliverer,
		now:       opts.Now,
		log:       opts.Log,
	}
}

// Run processes one tick per tick of the given ticker until done is
// signalled.
func (s *Scheduler) Run(ticker *time.Ticker, done chan bool) {
	for {
		select {
		case <-done:
			s.log.Info().Msg("stopped reminder scheduler")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick claims every due unsent reminder and processes each one to
// completion. Failures are contained at the reminder they concern: a
// reminder is marked sent whatever happened to it, so one attempt batch is
// made per reminder and a broken record cannot be re-claimed forever.
func (s *Scheduler) Tick() {
	due, err := s.store.DueReminders(s.now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to query due reminders")
		return
	}

	for _, reminder := range due {
		if err := s.process(reminder); err != nil {
			s.log.Error().
				Err(err).
				Uint("reminder_id", reminder.ID).
				Uint("match_id", reminder.MatchID).
				Msg("failed to process reminder")
		}

		if err := s.store.MarkSent(reminder.ID); err != nil {
			// The reminder stays due and is re-claimed next tick.
			s.log.Error().
				Err(err).
				Uint("reminder_id", reminder.ID).
				Msg("failed to mark reminder sent")
		}
	}
}

func (s *Scheduler) process(reminder models.MatchReminder) error {
	m := reminder.Match
	if !m.Active {
		// The match ended before this reminder fired.
		return nil
	}

	mentions, err := m.Mentions()
	if err != nil {
		return fmt.Errorf("decode role mentions: %w", err)
	}

	guildID := m.Server.GuildID
	recipients := resolver.Resolve(mentions, func(roleID string) []resolver.Recipient {
		return s.lookup(guildID, roleID)
	})
	if len(recipients) == 0 {
		return nil
	}

	names := s.roleNames(guildID)
	notification := Notification{
		Title: reminderTitle(reminder.Kind),
		Teams: fmt.Sprintf(
			"%v vs %v",
			match.ReplaceRoleMentions(m.Team1, names),
			match.ReplaceRoleMentions(m.Team2, names),
		),
		Times: timelocale.Render(m.MatchDate),
	}

	for _, recipient := range recipients {
		if err := s.deliver.Deliver(recipient, notification); err != nil {
			s.log.Warn().
				Err(err).
				Str("recipient_id", recipient.ID).
				Uint("match_id", m.ID).
				Msg("failed to deliver reminder")
		}
	}

	return nil
}

func reminderTitle(kind string) string {
	switch kind {
	case models.ReminderKind10Min:
		return "⏰ Match Reminder - 10 minutes"
	case models.ReminderKind3Min:
		return "⏰ Match Reminder - 3 minutes"
	}
	return "⏰ Match Reminder"
}
