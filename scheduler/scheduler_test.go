package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"matchbot/models"
	"matchbot/resolver"

	"gorm.io/gorm"
)

type fakeStore struct {
	reminders []models.MatchReminder
	dueErr    error
	marked    []uint
}

func (s *fakeStore) DueReminders(now time.Time) ([]models.MatchReminder, error) {
	if s.dueErr != nil {
		return nil, s.dueErr
	}

	var due []models.MatchReminder
	for _, reminder := range s.reminders {
		if !reminder.Sent && !reminder.RemindAt.After(now) {
			due = append(due, reminder)
		}
	}
	return due, nil
}

func (s *fakeStore) MarkSent(reminderID uint) error {
	s.marked = append(s.marked, reminderID)
	for n := range s.reminders {
		if s.reminders[n].ID == reminderID {
			s.reminders[n].Sent = true
		}
	}
	return nil
}

type fakeDeliverer struct {
	delivered     []string
	notifications []Notification
	failFor       map[string]bool
}

func (d *fakeDeliverer) Deliver(recipient resolver.Recipient, n Notification) error {
	if d.failFor[recipient.ID] {
		return errors.New("recipient has DMs disabled")
	}
	d.delivered = append(d.delivered, recipient.ID)
	d.notifications = append(d.notifications, n)
	return nil
}

var testMembers = map[string][]resolver.Recipient{
	"100": {
		{ID: "user-1", Name: "alice"},
		{ID: "user-2", Name: "bob"},
		{ID: "user-4", Name: "botaccount", Bot: true},
	},
	"200": {
		{ID: "user-2", Name: "bob"},
		{ID: "user-3", Name: "carol"},
	},
}

func testLookup(guildID, roleID string) []resolver.Recipient {
	if guildID != "guild-1" {
		return nil
	}
	return testMembers[roleID]
}

func testRoleNames(guildID string) map[string]string {
	return map[string]string{
		"100": "Red Dragons",
		"200": "Blue Wolves",
	}
}

func testReminder(id uint, kind string, active bool) models.MatchReminder {
	matchDate := time.Date(2025, time.June, 15, 20, 0, 0, 0, time.UTC)

	m := models.Match{
		Model:     gorm.Model{ID: 42},
		Team1:     "<@&100> squad",
		Team2:     "<@&200>",
		MatchDate: matchDate,
		Active:    active,
		Server:    models.Server{GuildID: "guild-1"},
	}
	m.SetMentions([]string{"100", "200"})

	return models.MatchReminder{
		Model:    gorm.Model{ID: id},
		MatchID:  m.ID,
		Match:    m,
		RemindAt: matchDate.Add(-models.ReminderOffsets[kind]),
		Kind:     kind,
	}
}

func testScheduler(store Store, deliverer Deliverer, now time.Time) *Scheduler {
	return New(Options{
		Store:     store,
		Lookup:    testLookup,
		RoleNames: testRoleNames,
		Deliverer: deliverer,
		Now:       func() time.Time { return now },
		Log:       zerolog.Nop(),
	})
}

func TestTickDeliversOncePerRecipient(t *testing.T) {
	store := &fakeStore{reminders: []models.MatchReminder{
		testReminder(1, models.ReminderKind10Min, true),
	}}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 50, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	// user-2 is in both roles and user-4 is a bot: three humans, one
	// delivery each.
	want := []string{"user-1", "user-2", "user-3"}
	if len(deliverer.delivered) != len(want) {
		t.Fatalf("expected deliveries to %v, got %v", want, deliverer.delivered)
	}
	for n := range want {
		if deliverer.delivered[n] != want[n] {
			t.Fatalf("expected deliveries to %v, got %v", want, deliverer.delivered)
		}
	}

	if len(store.marked) != 1 || store.marked[0] != 1 {
		t.Fatalf("expected reminder 1 marked sent, got %v", store.marked)
	}
}

func TestTickRendersNotification(t *testing.T) {
	store := &fakeStore{reminders: []models.MatchReminder{
		testReminder(1, models.ReminderKind3Min, true),
	}}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 57, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	if len(deliverer.notifications) == 0 {
		t.Fatal("expected at least one delivery")
	}

	n := deliverer.notifications[0]
	if n.Title != "⏰ Match Reminder - 3 minutes" {
		t.Fatalf("unexpected title %q", n.Title)
	}
	if n.Teams != "Red Dragons squad vs Blue Wolves" {
		t.Fatalf("unexpected teams %q", n.Teams)
	}
	if len(n.Times) != 3 {
		t.Fatalf("expected 3 locale renderings, got %v", len(n.Times))
	}
}

func TestTickIsIdempotent(t *testing.T) {
	store := &fakeStore{reminders: []models.MatchReminder{
		testReminder(1, models.ReminderKind10Min, true),
	}}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 55, 0, 0, time.UTC)
	sched := testScheduler(store, deliverer, now)

	sched.Tick()
	delivered := len(deliverer.delivered)

	sched.Tick()
	if len(deliverer.delivered) != delivered {
		t.Fatalf("second tick re-delivered: %v then %v attempts",
			delivered, len(deliverer.delivered))
	}
	if len(store.marked) != 1 {
		t.Fatalf("expected one mark-sent, got %v", store.marked)
	}
}

func TestTickIgnoresFutureReminders(t *testing.T) {
	store := &fakeStore{reminders: []models.MatchReminder{
		testReminder(1, models.ReminderKind10Min, true),
	}}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 0, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	if len(deliverer.delivered) != 0 {
		t.Fatalf("expected no deliveries, got %v", deliverer.delivered)
	}
	if len(store.marked) != 0 {
		t.Fatalf("expected no reminders marked, got %v", store.marked)
	}
}

func TestTickSkipsInactiveMatch(t *testing.T) {
	store := &fakeStore{reminders: []models.MatchReminder{
		testReminder(1, models.ReminderKind10Min, false),
	}}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 55, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	if len(deliverer.delivered) != 0 {
		t.Fatalf("expected no deliveries for an ended match, got %v", deliverer.delivered)
	}
	// The reminder is still marked sent so it is never claimed again.
	if len(store.marked) != 1 {
		t.Fatalf("expected the reminder marked sent, got %v", store.marked)
	}
}

func TestTickIsolatesDeliveryFailures(t *testing.T) {
	store := &fakeStore{reminders: []models.MatchReminder{
		testReminder(1, models.ReminderKind10Min, true),
	}}
	deliverer := &fakeDeliverer{failFor: map[string]bool{"user-1": true}}

	now := time.Date(2025, time.June, 15, 19, 55, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	want := []string{"user-2", "user-3"}
	if len(deliverer.delivered) != len(want) {
		t.Fatalf("expected deliveries to %v, got %v", want, deliverer.delivered)
	}
	if len(store.marked) != 1 {
		t.Fatalf("expected the reminder marked sent despite the failure, got %v", store.marked)
	}
}

func TestTickContainsFaultsPerReminder(t *testing.T) {
	broken := testReminder(1, models.ReminderKind10Min, true)
	broken.Match.RoleMentions = "{not json"

	store := &fakeStore{reminders: []models.MatchReminder{
		broken,
		testReminder(2, models.ReminderKind3Min, true),
	}}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 58, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	// The broken reminder is marked sent without wedging the batch; the
	// healthy one still delivers.
	if len(store.marked) != 2 {
		t.Fatalf("expected both reminders marked sent, got %v", store.marked)
	}
	if len(deliverer.delivered) == 0 {
		t.Fatal("expected the healthy reminder to deliver")
	}
}

func TestTickSkipsBatchOnStoreError(t *testing.T) {
	store := &fakeStore{dueErr: errors.New("database locked")}
	deliverer := &fakeDeliverer{}

	now := time.Date(2025, time.June, 15, 19, 55, 0, 0, time.UTC)
	testScheduler(store, deliverer, now).Tick()

	if len(deliverer.delivered) != 0 {
		t.Fatalf("expected no deliveries on store error, got %v", deliverer.delivered)
	}
}
