// Package match implements the match lifecycle: date computation, role
// mention handling, and creation/ending of matches with their reminders.
package match

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"matchbot/dal"
	"matchbot/models"
)

// ErrMatchNotFound is returned when a match does not exist or has already
// ended.
var ErrMatchNotFound = errors.New("match not found or already ended")

// InvalidDateError reports day/hour/minute values that do not form a valid
// calendar date in the target month.
type InvalidDateError struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf(
		"invalid match date: day %v at %02d:%02d does not exist in %v %v",
		e.Day,
		e.Hour,
		e.Minute,
		e.Month,
		e.Year,
	)
}

// ComputeMatchDate resolves a day-of-month plus time into an absolute UTC
// instant in the current month. A date that has already passed means the
// next occurrence of that day-of-month, so it rolls forward exactly one
// calendar month, wrapping December into January of the next year.
func ComputeMatchDate(
	day int,
	hour int,
	minute int,
	now time.Time,
) (time.Time, error) {
	now = now.UTC()
	year, month := now.Year(), now.Month()

	candidate, err := makeDate(year, month, day, hour, minute)
	if err != nil {
		return time.Time{}, err
	}
	if !candidate.Before(now) {
		return candidate, nil
	}

	month++
	if month > time.December {
		month = time.January
		year++
	}
	return makeDate(year, month, day, hour, minute)
}

func makeDate(
	year int,
	month time.Month,
	day int,
	hour int,
	minute int,
) (time.Time, error) {
	if day < 1 || day > daysIn(year, month) ||
		hour < 0 || hour > 23 ||
		minute < 0 || minute > 59 {
		return time.Time{}, &InvalidDateError{
			Year:   year,
			Month:  month,
			Day:    day,
			Hour:   hour,
			Minute: minute,
		}
	}

	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CreateParams carries the command inputs for a new match.
type CreateParams struct {
	Team1     string
	Team2     string
	Day       int
	Hour      int
	Minute    int
	ChannelID string
	CreatedBy string
}

// Create computes the match date, extracts the role mentions embedded in the
// team labels, and persists the match together with both of its reminders.
func Create(
	server *models.Server,
	params CreateParams,
	now time.Time,
	db *gorm.DB,
) (*models.Match, error) {
	matchDate, err := ComputeMatchDate(params.Day, params.Hour, params.Minute, now)
	if err != nil {
		return nil, err
	}

	m := &models.Match{
		ServerID:  server.ID,
		Team1:     params.Team1,
		Team2:     params.Team2,
		MatchDate: matchDate,
		ChannelID: params.ChannelID,
		CreatedBy: params.CreatedBy,
		Active:    true,
	}
	m.SetMentions(ExtractRoleMentions(params.Team1, params.Team2))

	if err := dal.CreateMatch(m, db); err != nil {
		return nil, err
	}

	return m, nil
}

// End deactivates the given match. Ending a match that does not exist or has
// already ended fails with ErrMatchNotFound.
func End(matchID uint, serverID uint, db *gorm.DB) (*models.Match, error) {
	m, err := dal.EndMatch(matchID, serverID, db)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ListActive returns a server's active matches ordered by match date.
func ListActive(serverID uint, db *gorm.DB) ([]models.Match, error) {
	return dal.ActiveMatches(serverID, db)
}
