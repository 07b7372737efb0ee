package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Server holds the per-guild bot configuration.
type Server struct {
	gorm.Model
	GuildID           string `gorm:"uniqueIndex"`
	GuildName         string
	LogChannelID      string
	ActivityChannelID string
	AllowedChannels   string // JSON array of channel IDs; empty means unrestricted
}

// ChannelAllowed reports whether bot commands may be used in the given
// channel. A server without channel restrictions allows every channel.
// A corrupt restriction value also allows, so a bad row cannot lock
// operators out of the commands needed to repair it, but the decode
// error is returned so callers can report it.
func (s *Server) ChannelAllowed(channelID string) (bool, error) {
	if s.AllowedChannels == "" {
		return true, nil
	}

	var allowed []string
	if err := json.Unmarshal([]byte(s.AllowedChannels), &allowed); err != nil {
		return true, fmt.Errorf("decode allowed channels: %w", err)
	}
	if len(allowed) == 0 {
		return true, nil
	}

	for _, id := range allowed {
		if id == channelID {
			return true, nil
		}
	}
	return false, nil
}

// SetAllowedChannels restricts bot commands to the given channels.
func (s *Server) SetAllowedChannels(channelIDs []string) {
	if channelIDs == nil {
		channelIDs = []string{}
	}
	encoded, _ := json.Marshal(channelIDs)
	s.AllowedChannels = string(encoded)
}

// Match represents a scheduled match between two teams.
//
// MatchDate is always stored in UTC; locale renderings are derived from it
// at display time, never stored.
type Match struct {
	gorm.Model
	ServerID     uint
	Server       Server
	Team1        string
	Team2        string
	MatchDate    time.Time
	RoleMentions string // JSON array of role IDs, first-appearance order
	ChannelID    string
	CreatedBy    string
	Active       bool
}

// Mentions decodes the role IDs mentioned in the match's team labels.
func (m *Match) Mentions() ([]string, error) {
	if m.RoleMentions == "" {
		return nil, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(m.RoleMentions), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetMentions stores the given role IDs on the match.
func (m *Match) SetMentions(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	encoded, _ := json.Marshal(ids)
	m.RoleMentions = string(encoded)
}

// Reminder kinds name the pre-match offset a reminder represents. The kind
// is display text only; the firing time is fixed in RemindAt at creation.
const (
	ReminderKind10Min = "10min"
	ReminderKind3Min  = "3min"
)

// ReminderOffsets maps each reminder kind to its pre-match offset.
var ReminderOffsets = map[string]time.Duration{
	ReminderKind10Min: 10 * time.Minute,
	ReminderKind3Min:  3 * time.Minute,
}

// MatchReminder is one scheduled pre-match notification. RemindAt is UTC and
// immutable after creation; Sent transitions false to true exactly once.
type MatchReminder struct {
	gorm.Model
	MatchID  uint
	Match    Match
	RemindAt time.Time
	Kind     string
	Sent     bool
}

// CommandLog records one command invocation for operator visibility.
type CommandLog struct {
	gorm.Model
	GuildID   string
	UserID    string
	Username  string
	Command   string
	ChannelID string
	Detail    string
}
