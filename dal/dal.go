package dal

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"matchbot/models"
)

// InitDB opens the database and migrates the schema.
func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(
		sqlite.Open(dbPath),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Server{},
		&models.Match{},
		&models.MatchReminder{},
		&models.CommandLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// GetOrCreateServer returns the server record for the given guild, creating
// it on first sight.
func GetOrCreateServer(
	guildID string,
	guildName string,
	db *gorm.DB,
) (*models.Server, error) {
	var server models.Server
	err := db.Where(&models.Server{GuildID: guildID}).Take(&server).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		server = models.Server{GuildID: guildID, GuildName: guildName}
		err = db.Create(&server).Error
	}
	if err != nil {
		return nil, err
	}

	return &server, nil
}

// SaveServer persists changes to a server's configuration.
func SaveServer(server *models.Server, db *gorm.DB) error {
	return db.Save(server).Error
}

// CreateMatch persists the match together with both of its reminders in one
// transaction, so a match never exists without them.
func CreateMatch(match *models.Match, db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}

		reminders := []models.MatchReminder{
			{
				MatchID:  match.ID,
				RemindAt: match.MatchDate.Add(-models.ReminderOffsets[models.ReminderKind10Min]),
				Kind:     models.ReminderKind10Min,
			},
			{
				MatchID:  match.ID,
				RemindAt: match.MatchDate.Add(-models.ReminderOffsets[models.ReminderKind3Min]),
				Kind:     models.ReminderKind3Min,
			},
		}
		return tx.Create(&reminders).Error
	})
}

// DueReminders returns every unsent reminder whose firing time has passed,
// with the owning match and server loaded.
func DueReminders(now time.Time, db *gorm.DB) ([]models.MatchReminder, error) {
	var reminders []models.MatchReminder
	err := db.
		Preload("Match").
		Preload("Match.Server").
		Where("remind_at <= ? AND sent = ?", now, false).
		Find(&reminders).Error

	if err != nil {
		return nil, err
	}

	return reminders, nil
}

// MarkReminderSent flips a reminder's sent flag. The flag is never reset.
func MarkReminderSent(reminderID uint, db *gorm.DB) error {
	return db.
		Model(&models.MatchReminder{}).
		Where("id = ?", reminderID).
		Update("sent", true).Error
}

// EndMatch deactivates an active match. Returns gorm.ErrRecordNotFound when
// the match does not exist, belongs to another server, or has already ended.
func EndMatch(matchID uint, serverID uint, db *gorm.DB) (*models.Match, error) {
	// A single guarded update keeps two concurrent ends from both claiming
	// the row; the loser sees zero affected rows.
	result := db.
		Model(&models.Match{}).
		Where("id = ? AND server_id = ? AND active = ?", matchID, serverID, true).
		Update("active", false)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var match models.Match
	if err := db.Take(&match, matchID).Error; err != nil {
		return nil, err
	}

	return &match, nil
}

// ActiveMatches returns a server's active matches ordered by match date.
func ActiveMatches(serverID uint, db *gorm.DB) ([]models.Match, error) {
	var matches []models.Match
	err := db.
		Where(&models.Match{ServerID: serverID, Active: true}).
		Order("match_date").
		Find(&matches).Error

	if err != nil {
		return nil, err
	}

	return matches, nil
}

// LogCommand records a command invocation.
func LogCommand(entry models.CommandLog, db *gorm.DB) error {
	return db.Create(&entry).Error
}

// Store adapts the dal functions to the scheduler's store interface.
type Store struct {
	DB *gorm.DB
}

func (s Store) DueReminders(now time.Time) ([]models.MatchReminder, error) {
	return DueReminders(now, s.DB)
}

func (s Store) MarkSent(reminderID uint) error {
	return MarkReminderSent(reminderID, s.DB)
}
