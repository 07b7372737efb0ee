package bot

import (
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"matchbot/dal"
	"matchbot/models"
)

func TestLogUsageWithoutMember(t *testing.T) {
	db, err := dal.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	bot := &Bot{db: db, log: zerolog.Nop()}

	// A command invoked from a direct message carries no guild member.
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{ChannelID: "dm-1"},
	}
	bot.logUsage(i, "help", "")

	var entries []models.CommandLog
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("load command log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 command log entry, got %v", len(entries))
	}
	if entries[0].Command != "help" {
		t.Fatalf("expected help entry, got %v", entries[0].Command)
	}
	if entries[0].UserID != "" || entries[0].Username != "" {
		t.Fatalf("expected empty user fields, got %v/%v", entries[0].UserID, entries[0].Username)
	}
}
