package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"matchbot/dal"
	"matchbot/discordutils"
	"matchbot/match"
	"matchbot/models"
	"matchbot/resolver"
	"matchbot/scheduler"
	"matchbot/timelocale"
)

// LookupRoleMembers implements the scheduler's membership lookup against the
// session's guild state. Unknown guilds or roles resolve to no members.
func (bot *Bot) LookupRoleMembers(guildID, roleID string) []resolver.Recipient {
	guild, err := bot.session.State.Guild(guildID)
	if err != nil {
		return nil
	}

	var recipients []resolver.Recipient
	for _, member := range discordutils.RoleMembers(guild, roleID) {
		recipients = append(recipients, resolver.Recipient{
			ID:   member.User.ID,
			Name: member.User.Username,
			Bot:  member.User.Bot,
		})
	}
	return recipients
}

// RoleNames returns the guild's current role names for mention substitution.
func (bot *Bot) RoleNames(guildID string) map[string]string {
	guild, err := bot.session.State.Guild(guildID)
	if err != nil {
		return nil
	}
	return discordutils.GuildRoleNames(guild)
}

// Deliver DMs the rendered notification to one recipient.
func (bot *Bot) Deliver(
	recipient resolver.Recipient,
	n scheduler.Notification,
) error {
	return bot.sendDMEmbed(recipient.ID, notificationEmbed(n))
}

func (bot *Bot) sendDMEmbed(userID string, embed *discordgo.MessageEmbed) error {
	channel, err := bot.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}

	if _, err := bot.session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}

// notifyMatchCreated DMs the members of the mentioned roles when a match is
// created, through the same dedup path the reminders use.
func (bot *Bot) notifyMatchCreated(
	guild *discordgo.Guild,
	m *models.Match,
	times map[timelocale.Locale]string,
) {
	mentions, err := m.Mentions()
	if err != nil || len(mentions) == 0 {
		return
	}

	recipients := resolver.Resolve(mentions, func(roleID string) []resolver.Recipient {
		return bot.LookupRoleMembers(guild.ID, roleID)
	})

	names := discordutils.GuildRoleNames(guild)
	notification := scheduler.Notification{
		Title: "⚽ Match Notification",
		Teams: fmt.Sprintf(
			"%v vs %v",
			match.ReplaceRoleMentions(m.Team1, names),
			match.ReplaceRoleMentions(m.Team2, names),
		),
		Times: times,
	}

	for _, recipient := range recipients {
		if err := bot.Deliver(recipient, notification); err != nil {
			bot.log.Warn().
				Err(err).
				Str("recipient_id", recipient.ID).
				Uint("match_id", m.ID).
				Msg("failed to notify member")
		}
	}
}

func (bot *Bot) guildJoined(g *discordgo.GuildCreate) {
	if _, err := dal.GetOrCreateServer(g.ID, g.Name, bot.db); err != nil {
		bot.log.Error().Err(err).Str("guild_id", g.ID).Msg("failed to register guild")
		return
	}
	bot.log.Info().Str("guild", g.Name).Msg("joined guild")
}

func notificationEmbed(n scheduler.Notification) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: n.Title,
		Color: 0xf39c12,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🆚 Teams", Value: n.Teams},
			{Name: "🕐 Match Time", Value: timesField(n.Times)},
		},
	}
}

func matchCreatedEmbed(
	m *models.Match,
	times map[timelocale.Locale]string,
) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "⚽ New Match Created",
		Color: 0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🆚 Teams", Value: fmt.Sprintf("%v vs %v", m.Team1, m.Team2)},
			{Name: "🕐 Times", Value: timesField(times)},
			{Name: "📝 Match ID", Value: fmt.Sprintf("`%v`", m.ID), Inline: true},
		},
	}
}

func timesField(times map[timelocale.Locale]string) string {
	lines := make([]string, len(timelocale.Locales))
	for n, locale := range timelocale.Locales {
		lines[n] = fmt.Sprintf("**%v:** %v", timelocale.Label(locale), times[locale])
	}
	return strings.Join(lines, "\n")
}
