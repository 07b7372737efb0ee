package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"matchbot/dal"
	"matchbot/discordutils"
	"matchbot/match"
	"matchbot/models"
	"matchbot/timelocale"
)

const defaultMatchHour = 20

// MatchCreate creates a new match and schedules its reminders.
func (bot *Bot) MatchCreate(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, server, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !bot.commandAllowed(i, server) {
		return
	}
	if !discordutils.MemberCanManageMessages(guild, i.Member) {
		discordutils.SendFollowup(
			"❌ You need manage messages permission to create matches.",
			i.Interaction,
			bot.session,
		)
		return
	}

	opts := optionMap(i.Data.Options)
	params := match.CreateParams{
		Team1:     opts["team1"].StringValue(),
		Team2:     opts["team2"].StringValue(),
		Day:       int(opts["day"].IntValue()),
		Hour:      defaultMatchHour,
		ChannelID: i.ChannelID,
		CreatedBy: i.Member.User.ID,
	}
	if opt, ok := opts["hour"]; ok {
		params.Hour = int(opt.IntValue())
	}
	if opt, ok := opts["minute"]; ok {
		params.Minute = int(opt.IntValue())
	}

	m, err := match.Create(server, params, time.Now(), bot.db)

	var invalidDate *match.InvalidDateError
	if errors.As(err, &invalidDate) {
		discordutils.SendFollowup(
			fmt.Sprintf("❌ Invalid date: %v.", invalidDate),
			i.Interaction,
			bot.session,
		)
		return
	}
	if err != nil {
		bot.log.Error().Err(err).Msg("failed to create match")
		discordutils.SendFollowup(
			"❌ Error creating match. Please try again.",
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "match-create", fmt.Sprintf("%v vs %v", params.Team1, params.Team2))

	times := timelocale.Render(m.MatchDate)
	discordutils.SendFollowupEmbed(
		matchCreatedEmbed(m, times),
		i.Interaction,
		bot.session,
	)

	// Members of the mentioned roles also get an immediate heads-up DM.
	bot.notifyMatchCreated(guild, m, times)
}

// MatchList lists the server's active matches, soonest first.
func (bot *Bot) MatchList(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	_, server, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !bot.commandAllowed(i, server) {
		return
	}

	matches, err := match.ListActive(server.ID, bot.db)
	if err != nil {
		bot.log.Error().Err(err).Msg("failed to list matches")
		discordutils.SendFollowup(
			"❌ Error listing matches. Please try again.",
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "match-list", fmt.Sprintf("found: %v", len(matches)))

	if len(matches) == 0 {
		discordutils.SendFollowupEmbed(
			&discordgo.MessageEmbed{
				Title:       "📋 Active Matches",
				Description: "No active matches found.",
				Color:       0xffaa00,
			},
			i.Interaction,
			bot.session,
		)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "📋 Active Matches",
		Color: 0x3498db,
	}
	for n, m := range matches {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("#%v Match", n+1),
			Value: fmt.Sprintf(
				"**Teams:** %v vs %v\n**Date:** %v\n**Starts:** %v\n**ID:** `%v`",
				m.Team1,
				m.Team2,
				timelocale.Format(timelocale.English, m.MatchDate),
				humanize.Time(m.MatchDate),
				m.ID,
			),
			Inline: true,
		})
	}

	discordutils.SendFollowupEmbed(embed, i.Interaction, bot.session)
}

// MatchEnd deactivates a match by ID.
func (bot *Bot) MatchEnd(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, server, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !bot.commandAllowed(i, server) {
		return
	}
	if !discordutils.MemberCanManageMessages(guild, i.Member) {
		discordutils.SendFollowup(
			"❌ You need manage messages permission to end matches.",
			i.Interaction,
			bot.session,
		)
		return
	}

	matchID := uint(optionMap(i.Data.Options)["match-id"].IntValue())

	m, err := match.End(matchID, server.ID, bot.db)
	if errors.Is(err, match.ErrMatchNotFound) {
		discordutils.SendFollowup(
			"❌ Match not found or already ended.",
			i.Interaction,
			bot.session,
		)
		return
	}
	if err != nil {
		bot.log.Error().Err(err).Uint("match_id", matchID).Msg("failed to end match")
		discordutils.SendFollowup(
			"❌ Error ending match. Please try again.",
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "match-end", fmt.Sprintf("match_id: %v", matchID))

	discordutils.SendFollowup(
		fmt.Sprintf(
			"✅ Match #%v (%v vs %v) has been ended. It was due to start %v.",
			m.ID,
			m.Team1,
			m.Team2,
			humanize.Time(m.MatchDate),
		),
		i.Interaction,
		bot.session,
	)
}

// SendDM sends a private message to a user on behalf of an admin.
func (bot *Bot) SendDM(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, _, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !discordutils.MemberCanManageMessages(guild, i.Member) {
		discordutils.SendFollowup(
			"❌ You need manage messages permission to send DMs.",
			i.Interaction,
			bot.session,
		)
		return
	}

	opts := optionMap(i.Data.Options)
	user := opts["user"].UserValue(nil)
	message := opts["message"].StringValue()

	embed := &discordgo.MessageEmbed{
		Title:       "📨 Message from Server Admin",
		Description: message,
		Color:       0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server", Value: guild.Name, Inline: true},
			{Name: "From", Value: i.Member.Mention(), Inline: true},
		},
	}

	if err := bot.sendDMEmbed(user.ID, embed); err != nil {
		discordutils.SendFollowup(
			fmt.Sprintf(
				"❌ Cannot send DM to %v. They may have DMs disabled.",
				user.Mention(),
			),
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "send-dm", fmt.Sprintf("to: %v", user.Username))

	discordutils.SendFollowup(
		fmt.Sprintf("✅ Message sent to %v", user.Mention()),
		i.Interaction,
		bot.session,
	)
}

// Announce sends an announcement embed to a channel.
func (bot *Bot) Announce(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, _, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !discordutils.MemberCanManageMessages(guild, i.Member) {
		discordutils.SendFollowup(
			"❌ You need manage messages permission to make announcements.",
			i.Interaction,
			bot.session,
		)
		return
	}

	opts := optionMap(i.Data.Options)
	title := opts["title"].StringValue()
	message := opts["message"].StringValue()

	channelID := i.ChannelID
	if opt, ok := opts["channel"]; ok {
		channelID = opt.ChannelValue(nil).ID
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📢 %v", title),
		Description: message,
		Color:       0xe74c3c,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Announced by", Value: i.Member.Mention(), Inline: true},
		},
	}

	if _, err := bot.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		bot.log.Error().Err(err).Str("channel_id", channelID).Msg("failed to announce")
		discordutils.SendFollowup(
			"❌ Error sending announcement. Please try again.",
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "announce", fmt.Sprintf("title: %v", title))

	discordutils.SendFollowup("✅ Announcement sent!", i.Interaction, bot.session)
}

// Setup sets the channels the bot uses for logs and activity notifications.
func (bot *Bot) Setup(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, server, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !discordutils.MemberHasAdminPermissions(guild, i.Member) {
		discordutils.SendFollowup(
			"❌ You need administrator permissions to use this command.",
			i.Interaction,
			bot.session,
		)
		return
	}

	opts := optionMap(i.Data.Options)
	if opt, ok := opts["log-channel"]; ok {
		server.LogChannelID = opt.ChannelValue(nil).ID
	}
	if opt, ok := opts["activity-channel"]; ok {
		server.ActivityChannelID = opt.ChannelValue(nil).ID
	}

	if err := dal.SaveServer(server, bot.db); err != nil {
		bot.log.Error().Err(err).Msg("failed to save server setup")
		discordutils.SendFollowup(
			"❌ Error saving setup. Please try again.",
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "setup", fmt.Sprintf(
		"log: %v, activity: %v",
		server.LogChannelID,
		server.ActivityChannelID,
	))

	discordutils.SendFollowup("✅ Server setup complete.", i.Interaction, bot.session)
}

// SetChannels restricts bot commands to the mentioned channels.
func (bot *Bot) SetChannels(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	guild, server, ok := bot.guildContext(i)
	if !ok {
		return
	}
	if !discordutils.MemberHasAdminPermissions(guild, i.Member) {
		discordutils.SendFollowup(
			"❌ You need administrator permissions to use this command.",
			i.Interaction,
			bot.session,
		)
		return
	}

	channelIDs := parseChannelMentions(optionMap(i.Data.Options)["channels"].StringValue())
	if len(channelIDs) == 0 {
		discordutils.SendFollowup(
			"❌ Please mention valid channels.",
			i.Interaction,
			bot.session,
		)
		return
	}

	server.SetAllowedChannels(channelIDs)
	if err := dal.SaveServer(server, bot.db); err != nil {
		bot.log.Error().Err(err).Msg("failed to save allowed channels")
		discordutils.SendFollowup(
			"❌ Error saving allowed channels. Please try again.",
			i.Interaction,
			bot.session,
		)
		return
	}

	bot.logUsage(i, "set-channels", fmt.Sprintf("channels: %v", len(channelIDs)))

	mentions := make([]string, len(channelIDs))
	for n, id := range channelIDs {
		mentions[n] = fmt.Sprintf("<#%v>", id)
	}
	discordutils.SendFollowup(
		fmt.Sprintf(
			"✅ Bot commands are now restricted to: %v",
			strings.Join(mentions, ", "),
		),
		i.Interaction,
		bot.session,
	)
}

// Help shows the available commands.
func (bot *Bot) Help(i *discordgo.InteractionCreate) {
	discordutils.AckInteraction(i.Interaction, bot.session)

	bot.logUsage(i, "help", "")

	embed := &discordgo.MessageEmbed{
		Title:       "🤖 Match Reminder Bot - Help",
		Description: "Here are all available commands:",
		Color:       0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "⚔️ Match Management",
				Value: "`/match-create` - Create a new match with teams and date\n" +
					"`/match-list` - View all active matches\n" +
					"`/match-end` - End a match by ID",
			}, {
				Name: "💬 Communication",
				Value: "`/send-dm` - Send a private message to a user\n" +
					"`/announce` - Make a server announcement",
			}, {
				Name: "⚙️ Bot Setup",
				Value: "`/setup` - Configure the bot's channels\n" +
					"`/set-channels` - Restrict bot commands to specific channels",
			},
		},
	}

	discordutils.SendFollowupEmbed(embed, i.Interaction, bot.session)
}

func (bot *Bot) guildContext(
	i *discordgo.InteractionCreate,
) (*discordgo.Guild, *models.Server, bool) {
	guild, err := bot.session.State.Guild(i.GuildID)
	if err != nil {
		discordutils.SendFollowup(
			"❌ This command only works in a server.",
			i.Interaction,
			bot.session,
		)
		return nil, nil, false
	}

	server, err := dal.GetOrCreateServer(guild.ID, guild.Name, bot.db)
	if err != nil {
		bot.log.Error().Err(err).Str("guild_id", guild.ID).Msg("failed to load server")
		discordutils.SendFollowup(
			"❌ No server configuration found.",
			i.Interaction,
			bot.session,
		)
		return nil, nil, false
	}

	return guild, server, true
}

func (bot *Bot) commandAllowed(
	i *discordgo.InteractionCreate,
	server *models.Server,
) bool {
	allowed, err := server.ChannelAllowed(i.ChannelID)
	if err != nil {
		bot.log.Error().
			Err(err).
			Str("guild_id", server.GuildID).
			Msg("corrupt channel restriction, allowing command")
	}
	if allowed {
		return true
	}

	discordutils.SendFollowup(
		"❌ Bot commands are not allowed in this channel.",
		i.Interaction,
		bot.session,
	)
	return false
}

func (bot *Bot) logUsage(i *discordgo.InteractionCreate, command, detail string) {
	entry := models.CommandLog{
		GuildID:   i.GuildID,
		Command:   command,
		ChannelID: i.ChannelID,
		Detail:    detail,
	}

	// Interactions from outside a guild carry no member.
	if i.Member != nil && i.Member.User != nil {
		entry.UserID = i.Member.User.ID
		entry.Username = i.Member.User.Username
	}

	if err := dal.LogCommand(entry, bot.db); err != nil {
		bot.log.Error().Err(err).Str("command", command).Msg("failed to log command usage")
	}
}

func optionMap(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	mapped := make(
		map[string]*discordgo.ApplicationCommandInteractionDataOption,
		len(options),
	)
	for _, option := range options {
		mapped[option.Name] = option
	}
	return mapped
}

func parseChannelMentions(text string) (channelIDs []string) {
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "<#") && strings.HasSuffix(word, ">") {
			channelIDs = append(channelIDs, word[2:len(word)-1])
		}
	}
	return
}
