package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type commandHandler = func(*discordgo.InteractionCreate)

var botCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "match-create",
		Description: "Creates a new match and schedules its reminders.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "team1",
				Description: "First team (may mention roles).",
				Required:    true,
			}, {
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "team2",
				Description: "Second team (may mention roles).",
				Required:    true,
			}, {
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "day",
				Description: "Day of the match (1-31).",
				Required:    true,
			}, {
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "hour",
				Description: fmt.Sprintf("Hour of the match (0-23). Defaults to %v.", defaultMatchHour),
				Required:    false,
			}, {
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "minute",
				Description: "Minute of the match (0-59). Defaults to 0.",
				Required:    false,
			},
		},
	}, {
		Name:        "match-list",
		Description: "Lists all active matches.",
	}, {
		Name:        "match-end",
		Description: "Ends a match by ID.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "match-id",
				Description: "ID of the match to end.",
				Required:    true,
			},
		},
	}, {
		Name:        "send-dm",
		Description: "Sends a private message to a user.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The user to message.",
				Required:    true,
			}, {
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "The message to send.",
				Required:    true,
			},
		},
	}, {
		Name:        "announce",
		Description: "Sends an announcement embed.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "title",
				Description: "Announcement title.",
				Required:    true,
			}, {
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Announcement message.",
				Required:    true,
			}, {
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel to send to. Defaults to this channel.",
				Required:    false,
			},
		},
	}, {
		Name:        "setup",
		Description: "Sets the channels the bot uses for logs and activity.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "log-channel",
				Description: "Channel for bot logs.",
				Required:    false,
			}, {
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "activity-channel",
				Description: "Channel for bot activity notifications.",
				Required:    false,
			},
		},
	}, {
		Name:        "set-channels",
		Description: "Restricts bot commands to the mentioned channels.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "channels",
				Description: "Channel mentions where bot commands are allowed.",
				Required:    true,
			},
		},
	}, {
		Name:        "help",
		Description: "Shows all available bot commands.",
	},
}

// Bot represents an instance of the match reminder discord bot.
type Bot struct {
	session            *discordgo.Session
	db                 *gorm.DB
	log                zerolog.Logger
	registeredCommands []*discordgo.ApplicationCommand
	commandHandlers    map[string]commandHandler
}

// New initialises a new bot, opens its session and registers its commands.
func New(
	token string,
	guildID string,
	db *gorm.DB,
	log zerolog.Logger,
) (*Bot, error) {
	bot := &Bot{db: db, log: log}

	bot.commandHandlers = map[string]commandHandler{
		"match-create": bot.MatchCreate,
		"match-list":   bot.MatchList,
		"match-end":    bot.MatchEnd,
		"send-dm":      bot.SendDM,
		"announce":     bot.Announce,
		"setup":        bot.Setup,
		"set-channels": bot.SetChannels,
		"help":         bot.Help,
	}

	if err := bot.initSession(token); err != nil {
		return nil, err
	}
	if err := bot.registerCommands(guildID); err != nil {
		bot.session.Close()
		return nil, err
	}

	return bot, nil
}

func (bot *Bot) initSession(token string) error {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsAll

	session.AddHandler(func(*discordgo.Session, *discordgo.Ready) {
		bot.log.Info().Msg("bot is up")
	})

	session.AddHandler(func(
		s *discordgo.Session,
		i *discordgo.InteractionCreate,
	) {
		if handler, ok := bot.commandHandlers[i.Data.Name]; ok {
			handler(i)
		}
	})

	session.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		bot.guildJoined(g)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	bot.session = session
	return nil
}

func (bot *Bot) registerCommands(guildID string) error {
	for _, command := range botCommands {
		newCommand, err := bot.session.ApplicationCommandCreate(
			bot.session.State.User.ID,
			guildID,
			command,
		)
		if err != nil {
			return fmt.Errorf("create %v command: %w", command.Name, err)
		}
		bot.registeredCommands = append(bot.registeredCommands, newCommand)
		bot.log.Info().Str("command", command.Name).Msg("created command")
	}

	return nil
}

// Shutdown deregisters the bot's commands and closes its session.
func (bot *Bot) Shutdown(guildID string) {
	bot.log.Info().Msg("shutting down")

	for _, command := range bot.registeredCommands {
		err := bot.session.ApplicationCommandDelete(
			bot.session.State.User.ID,
			guildID,
			command.ID,
		)
		if err != nil {
			bot.log.Error().
				Err(err).
				Str("command", command.Name).
				Msg("failed to delete command")
		} else {
			bot.log.Info().Str("command", command.Name).Msg("deleted command")
		}
	}

	bot.session.Close()
}
